package service

import (
	"context"
	"errors"

	"techstore-admin/internal/models"
	"techstore-admin/internal/store"

	"go.uber.org/zap"
)

const themeKey = "theme"

// PreferencesService stores the display theme. There is one theme for the
// whole store namespace, not one per user.
type PreferencesService struct {
	*base
}

// Theme returns the stored theme, light when none was chosen.
func (s *PreferencesService) Theme(ctx context.Context) (string, error) {
	theme, err := store.ReadValue[string](ctx, s.store, themeKey)
	if errors.Is(err, store.ErrValueNotFound) {
		return models.ThemeLight, nil
	}
	if err != nil {
		s.logger.Error("Failed to read theme", zap.Error(err))
		return models.ThemeLight, nil
	}
	if theme != models.ThemeDark {
		return models.ThemeLight, nil
	}
	return theme, nil
}

func (s *PreferencesService) SetTheme(ctx context.Context, theme string) error {
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return invalid("preferences.theme", "theme must be %q or %q", models.ThemeLight, models.ThemeDark)
	}
	return store.WriteValue(ctx, s.store, themeKey, theme)
}
