package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService keeps session snapshots of logged in users. A snapshot is a
// copy of the user record taken at login and is never re-validated against
// the users collection.
type AuthService struct {
	*base
}

func sessionKey(id string) string {
	return "current_user:" + id
}

// Login matches the email case-insensitively, the password exactly and the
// role when one is given. The first matching user wins. The answer is
// delayed by the configured login delay either way.
func (s *AuthService) Login(ctx context.Context, email, password, role string) (*models.Session, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	var match *models.User
	for _, u := range store.Read[models.User](ctx, s.store, models.CollectionUsers) {
		if normalizeEmail(u.Email) != email || !passwordMatches(u.Password, password) {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		u := u
		match = &u
		break
	}

	if match == nil {
		util.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		s.logger.Warn("Login refused", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		User:      *match,
		CreatedAt: s.now(),
	}
	if err := store.WriteValue(ctx, s.store, sessionKey(session.ID), session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	util.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.logger.Info("User logged in", zap.Int64("user_id", match.ID), zap.String("session_id", session.ID))
	s.publish(ctx, models.EventTypeUserLoggedIn, session)
	return session, nil
}

func (s *AuthService) wait(ctx context.Context) error {
	if s.opts.LoginDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.opts.LoginDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Session returns the snapshot stored for id, or ErrNotAuthenticated.
func (s *AuthService) Session(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrNotAuthenticated
	}
	session, err := store.ReadValue[models.Session](ctx, s.store, sessionKey(id))
	if errors.Is(err, store.ErrValueNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout removes the snapshot. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, id string) error {
	session, err := s.Session(ctx, id)
	if errors.Is(err, ErrNotAuthenticated) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.store.DeleteValue(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info("User logged out", zap.Int64("user_id", session.User.ID), zap.String("session_id", id))
	s.publish(ctx, models.EventTypeUserLoggedOut, session)
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, session *models.Session) {
	event := &models.SessionEvent{
		BaseEvent: newBaseEvent(eventType, s.now()),
		SessionID: session.ID,
		UserID:    session.User.ID,
		Email:     session.User.Email,
	}
	if err := s.events.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish session event", zap.String("type", eventType), zap.Error(err))
	}
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}
