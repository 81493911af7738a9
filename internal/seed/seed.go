// Package seed holds the default data of a fresh installation.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"

	"go.uber.org/zap"
)

//go:embed data/*.json
var data embed.FS

// Defaults decodes the embedded default records of collection.
func Defaults[T any](collection string) ([]T, error) {
	raw, err := data.ReadFile("data/" + collection + ".json")
	if err != nil {
		return nil, fmt.Errorf("no seed data for %s: %w", collection, err)
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse seed data for %s: %w", collection, err)
	}
	return records, nil
}

// Bootstrap writes the defaults into every collection that is empty (absent
// or unreadable), then links products still carrying only a category name
// to the category id. Non-empty collections are left as they are. It returns
// the names of the collections it seeded.
func Bootstrap(ctx context.Context, s *store.Store, now time.Time) ([]string, error) {
	logger := util.GetLogger()
	var seeded []string

	users, err := Defaults[models.User](models.CollectionUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].CreatedAt == "" {
			users[i].CreatedAt = now.UTC().Format(time.RFC3339)
		}
	}

	steps := []func() (bool, error){
		func() (bool, error) { return seedIfEmpty(ctx, s, models.CollectionUsers, users) },
		func() (bool, error) { return seedDefaults[models.Category](ctx, s, models.CollectionCategories) },
		func() (bool, error) { return seedDefaults[models.Product](ctx, s, models.CollectionProducts) },
		func() (bool, error) { return seedDefaults[models.Client](ctx, s, models.CollectionClients) },
		func() (bool, error) { return seedDefaults[models.Order](ctx, s, models.CollectionOrders) },
	}
	names := []string{
		models.CollectionUsers,
		models.CollectionCategories,
		models.CollectionProducts,
		models.CollectionClients,
		models.CollectionOrders,
	}

	for i, step := range steps {
		done, err := step()
		if err != nil {
			return seeded, err
		}
		if done {
			seeded = append(seeded, names[i])
		}
	}

	linked, err := LinkCategories(ctx, s)
	if err != nil {
		return seeded, err
	}

	logger.Info("Bootstrap complete",
		zap.Strings("seeded", seeded),
		zap.Int("products_linked", linked))
	return seeded, nil
}

func seedDefaults[T any](ctx context.Context, s *store.Store, collection string) (bool, error) {
	records, err := Defaults[T](collection)
	if err != nil {
		return false, err
	}
	return seedIfEmpty(ctx, s, collection, records)
}

func seedIfEmpty[T any](ctx context.Context, s *store.Store, collection string, defaults []T) (bool, error) {
	if len(store.Read[T](ctx, s, collection)) > 0 {
		return false, nil
	}
	if err := store.Write(ctx, s, collection, defaults); err != nil {
		return false, err
	}
	return true, nil
}

// LinkCategories sets CategoryID on products that only carry a category name
// matching an existing category. It returns the number of products linked.
func LinkCategories(ctx context.Context, s *store.Store) (int, error) {
	categories := store.Read[models.Category](ctx, s, models.CollectionCategories)
	byName := make(map[string]int64, len(categories))
	for _, c := range categories {
		byName[normalize(c.Name)] = c.ID
	}

	products := store.Read[models.Product](ctx, s, models.CollectionProducts)
	linked := 0
	for i := range products {
		if products[i].CategoryID != 0 {
			continue
		}
		if id, ok := byName[normalize(products[i].Category)]; ok {
			products[i].CategoryID = id
			linked++
		}
	}

	if linked == 0 {
		return 0, nil
	}
	if err := store.Write(ctx, s, models.CollectionProducts, products); err != nil {
		return 0, err
	}
	return linked, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
