package seed

import (
	"context"
	"testing"
	"time"

	"techstore-admin/internal/models"
	"techstore-admin/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *store.Store {
	return store.NewStore(store.NewMemoryBackend(), "techstore")
}

func TestBootstrapSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	seeded, err := Bootstrap(ctx, s, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users", "categories", "products", "clients", "orders"}, seeded)

	users := store.Read[models.User](ctx, s, models.CollectionUsers)
	require.Len(t, users, 2)
	assert.Equal(t, "admin@app.com", users[0].Email)
	assert.Equal(t, "2024-03-01T09:00:00Z", users[0].CreatedAt)

	products := store.Read[models.Product](ctx, s, models.CollectionProducts)
	require.Len(t, products, 20)
	for _, p := range products {
		assert.NotZero(t, p.CategoryID, "product %d not linked", p.ID)
	}
	assert.Equal(t, int64(2), products[0].CategoryID, "Laptop HP belongs to Informatique")

	orders := store.Read[models.Order](ctx, s, models.CollectionOrders)
	require.Len(t, orders, 2)
	assert.Equal(t, models.OrderStatusPending, orders[0].Status)
	assert.InDelta(t, 17999.98, orders[0].Total, 1e-9)

	assert.Empty(t, store.Read[models.Invoice](ctx, s, models.CollectionInvoices))
}

func TestBootstrapKeepsExistingCollections(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	mine := []models.Category{{ID: 9, Name: "Maison"}}
	require.NoError(t, store.Write(ctx, s, models.CollectionCategories, mine))

	seeded, err := Bootstrap(ctx, s, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, seeded, "categories")

	cats := store.Read[models.Category](ctx, s, models.CollectionCategories)
	assert.Equal(t, mine, cats)

	// Seeded products name categories that do not exist here and stay unlinked.
	for _, p := range store.Read[models.Product](ctx, s, models.CollectionProducts) {
		assert.Zero(t, p.CategoryID)
	}

	again, err := Bootstrap(ctx, s, time.Now())
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestLinkCategoriesMatchesNamesLoosely(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	require.NoError(t, store.Write(ctx, s, models.CollectionCategories, []models.Category{{ID: 3, Name: "Téléphonie"}}))
	require.NoError(t, store.Write(ctx, s, models.CollectionProducts, []models.Product{
		{ID: 1, Name: "a", Category: " téléphonie "},
		{ID: 2, Name: "b", Category: "Unknown"},
		{ID: 3, Name: "c", Category: "Téléphonie", CategoryID: 7},
	}))

	n, err := LinkCategories(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	products := store.Read[models.Product](ctx, s, models.CollectionProducts)
	assert.Equal(t, int64(3), products[0].CategoryID)
	assert.Zero(t, products[1].CategoryID)
	assert.Equal(t, int64(7), products[2].CategoryID)
}
