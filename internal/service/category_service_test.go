package service

import (
	"context"
	"testing"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteCategoryWithProductsIsRefused(t *testing.T) {
	f := newFixture(t)
	put(t, f, models.CollectionProducts, []models.Product{{ID: 1, Price: 10, Stock: 5, Category: "A"}})
	put(t, f, models.CollectionCategories, []models.Category{{ID: 1, Name: "A"}})

	err := f.svc.Categories.Delete(context.Background(), admin, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []models.Category{{ID: 1, Name: "A"}}, get[models.Category](f, models.CollectionCategories))
	assert.Empty(t, f.events.changes)
}

func TestDeleteEmptyCategory(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	created, err := f.svc.Categories.Create(ctx, admin, "Accessoires")
	require.NoError(t, err)

	require.NoError(t, f.svc.Categories.Delete(ctx, admin, created.ID))
	assert.Len(t, get[models.Category](f, models.CollectionCategories), 2)

	err = f.svc.Categories.Delete(ctx, admin, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRecountsAndPersists(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)

	view, err := f.svc.Categories.List(context.Background(), listview.State{SortField: "productCount", SortDir: listview.SortDesc})
	require.NoError(t, err)

	require.Len(t, view.Rows, 2)
	assert.Equal(t, "Informatique", view.Rows[0].Name)
	assert.Equal(t, 2, view.Rows[0].ProductCount)
	assert.Equal(t, 1, view.Rows[1].ProductCount)

	stored := get[models.Category](f, models.CollectionCategories)
	assert.Equal(t, 2, stored[0].ProductCount)
	assert.Equal(t, 1, stored[1].ProductCount)
}

func TestCreateCategoryRejectsDuplicatesAndBlank(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	_, err := f.svc.Categories.Create(ctx, admin, "  informatique ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Categories.Create(ctx, admin, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	c, err := f.svc.Categories.Create(ctx, admin, " Audio ")
	require.NoError(t, err)
	assert.Equal(t, "Audio", c.Name)
	assert.Equal(t, int64(3), c.ID)
}

func TestRenameCategoryMovesItsProductsOnly(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	renamed, err := f.svc.Categories.Rename(ctx, admin, 1, "Ordinateurs")
	require.NoError(t, err)
	assert.Equal(t, 2, renamed.ProductCount)

	for _, p := range get[models.Product](f, models.CollectionProducts) {
		switch p.ID {
		case 1, 3:
			assert.Equal(t, "Ordinateurs", p.Category)
		default:
			assert.Equal(t, "Téléphonie", p.Category)
		}
	}

	view, err := f.svc.Products.List(ctx, listview.State{Filters: map[string]string{"category": "Ordinateurs"}})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Total)

	require.Len(t, f.events.renames, 1)
	assert.Equal(t, "Informatique", f.events.renames[0].OldName)
	assert.Equal(t, "Ordinateurs", f.events.renames[0].NewName)
}

func TestRenameToExistingNameIsRefused(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)

	_, err := f.svc.Categories.Rename(context.Background(), admin, 1, "TÉLÉPHONIE")
	assert.ErrorIs(t, err, ErrValidation)

	// renaming to its own name with another case is allowed
	_, err = f.svc.Categories.Rename(context.Background(), admin, 1, "INFORMATIQUE")
	assert.NoError(t, err)
}

func TestRefreshCountsOnlyWritesWhenCountsMove(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.Categories.RefreshCounts(ctx))
	require.Len(t, f.events.changes, 1)
	assert.Equal(t, models.ActionRecount, f.events.changes[0].Action)

	require.NoError(t, f.svc.Categories.RefreshCounts(ctx))
	assert.Len(t, f.events.changes, 1)
}

func TestCategoryExport(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)

	exp, err := f.svc.Categories.Export(context.Background(), listview.State{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, "categories.csv", exp.Filename)
	assert.Len(t, exp.Rows, 2, "exports every page")
}
