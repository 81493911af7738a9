package service

import (
	"context"
	"testing"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicesAreGeneratedFromOrders(t *testing.T) {
	f := newFixture(t)
	put(t, f, models.CollectionOrders, []models.Order{{ID: 1, ClientName: "c", Total: 100, Status: models.OrderStatusPending, Date: "2024-01-15"}})

	n, err := f.svc.Invoices.EnsureGenerated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	invoices := get[models.Invoice](f, models.CollectionInvoices)
	require.Len(t, invoices, 1)
	assert.Equal(t, int64(1), invoices[0].ID)
	assert.Equal(t, int64(1), invoices[0].OrderID)
	assert.Equal(t, 100.0, invoices[0].Amount)
	assert.Equal(t, models.InvoiceStatusPaid, invoices[0].Status)
	assert.Equal(t, "2024-01-15", invoices[0].Date)

	require.Len(t, f.events.invoices, 1)
	assert.Equal(t, 1, f.events.invoices[0].Count)
}

func TestInvoiceGenerationRunsOnlyOnce(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	view, err := f.svc.Invoices.List(ctx, listview.State{})
	require.NoError(t, err)
	require.Equal(t, 1, view.Total)

	require.NoError(t, f.svc.Invoices.Delete(ctx, admin, view.Rows[0].ID))

	n, err := f.svc.Invoices.EnsureGenerated(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, get[models.Invoice](f, models.CollectionInvoices))
}

func TestExistingInvoicesBlockGeneration(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	put(t, f, models.CollectionInvoices, []models.Invoice{{ID: 7, OrderID: 1, Amount: 5, Status: models.InvoiceStatusPending}})

	n, err := f.svc.Invoices.EnsureGenerated(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// emptying the collection afterwards does not bring generation back
	put(t, f, models.CollectionInvoices, []models.Invoice{})
	n, err = f.svc.Invoices.EnsureGenerated(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNoOrdersNoInvoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.svc.Invoices.EnsureGenerated(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// generation still happens once orders show up
	put(t, f, models.CollectionOrders, []models.Order{{ID: 4, Total: 10}})
	n, err = f.svc.Invoices.EnsureGenerated(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateInvoiceCopiesOrder(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	_, err := f.svc.Invoices.EnsureGenerated(ctx)
	require.NoError(t, err)

	inv, err := f.svc.Invoices.Create(ctx, clerk, InvoiceInput{OrderID: 1, Status: models.InvoiceStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inv.ID)
	assert.Equal(t, 17999.98, inv.Amount)
	assert.Equal(t, "anas zaari", inv.ClientName)
	assert.Equal(t, "Utilisateur", inv.AssignedUserName)

	_, err = f.svc.Invoices.Create(ctx, clerk, InvoiceInput{OrderID: 99})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Invoices.Update(ctx, clerk, inv.ID, InvoiceInput{OrderID: 1, Status: "Refunded"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInvoiceFacets(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	_, err := f.svc.Invoices.EnsureGenerated(ctx)
	require.NoError(t, err)
	_, err = f.svc.Invoices.Create(ctx, admin, InvoiceInput{OrderID: 1, Status: models.InvoiceStatusCancelled})
	require.NoError(t, err)

	view, err := f.svc.Invoices.List(ctx, listview.State{Filters: map[string]string{"status": models.InvoiceStatusPaid, "client": "anas zaari"}})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Total)
}
