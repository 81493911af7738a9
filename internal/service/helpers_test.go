package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"techstore-admin/internal/models"
	"techstore-admin/internal/store"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 17, 15, 4, 5, 0, time.UTC) // a Wednesday

type recordingPublisher struct {
	mu       sync.Mutex
	changes  []*models.CollectionChangedEvent
	renames  []*models.CategoryRenamedEvent
	invoices []*models.InvoicesGeneratedEvent
	sessions []*models.SessionEvent
}

func (p *recordingPublisher) PublishCollectionChanged(_ context.Context, e *models.CollectionChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, e)
	return nil
}

func (p *recordingPublisher) PublishCategoryRenamed(_ context.Context, e *models.CategoryRenamedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renames = append(p.renames, e)
	return nil
}

func (p *recordingPublisher) PublishInvoicesGenerated(_ context.Context, e *models.InvoicesGeneratedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invoices = append(p.invoices, e)
	return nil
}

func (p *recordingPublisher) PublishSessionEvent(_ context.Context, e *models.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = append(p.sessions, e)
	return nil
}

type fixture struct {
	svc    *Services
	store  *store.Store
	events *recordingPublisher
}

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	t.Helper()

	s := store.NewStore(store.NewMemoryBackend(), "techstore")
	events := &recordingPublisher{}
	o := Options{Now: func() time.Time { return testNow }}
	for _, fn := range opts {
		fn(&o)
	}
	return &fixture{svc: New(s, events, o), store: s, events: events}
}

func put[T any](t *testing.T, f *fixture, collection string, records []T) {
	t.Helper()
	require.NoError(t, store.Write(context.Background(), f.store, collection, records))
}

func get[T any](f *fixture, collection string) []T {
	return store.Read[T](context.Background(), f.store, collection)
}

var (
	admin = models.User{ID: 1, Email: "admin@app.com", Password: "admin123", Role: models.RoleAdmin, Name: "Administrateur", CreatedAt: "2024-01-02T10:00:00Z"}
	clerk = models.User{ID: 2, Email: "user@app.com", Password: "user123", Role: models.RoleUser, Name: "Utilisateur", CreatedAt: "2023-11-20T08:30:00Z"}
)

// withShop loads two users, two categories, three products, two clients and
// one order.
func withShop(t *testing.T, f *fixture) {
	t.Helper()
	put(t, f, models.CollectionUsers, []models.User{admin, clerk})
	put(t, f, models.CollectionCategories, []models.Category{
		{ID: 1, Name: "Informatique"},
		{ID: 2, Name: "Téléphonie"},
	})
	put(t, f, models.CollectionProducts, []models.Product{
		{ID: 1, Name: "Laptop HP", Price: 8999.99, Stock: 15, CategoryID: 1, Category: "Informatique", UserID: int64Ptr(1), UserName: "Administrateur"},
		{ID: 2, Name: "iPhone 15", Price: 12099.99, Stock: 8, CategoryID: 2, Category: "Téléphonie", UserID: int64Ptr(1), UserName: "Administrateur"},
		{ID: 3, Name: "SSD 1TB", Price: 449.99, Stock: 35, CategoryID: 1, Category: "Informatique", UserID: int64Ptr(2), UserName: "Utilisateur"},
	})
	put(t, f, models.CollectionClients, []models.Client{
		{ID: 1, Name: "anas zaari", Email: "anass@gmail.com", AssignedUserID: int64Ptr(1), AssignedUserName: "Administrateur"},
		{ID: 2, Name: "amin wahbi", Email: "amin@gmail.com", AssignedUserID: int64Ptr(2), AssignedUserName: "Utilisateur"},
	})
	put(t, f, models.CollectionOrders, []models.Order{
		{ID: 1, ClientID: 1, ClientName: "anas zaari", Products: []models.OrderLine{{ProductID: 1, Quantity: 2, Price: 8999.99}}, Total: 17999.98, Status: models.OrderStatusPending, Date: "2024-01-15", AssignedUserID: int64Ptr(1), AssignedUserName: "Administrateur"},
	})
}
