package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Options tunes the services. Zero values fall back to the defaults below.
type Options struct {
	Locale          language.Tag
	PageSize        int
	LoginDelay      time.Duration
	HashPasswords   bool
	DefaultPassword string
	Now             func() time.Time
}

const defaultUserPassword = "password123"

// Services groups every domain service sharing one store and publisher.
type Services struct {
	Users       *UserService
	Categories  *CategoryService
	Products    *ProductService
	Clients     *ClientService
	Orders      *OrderService
	Invoices    *InvoiceService
	Auth        *AuthService
	Dashboard   *DashboardService
	Search      *SearchService
	Preferences *PreferencesService
}

// New wires the services together.
func New(s *store.Store, events EventPublisher, opts Options) *Services {
	if events == nil {
		events = NopPublisher{}
	}
	if opts.Locale == language.Und {
		opts.Locale = language.French
	}
	if opts.PageSize <= 0 {
		opts.PageSize = listview.DefaultPageSize
	}
	if opts.DefaultPassword == "" {
		opts.DefaultPassword = defaultUserPassword
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	b := &base{
		store:  s,
		events: events,
		logger: util.GetLogger(),
		opts:   opts,
	}

	return &Services{
		Users:       &UserService{base: b},
		Categories:  &CategoryService{base: b},
		Products:    &ProductService{base: b},
		Clients:     &ClientService{base: b},
		Orders:      &OrderService{base: b},
		Invoices:    &InvoiceService{base: b},
		Auth:        &AuthService{base: b},
		Dashboard:   &DashboardService{base: b},
		Search:      &SearchService{base: b},
		Preferences: &PreferencesService{base: b},
	}
}

type base struct {
	store  *store.Store
	events EventPublisher
	logger *zap.Logger
	opts   Options
}

func (b *base) now() time.Time {
	return b.opts.Now()
}

func (b *base) today() string {
	return b.now().Format(models.DateLayout)
}

// published after the write succeeded; a failed publish does not undo it
func (b *base) collectionChanged(ctx context.Context, collection, action string, recordID int64, actor *models.User) {
	util.RecordsMutatedTotal.WithLabelValues(collection, action).Inc()

	event := &models.CollectionChangedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeCollectionChanged, b.now()),
		Collection: collection,
		Action:     action,
		RecordID:   recordID,
	}
	if actor != nil {
		event.ActorID = actor.ID
	}

	if err := b.events.PublishCollectionChanged(ctx, event); err != nil {
		b.logger.Error("Failed to publish CollectionChanged event",
			zap.String("collection", collection),
			zap.String("action", action),
			zap.Error(err))
	}
}

func computeView[T any](b *base, collection string, records []T, state listview.State, schema listview.Schema[T]) listview.View[T] {
	start := time.Now()
	defer func() {
		util.ViewComputeLatency.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	}()

	if state.PageSize <= 0 {
		state.PageSize = b.opts.PageSize
	}
	return listview.ComputeView(records, state, schema)
}

func indexOf[T any](records []T, id int64, idOf func(T) int64) int {
	for i, r := range records {
		if idOf(r) == id {
			return i
		}
	}
	return -1
}

func maxID[T any](records []T, idOf func(T) int64) int64 {
	var highest int64
	for _, r := range records {
		if id := idOf(r); id > highest {
			highest = id
		}
	}
	return highest
}

func nextID[T any](ctx context.Context, b *base, collection string, records []T, idOf func(T) int64) (int64, error) {
	return b.store.NextID(ctx, collection, maxID(records, idOf))
}

func userID(u models.User) int64         { return u.ID }
func categoryID(c models.Category) int64 { return c.ID }
func productID(p models.Product) int64   { return p.ID }
func clientID(c models.Client) int64     { return c.ID }
func orderID(o models.Order) int64       { return o.ID }
func invoiceID(i models.Invoice) int64   { return i.ID }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func int64Ptr(v int64) *int64 {
	return &v
}

func idString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

// lookups resolves references to display names at read time. A reference to
// a record that no longer exists falls back to the stored name.
type lookups struct {
	users      map[int64]models.User
	categories map[int64]models.Category
	clients    map[int64]models.Client
	orders     map[int64]models.Order
}

func (b *base) loadLookups(ctx context.Context) *lookups {
	l := &lookups{
		users:      make(map[int64]models.User),
		categories: make(map[int64]models.Category),
		clients:    make(map[int64]models.Client),
		orders:     make(map[int64]models.Order),
	}
	for _, u := range store.Read[models.User](ctx, b.store, models.CollectionUsers) {
		l.users[u.ID] = u
	}
	for _, c := range store.Read[models.Category](ctx, b.store, models.CollectionCategories) {
		l.categories[c.ID] = c
	}
	for _, c := range store.Read[models.Client](ctx, b.store, models.CollectionClients) {
		l.clients[c.ID] = c
	}
	for _, o := range store.Read[models.Order](ctx, b.store, models.CollectionOrders) {
		l.orders[o.ID] = o
	}
	return l
}

func (l *lookups) userName(id *int64, stored string) string {
	if id == nil {
		return stored
	}
	if u, ok := l.users[*id]; ok {
		return u.Name
	}
	return stored
}

func (l *lookups) categoryName(id int64, stored string) string {
	if c, ok := l.categories[id]; ok {
		return c.Name
	}
	return stored
}

func (l *lookups) clientName(id int64, stored string) string {
	if c, ok := l.clients[id]; ok {
		return c.Name
	}
	return stored
}

func (l *lookups) product(p models.Product) models.Product {
	p.Category = l.categoryName(p.CategoryID, p.Category)
	p.UserName = l.userName(p.UserID, p.UserName)
	return p
}

func (l *lookups) client(c models.Client) models.Client {
	c.AssignedUserName = l.userName(c.AssignedUserID, c.AssignedUserName)
	return c
}

func (l *lookups) order(o models.Order) models.Order {
	o.ClientName = l.clientName(o.ClientID, o.ClientName)
	o.AssignedUserName = l.userName(o.AssignedUserID, o.AssignedUserName)
	return o
}

func (l *lookups) invoice(inv models.Invoice) models.Invoice {
	if o, ok := l.orders[inv.OrderID]; ok {
		inv.ClientName = l.clientName(o.ClientID, o.ClientName)
	}
	inv.AssignedUserName = l.userName(inv.AssignedUserID, inv.AssignedUserName)
	return inv
}
