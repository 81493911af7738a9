package service

import (
	"context"
	"strings"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"

	"go.uber.org/zap"
)

type ClientService struct {
	*base
}

// ClientRow is a client with the number of orders placed for it.
type ClientRow struct {
	models.Client
	Orders int `json:"orders"`
}

// ClientDetail is a client with its orders.
type ClientDetail struct {
	ClientRow
	OrderList []models.Order `json:"orderList"`
}

type ClientInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	AssignedUserID *int64 `json:"assignedUserId,omitempty"`
}

func (s *ClientService) rows(ctx context.Context) ([]ClientRow, *lookups) {
	l := s.loadLookups(ctx)

	counts := make(map[int64]int)
	for _, o := range l.orders {
		counts[o.ClientID]++
	}

	clients := store.Read[models.Client](ctx, s.store, models.CollectionClients)
	rows := make([]ClientRow, len(clients))
	for i, c := range clients {
		rows[i] = ClientRow{Client: l.client(c), Orders: counts[c.ID]}
	}
	return rows, l
}

func (s *ClientService) List(ctx context.Context, state listview.State) (listview.View[ClientRow], error) {
	ctx, span := util.StartSpan(ctx, "ClientService.List")
	defer span.End()

	rows, _ := s.rows(ctx)
	return computeView(s.base, models.CollectionClients, rows, state, clientSchema(s.opts.Locale)), nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*ClientDetail, error) {
	rows, l := s.rows(ctx)
	i := indexOf(rows, id, func(r ClientRow) int64 { return r.ID })
	if i < 0 {
		return nil, notFound("client", id)
	}

	detail := &ClientDetail{ClientRow: rows[i], OrderList: []models.Order{}}
	for _, o := range store.Read[models.Order](ctx, s.store, models.CollectionOrders) {
		if o.ClientID == id {
			detail.OrderList = append(detail.OrderList, l.order(o))
		}
	}
	return detail, nil
}

// Create adds a client. The email must not be used by another client.
func (s *ClientService) Create(ctx context.Context, actor models.User, in ClientInput) (*models.Client, error) {
	ctx, span := util.StartSpan(ctx, "ClientService.Create")
	defer span.End()

	const op = "clients.create"
	clients := store.Read[models.Client](ctx, s.store, models.CollectionClients)

	client, err := s.build(ctx, op, actor, in, nil)
	if err != nil {
		s.logger.Warn("Client refused", zap.Error(err))
		return nil, err
	}
	email := normalizeEmail(client.Email)
	for _, c := range clients {
		if normalizeEmail(c.Email) == email {
			return nil, invalid(op, "email already in use")
		}
	}

	client.ID, err = nextID(ctx, s.base, models.CollectionClients, clients, clientID)
	if err != nil {
		return nil, err
	}
	clients = append(clients, client)

	if err := store.Write(ctx, s.store, models.CollectionClients, clients); err != nil {
		return nil, err
	}

	s.logger.Info("Client created", zap.Int64("client_id", client.ID))
	s.collectionChanged(ctx, models.CollectionClients, models.ActionCreated, client.ID, &actor)
	return &client, nil
}

func (s *ClientService) Update(ctx context.Context, actor models.User, id int64, in ClientInput) (*models.Client, error) {
	ctx, span := util.StartSpan(ctx, "ClientService.Update")
	defer span.End()

	clients := store.Read[models.Client](ctx, s.store, models.CollectionClients)
	i := indexOf(clients, id, clientID)
	if i < 0 {
		return nil, notFound("client", id)
	}

	client, err := s.build(ctx, "clients.update", actor, in, &clients[i])
	if err != nil {
		s.logger.Warn("Client update refused", zap.Int64("client_id", id), zap.Error(err))
		return nil, err
	}
	client.ID = id
	clients[i] = client

	if err := store.Write(ctx, s.store, models.CollectionClients, clients); err != nil {
		return nil, err
	}

	s.logger.Info("Client updated", zap.Int64("client_id", id))
	s.collectionChanged(ctx, models.CollectionClients, models.ActionUpdated, id, &actor)
	return &client, nil
}

// Delete removes a client. Orders referencing it are kept and fall back to
// their stored client name.
func (s *ClientService) Delete(ctx context.Context, actor models.User, id int64) error {
	ctx, span := util.StartSpan(ctx, "ClientService.Delete")
	defer span.End()

	clients := store.Read[models.Client](ctx, s.store, models.CollectionClients)
	i := indexOf(clients, id, clientID)
	if i < 0 {
		return notFound("client", id)
	}
	clients = append(clients[:i], clients[i+1:]...)

	if err := store.Write(ctx, s.store, models.CollectionClients, clients); err != nil {
		return err
	}

	s.logger.Info("Client deleted", zap.Int64("client_id", id))
	s.collectionChanged(ctx, models.CollectionClients, models.ActionDeleted, id, &actor)
	return nil
}

func (s *ClientService) Export(ctx context.Context, state listview.State) (*Export, error) {
	view, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}
	return clientExport(view.Matched), nil
}

func (s *ClientService) build(ctx context.Context, op string, actor models.User, in ClientInput, current *models.Client) (models.Client, error) {
	c := models.Client{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	}
	if c.Name == "" {
		return c, invalid(op, "client name is required")
	}
	if !ValidEmail(c.Email) {
		return c, invalid(op, "invalid email")
	}

	assigned := in.AssignedUserID
	if assigned == nil && current != nil {
		assigned = current.AssignedUserID
	}
	if assigned == nil {
		assigned = int64Ptr(actor.ID)
	}
	u, ok := s.loadLookups(ctx).users[*assigned]
	if !ok {
		return c, invalid(op, "unknown user %d", *assigned)
	}
	c.AssignedUserID = int64Ptr(u.ID)
	c.AssignedUserName = u.Name
	return c, nil
}
