package service

import (
	"context"
	"time"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"

	"go.uber.org/zap"
)

// OrderService handles order business logic
type OrderService struct {
	*base
}

// OrderInput represents a request to create or replace an order
type OrderInput struct {
	ClientID       int64            `json:"clientId"`
	Products       []OrderLineInput `json:"products"`
	Status         string           `json:"status,omitempty"`
	Date           string           `json:"date,omitempty"`
	AssignedUserID *int64           `json:"assignedUserId,omitempty"`
}

// OrderLineInput represents a product in an order. A zero quantity means one.
type OrderLineInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (s *OrderService) List(ctx context.Context, state listview.State) (listview.View[models.Order], error) {
	ctx, span := util.StartSpan(ctx, "OrderService.List")
	defer span.End()

	return computeView(s.base, models.CollectionOrders, s.resolved(ctx), state, orderSchema(s.opts.Locale, s.now())), nil
}

func (s *OrderService) resolved(ctx context.Context) []models.Order {
	l := s.loadLookups(ctx)
	orders := store.Read[models.Order](ctx, s.store, models.CollectionOrders)
	for i := range orders {
		orders[i] = l.order(orders[i])
	}
	return orders
}

func (s *OrderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	orders := s.resolved(ctx)
	i := indexOf(orders, id, orderID)
	if i < 0 {
		return nil, notFound("order", id)
	}
	return &orders[i], nil
}

// Create creates an order. The unit prices are copied from the products and
// the total is fixed at this point.
func (s *OrderService) Create(ctx context.Context, actor models.User, in OrderInput) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Create")
	defer span.End()

	orders := store.Read[models.Order](ctx, s.store, models.CollectionOrders)
	order, err := s.build(ctx, "orders.create", actor, in, nil)
	if err != nil {
		s.logger.Warn("Order refused", zap.Error(err))
		return nil, err
	}

	order.ID, err = nextID(ctx, s.base, models.CollectionOrders, orders, orderID)
	if err != nil {
		return nil, err
	}
	orders = append(orders, order)

	if err := store.Write(ctx, s.store, models.CollectionOrders, orders); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("client_id", order.ClientID),
		zap.Float64("total", order.Total))
	s.collectionChanged(ctx, models.CollectionOrders, models.ActionCreated, order.ID, &actor)
	return &order, nil
}

// Update replaces an order. Invoices already derived from it are left as
// they are.
func (s *OrderService) Update(ctx context.Context, actor models.User, id int64, in OrderInput) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Update")
	defer span.End()

	orders := store.Read[models.Order](ctx, s.store, models.CollectionOrders)
	i := indexOf(orders, id, orderID)
	if i < 0 {
		return nil, notFound("order", id)
	}

	order, err := s.build(ctx, "orders.update", actor, in, &orders[i])
	if err != nil {
		s.logger.Warn("Order update refused", zap.Int64("order_id", id), zap.Error(err))
		return nil, err
	}
	order.ID = id
	orders[i] = order

	if err := store.Write(ctx, s.store, models.CollectionOrders, orders); err != nil {
		return nil, err
	}

	s.logger.Info("Order updated", zap.Int64("order_id", id), zap.String("status", order.Status))
	s.collectionChanged(ctx, models.CollectionOrders, models.ActionUpdated, id, &actor)
	return &order, nil
}

func (s *OrderService) Delete(ctx context.Context, actor models.User, id int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Delete")
	defer span.End()

	orders := store.Read[models.Order](ctx, s.store, models.CollectionOrders)
	i := indexOf(orders, id, orderID)
	if i < 0 {
		return notFound("order", id)
	}
	orders = append(orders[:i], orders[i+1:]...)

	if err := store.Write(ctx, s.store, models.CollectionOrders, orders); err != nil {
		return err
	}

	s.logger.Info("Order deleted", zap.Int64("order_id", id))
	s.collectionChanged(ctx, models.CollectionOrders, models.ActionDeleted, id, &actor)
	return nil
}

func (s *OrderService) Export(ctx context.Context, state listview.State) (*Export, error) {
	view, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}
	return orderExport(view.Matched), nil
}

func (s *OrderService) build(ctx context.Context, op string, actor models.User, in OrderInput, current *models.Order) (models.Order, error) {
	var o models.Order
	l := s.loadLookups(ctx)

	client, ok := l.clients[in.ClientID]
	if !ok {
		return o, invalid(op, "unknown client %d", in.ClientID)
	}
	o.ClientID = client.ID
	o.ClientName = client.Name

	if len(in.Products) == 0 {
		return o, invalid(op, "an order needs at least one product")
	}
	products := make(map[int64]models.Product)
	for _, p := range store.Read[models.Product](ctx, s.store, models.CollectionProducts) {
		products[p.ID] = p
	}

	o.Products = make([]models.OrderLine, 0, len(in.Products))
	for _, line := range in.Products {
		p, ok := products[line.ProductID]
		if !ok {
			return o, invalid(op, "unknown product %d", line.ProductID)
		}
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return o, invalid(op, "quantity must be positive")
		}
		o.Products = append(o.Products, models.OrderLine{ProductID: p.ID, Quantity: qty, Price: p.Price})
	}
	o.Total = calculateTotal(o.Products)

	o.Status = in.Status
	if o.Status == "" && current != nil {
		o.Status = current.Status
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if !models.ValidOrderStatuses[o.Status] {
		return o, invalid(op, "invalid order status %q", o.Status)
	}

	o.Date = in.Date
	if o.Date == "" && current != nil {
		o.Date = current.Date
	}
	if o.Date == "" {
		o.Date = s.today()
	}
	if _, err := time.Parse(models.DateLayout, o.Date); err != nil {
		return o, invalid(op, "date must be formatted YYYY-MM-DD")
	}

	assigned := in.AssignedUserID
	if assigned == nil && current != nil {
		assigned = current.AssignedUserID
	}
	if assigned == nil {
		assigned = int64Ptr(actor.ID)
	}
	u, ok := l.users[*assigned]
	if !ok {
		return o, invalid(op, "unknown user %d", *assigned)
	}
	o.AssignedUserID = int64Ptr(u.ID)
	o.AssignedUserName = u.Name

	return o, nil
}

// calculateTotal calculates the total amount of the order lines
func calculateTotal(lines []models.OrderLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}
