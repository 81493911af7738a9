package service

import (
	"context"
	"errors"
	"time"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"

	"go.uber.org/zap"
)

// InvoicesGeneratedKey marks that invoices have been derived from orders. Once
// set, generation never runs again even if the invoices are emptied.
const InvoicesGeneratedKey = "invoices_generated"

type InvoiceService struct {
	*base
}

type generationMarker struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Count       int       `json:"count"`
}

type InvoiceInput struct {
	OrderID        int64  `json:"orderId"`
	Status         string `json:"status,omitempty"`
	AssignedUserID *int64 `json:"assignedUserId,omitempty"`
}

// EnsureGenerated derives one Paid invoice per order when the invoices are
// empty, orders exist and no generation happened before. It returns the
// number of invoices created.
func (s *InvoiceService) EnsureGenerated(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.EnsureGenerated")
	defer span.End()

	_, err := store.ReadValue[generationMarker](ctx, s.store, InvoicesGeneratedKey)
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, store.ErrValueNotFound) {
		s.logger.Error("Failed to read invoice generation marker", zap.Error(err))
		return 0, err
	}

	invoices := store.Read[models.Invoice](ctx, s.store, models.CollectionInvoices)
	if len(invoices) > 0 {
		// invoices exist from before the marker; never derive on top of them
		return 0, s.mark(ctx, 0)
	}

	orders := store.Read[models.Order](ctx, s.store, models.CollectionOrders)
	if len(orders) == 0 {
		return 0, nil
	}

	for _, o := range orders {
		id, err := s.store.NextID(ctx, models.CollectionInvoices, maxID(invoices, invoiceID))
		if err != nil {
			return 0, err
		}
		invoices = append(invoices, models.Invoice{
			ID:               id,
			OrderID:          o.ID,
			ClientName:       o.ClientName,
			AssignedUserID:   o.AssignedUserID,
			AssignedUserName: o.AssignedUserName,
			Amount:           o.Total,
			Date:             o.Date,
			Status:           models.InvoiceStatusPaid,
		})
	}

	if err := store.Write(ctx, s.store, models.CollectionInvoices, invoices); err != nil {
		return 0, err
	}
	if err := s.mark(ctx, len(invoices)); err != nil {
		return len(invoices), err
	}

	util.InvoicesGeneratedTotal.Add(float64(len(invoices)))
	s.logger.Info("Invoices generated from orders", zap.Int("count", len(invoices)))
	s.collectionChanged(ctx, models.CollectionInvoices, models.ActionCreated, 0, nil)

	event := &models.InvoicesGeneratedEvent{
		BaseEvent: newBaseEvent(models.EventTypeInvoicesGenerated, s.now()),
		Count:     len(invoices),
	}
	if err := s.events.PublishInvoicesGenerated(ctx, event); err != nil {
		s.logger.Error("Failed to publish InvoicesGenerated event", zap.Error(err))
	}
	return len(invoices), nil
}

func (s *InvoiceService) mark(ctx context.Context, count int) error {
	return store.WriteValue(ctx, s.store, InvoicesGeneratedKey, generationMarker{GeneratedAt: s.now(), Count: count})
}

// List runs the one-time generation, then returns the invoices view.
func (s *InvoiceService) List(ctx context.Context, state listview.State) (listview.View[models.Invoice], error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.List")
	defer span.End()

	if _, err := s.EnsureGenerated(ctx); err != nil {
		return listview.View[models.Invoice]{}, err
	}
	return computeView(s.base, models.CollectionInvoices, s.resolved(ctx), state, invoiceSchema(s.opts.Locale)), nil
}

func (s *InvoiceService) resolved(ctx context.Context) []models.Invoice {
	l := s.loadLookups(ctx)
	invoices := store.Read[models.Invoice](ctx, s.store, models.CollectionInvoices)
	for i := range invoices {
		invoices[i] = l.invoice(invoices[i])
	}
	return invoices
}

func (s *InvoiceService) Get(ctx context.Context, id int64) (*models.Invoice, error) {
	invoices := s.resolved(ctx)
	i := indexOf(invoices, id, invoiceID)
	if i < 0 {
		return nil, notFound("invoice", id)
	}
	return &invoices[i], nil
}

func (s *InvoiceService) Create(ctx context.Context, actor models.User, in InvoiceInput) (*models.Invoice, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.Create")
	defer span.End()

	invoices := store.Read[models.Invoice](ctx, s.store, models.CollectionInvoices)
	invoice, err := s.build(ctx, "invoices.create", actor, in, nil)
	if err != nil {
		s.logger.Warn("Invoice refused", zap.Error(err))
		return nil, err
	}

	invoice.ID, err = nextID(ctx, s.base, models.CollectionInvoices, invoices, invoiceID)
	if err != nil {
		return nil, err
	}
	invoices = append(invoices, invoice)

	if err := store.Write(ctx, s.store, models.CollectionInvoices, invoices); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created", zap.Int64("invoice_id", invoice.ID), zap.Int64("order_id", invoice.OrderID))
	s.collectionChanged(ctx, models.CollectionInvoices, models.ActionCreated, invoice.ID, &actor)
	return &invoice, nil
}

// Update rebuilds an invoice from its order. Amount and date are copied
// from the order again.
func (s *InvoiceService) Update(ctx context.Context, actor models.User, id int64, in InvoiceInput) (*models.Invoice, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.Update")
	defer span.End()

	invoices := store.Read[models.Invoice](ctx, s.store, models.CollectionInvoices)
	i := indexOf(invoices, id, invoiceID)
	if i < 0 {
		return nil, notFound("invoice", id)
	}

	invoice, err := s.build(ctx, "invoices.update", actor, in, &invoices[i])
	if err != nil {
		s.logger.Warn("Invoice update refused", zap.Int64("invoice_id", id), zap.Error(err))
		return nil, err
	}
	invoice.ID = id
	invoices[i] = invoice

	if err := store.Write(ctx, s.store, models.CollectionInvoices, invoices); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice updated", zap.Int64("invoice_id", id), zap.String("status", invoice.Status))
	s.collectionChanged(ctx, models.CollectionInvoices, models.ActionUpdated, id, &actor)
	return &invoice, nil
}

func (s *InvoiceService) Delete(ctx context.Context, actor models.User, id int64) error {
	ctx, span := util.StartSpan(ctx, "InvoiceService.Delete")
	defer span.End()

	invoices := store.Read[models.Invoice](ctx, s.store, models.CollectionInvoices)
	i := indexOf(invoices, id, invoiceID)
	if i < 0 {
		return notFound("invoice", id)
	}
	invoices = append(invoices[:i], invoices[i+1:]...)

	if err := store.Write(ctx, s.store, models.CollectionInvoices, invoices); err != nil {
		return err
	}

	s.logger.Info("Invoice deleted", zap.Int64("invoice_id", id))
	s.collectionChanged(ctx, models.CollectionInvoices, models.ActionDeleted, id, &actor)
	return nil
}

func (s *InvoiceService) Export(ctx context.Context, state listview.State) (*Export, error) {
	view, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}
	return invoiceExport(view.Matched), nil
}

func (s *InvoiceService) build(ctx context.Context, op string, actor models.User, in InvoiceInput, current *models.Invoice) (models.Invoice, error) {
	var inv models.Invoice
	l := s.loadLookups(ctx)

	order, ok := l.orders[in.OrderID]
	if !ok {
		return inv, invalid(op, "unknown order %d", in.OrderID)
	}
	inv.OrderID = order.ID
	inv.ClientName = l.clientName(order.ClientID, order.ClientName)
	inv.Amount = order.Total
	inv.Date = order.Date

	inv.Status = in.Status
	if inv.Status == "" && current != nil {
		inv.Status = current.Status
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusPaid
	}
	if !models.ValidInvoiceStatuses[inv.Status] {
		return inv, invalid(op, "invalid invoice status %q", inv.Status)
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
		return inv, invalid(op, "unknown user %d", *assigned)
	}
	inv.AssignedUserID = int64Ptr(u.ID)
	inv.AssignedUserName = u.Name

	return inv, nil
}
