package service

import (
	"context"
	"time"

	"techstore-admin/internal/models"

	"github.com/google/uuid"
)

// EventPublisher receives the domain events emitted after successful
// mutations. Publishing is best effort: failures are logged, never returned
// to the caller of the mutation.
type EventPublisher interface {
	PublishCollectionChanged(ctx context.Context, event *models.CollectionChangedEvent) error
	PublishCategoryRenamed(ctx context.Context, event *models.CategoryRenamedEvent) error
	PublishInvoicesGenerated(ctx context.Context, event *models.InvoicesGeneratedEvent) error
	PublishSessionEvent(ctx context.Context, event *models.SessionEvent) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishCollectionChanged(context.Context, *models.CollectionChangedEvent) error {
	return nil
}

func (NopPublisher) PublishCategoryRenamed(context.Context, *models.CategoryRenamedEvent) error {
	return nil
}

func (NopPublisher) PublishInvoicesGenerated(context.Context, *models.InvoicesGeneratedEvent) error {
	return nil
}

func (NopPublisher) PublishSessionEvent(context.Context, *models.SessionEvent) error {
	return nil
}

func newBaseEvent(eventType string, now time.Time) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: now,
	}
}
