package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"techstore-admin/internal/models"
	"techstore-admin/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher writes one keyed event. *Producer implements it.
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

// EventPublisher publishes domain events. Without a producer every publish
// is a no-op, which is how the server runs when Kafka is disabled.
type EventPublisher struct {
	producer Publisher
}

func NewEventPublisher(producer Publisher) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func (ep *EventPublisher) publish(ctx context.Context, key string, event any) error {
	if ep.producer == nil {
		return nil
	}
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishCollectionChanged publishes COLLECTION_CHANGED keyed by collection so
// that changes to one collection stay ordered.
func (ep *EventPublisher) PublishCollectionChanged(ctx context.Context, event *models.CollectionChangedEvent) error {
	return ep.publish(ctx, "collection-"+event.Collection, event)
}

func (ep *EventPublisher) PublishCategoryRenamed(ctx context.Context, event *models.CategoryRenamedEvent) error {
	key := fmt.Sprintf("category-%d", event.CategoryID)
	return ep.publish(ctx, key, event)
}

func (ep *EventPublisher) PublishInvoicesGenerated(ctx context.Context, event *models.InvoicesGeneratedEvent) error {
	return ep.publish(ctx, "collection-"+models.CollectionInvoices, event)
}

func (ep *EventPublisher) PublishSessionEvent(ctx context.Context, event *models.SessionEvent) error {
	key := fmt.Sprintf("user-%d", event.UserID)
	return ep.publish(ctx, key, event)
}

// EventHandler routes incoming events to the registered callbacks
type EventHandler struct {
	onCollectionChanged func(context.Context, *models.CollectionChangedEvent) error
	onCategoryRenamed   func(context.Context, *models.CategoryRenamedEvent) error
	logger              *zap.Logger
}

func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

func (eh *EventHandler) OnCollectionChanged(handler func(context.Context, *models.CollectionChangedEvent) error) {
	eh.onCollectionChanged = handler
}

func (eh *EventHandler) OnCategoryRenamed(handler func(context.Context, *models.CategoryRenamedEvent) error) {
	eh.onCategoryRenamed = handler
}

// HandleMessage decodes msg and calls the callback for its event type.
// Events nobody registered for are skipped.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event", zap.String("type", baseEvent.EventType), zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeCollectionChanged:
		if eh.onCollectionChanged != nil {
			var event models.CollectionChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CollectionChanged event: %w", err)
			}
			return eh.onCollectionChanged(ctx, &event)
		}

	case models.EventTypeCategoryRenamed:
		if eh.onCategoryRenamed != nil {
			var event models.CategoryRenamedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CategoryRenamed event: %w", err)
			}
			return eh.onCategoryRenamed(ctx, &event)
		}
	}

	return nil
}
