package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"techstore-admin/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	key   string
	event any
}

type fakeProducer struct {
	sent []sent
	err  error
}

func (f *fakeProducer) PublishEvent(_ context.Context, key string, event any) error {
	f.sent = append(f.sent, sent{key, event})
	return f.err
}

func TestEventPublisherKeys(t *testing.T) {
	p := &fakeProducer{}
	ep := NewEventPublisher(p)
	ctx := context.Background()

	require.NoError(t, ep.PublishCollectionChanged(ctx, &models.CollectionChangedEvent{Collection: models.CollectionProducts}))
	require.NoError(t, ep.PublishCategoryRenamed(ctx, &models.CategoryRenamedEvent{CategoryID: 3}))
	require.NoError(t, ep.PublishInvoicesGenerated(ctx, &models.InvoicesGeneratedEvent{Count: 2}))
	require.NoError(t, ep.PublishSessionEvent(ctx, &models.SessionEvent{UserID: 7}))

	var keys []string
	for _, s := range p.sent {
		keys = append(keys, s.key)
	}
	assert.Equal(t, []string{"collection-products", "category-3", "collection-invoices", "user-7"}, keys)
}

func TestEventPublisherPropagatesErrors(t *testing.T) {
	boom := errors.New("broker down")
	ep := NewEventPublisher(&fakeProducer{err: boom})

	err := ep.PublishCollectionChanged(context.Background(), &models.CollectionChangedEvent{Collection: models.CollectionUsers})
	assert.ErrorIs(t, err, boom)
}

func TestEventPublisherWithoutProducer(t *testing.T) {
	ep := NewEventPublisher(nil)
	assert.NoError(t, ep.PublishSessionEvent(context.Background(), &models.SessionEvent{UserID: 1}))
}

func message(t *testing.T, event any) kafka.Message {
	t.Helper()
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestHandleMessageRoutesByType(t *testing.T) {
	eh := NewEventHandler()

	var changed *models.CollectionChangedEvent
	var renamed *models.CategoryRenamedEvent
	eh.OnCollectionChanged(func(_ context.Context, e *models.CollectionChangedEvent) error {
		changed = e
		return nil
	})
	eh.OnCategoryRenamed(func(_ context.Context, e *models.CategoryRenamedEvent) error {
		renamed = e
		return nil
	})

	ctx := context.Background()
	base := models.BaseEvent{EventID: "e1", Timestamp: time.Now()}

	base.EventType = models.EventTypeCollectionChanged
	require.NoError(t, eh.HandleMessage(ctx, message(t, models.CollectionChangedEvent{BaseEvent: base, Collection: models.CollectionCategories, Action: models.ActionDeleted, RecordID: 4})))
	require.NotNil(t, changed)
	assert.Equal(t, models.CollectionCategories, changed.Collection)
	assert.Equal(t, int64(4), changed.RecordID)

	base.EventType = models.EventTypeCategoryRenamed
	require.NoError(t, eh.HandleMessage(ctx, message(t, models.CategoryRenamedEvent{BaseEvent: base, CategoryID: 2, OldName: "a", NewName: "b"})))
	require.NotNil(t, renamed)
	assert.Equal(t, "b", renamed.NewName)

	base.EventType = models.EventTypeUserLoggedIn
	assert.NoError(t, eh.HandleMessage(ctx, message(t, models.SessionEvent{BaseEvent: base})))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	err := NewEventHandler().HandleMessage(context.Background(), kafka.Message{Value: []byte("{")})
	assert.Error(t, err)
}
