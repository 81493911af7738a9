package worker

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"techstore-admin/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) RefreshCounts(context.Context) error {
	c.calls.Add(1)
	return nil
}

func changed(t *testing.T, collection, action string) kafka.Message {
	t.Helper()
	b, err := json.Marshal(models.CollectionChangedEvent{
		BaseEvent:  models.BaseEvent{EventType: models.EventTypeCollectionChanged},
		Collection: collection,
		Action:     action,
	})
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestBurstOfProductChangesRefreshesOnce(t *testing.T) {
	r := &countingRefresher{}
	w := NewDerivedDataWorker(nil, r, 20*time.Millisecond)
	defer w.Stop()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, w.eventHandler.HandleMessage(ctx, changed(t, models.CollectionProducts, models.ActionUpdated)))
	}
	require.NoError(t, w.eventHandler.HandleMessage(ctx, changed(t, models.CollectionCategories, models.ActionCreated)))

	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestIgnoredChanges(t *testing.T) {
	r := &countingRefresher{}
	w := NewDerivedDataWorker(nil, r, 10*time.Millisecond)
	defer w.Stop()
	ctx := context.Background()

	require.NoError(t, w.eventHandler.HandleMessage(ctx, changed(t, models.CollectionOrders, models.ActionCreated)))
	require.NoError(t, w.eventHandler.HandleMessage(ctx, changed(t, models.CollectionCategories, models.ActionRecount)))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, r.calls.Load())
}

func TestRenameTriggersRefresh(t *testing.T) {
	r := &countingRefresher{}
	w := NewDerivedDataWorker(nil, r, 10*time.Millisecond)
	defer w.Stop()

	b, err := json.Marshal(models.CategoryRenamedEvent{
		BaseEvent:  models.BaseEvent{EventType: models.EventTypeCategoryRenamed},
		CategoryID: 1,
	})
	require.NoError(t, err)
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), kafka.Message{Value: b}))

	assert.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}
