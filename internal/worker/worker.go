package worker

import (
	"context"
	"time"

	"techstore-admin/internal/broker"
	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"
	"techstore-admin/internal/util"

	"go.uber.org/zap"
)

// CountRefresher recomputes the stored category product counts.
type CountRefresher interface {
	RefreshCounts(ctx context.Context) error
}

// DerivedDataWorker keeps derived data in step with product and category
// changes published by any instance. Bursts of changes are coalesced into a
// single recount.
type DerivedDataWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	debouncer    *listview.Debouncer
	logger       *zap.Logger
}

func NewDerivedDataWorker(consumer *broker.Consumer, counts CountRefresher, window time.Duration) *DerivedDataWorker {
	logger := util.GetLogger()

	w := &DerivedDataWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		logger:       logger,
	}
	w.debouncer = listview.NewDebouncer(window, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := counts.RefreshCounts(ctx); err != nil {
			logger.Error("Failed to refresh category counts", zap.Error(err))
		}
	})

	w.eventHandler.OnCollectionChanged(w.handleCollectionChanged)
	w.eventHandler.OnCategoryRenamed(func(context.Context, *models.CategoryRenamedEvent) error {
		w.debouncer.Trigger()
		return nil
	})
	return w
}

func (w *DerivedDataWorker) handleCollectionChanged(_ context.Context, e *models.CollectionChangedEvent) error {
	// recounts publish a change themselves
	if e.Action == models.ActionRecount {
		return nil
	}
	switch e.Collection {
	case models.CollectionProducts, models.CollectionCategories:
		w.debouncer.Trigger()
	}
	return nil
}

// Start consumes events until ctx is done
func (w *DerivedDataWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting derived data worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

func (w *DerivedDataWorker) Stop() error {
	w.logger.Info("Stopping derived data worker")
	w.debouncer.Stop()
	if w.consumer == nil {
		return nil
	}
	return w.consumer.Close()
}
