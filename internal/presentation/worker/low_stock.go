// Package workerpresentation drives use cases from events on the outbox bus.
package workerpresentation

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/application"
	appInventory "github.com/Zhima-Mochi/minishop-bookshop/internal/application/inventory"
	domorder "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability/logctx"
)

const workerService = "inventory-worker"

// LowStockWorker feeds order.placed events to the low stock use case.
type LowStockWorker struct {
	subscriber domoutbox.Subscriber
	useCase    application.UseCase[domorder.PlacedEvent, *appInventory.LowStockResult]
	log        observability.Logger
}

func NewLowStockWorker(
	subscriber domoutbox.Subscriber,
	useCase application.UseCase[domorder.PlacedEvent, *appInventory.LowStockResult],
	logger observability.Logger,
) *LowStockWorker {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LowStockWorker{
		subscriber: subscriber,
		useCase:    useCase,
		log:        logger.With(observability.F("service", workerService)),
	}
}

// Start subscribes the worker. Call it before the bus starts dispatching.
func (w *LowStockWorker) Start() {
	if w.subscriber == nil || w.useCase == nil {
		return
	}
	w.subscriber.Subscribe(domorder.PlacedEvent{}.EventName(), w.handleOrderPlaced)
}

func (w *LowStockWorker) handleOrderPlaced(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.PlacedEvent)
	if !ok {
		logctx.FromOr(ctx, w.log).Warn("event_type_mismatch", observability.F("event", e.EventName()))
		return nil
	}

	ctx = WithEventContext(ctx, logctx.FromOr(ctx, w.log), map[string]string{
		"event":    e.EventName(),
		"use_case": "inventory.low_stock",
	})
	if _, err := w.useCase.Execute(ctx, evt); err != nil {
		return fmt.Errorf("worker: low stock: %w", err)
	}
	return nil
}
