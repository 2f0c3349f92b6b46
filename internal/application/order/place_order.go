// Package order holds the use cases that create orders: customer placement, which
// checks and decrements stock, and administrative creation, which does neither.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/application"
	dominventory "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability/logctx"
)

const (
	orderService      = "order-service"
	useCasePlaceOrder = "order.place"
	spanPrefix        = "UC."
	publishPeer       = "outbox"

	DefaultTxTimeout      = 5 * time.Second
	DefaultPublishTimeout = 300 * time.Millisecond
)

type Option func(*options)

type options struct {
	txTimeout      time.Duration
	publishTimeout time.Duration
	now            func() time.Time
}

// WithTxTimeout bounds the whole transaction, lock waits included.
func WithTxTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.txTimeout = d
		}
	}
}

func WithPublishTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.publishTimeout = d
		}
	}
}

// WithClock replaces time.Now for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		txTimeout:      DefaultTxTimeout,
		publishTimeout: DefaultPublishTimeout,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type PlaceOrderInput struct {
	CustomerID int64
	ListingID  int64
	Quantity   int
}

var _ application.UseCase[PlaceOrderInput, *domain.Order] = (*PlaceOrderUseCase)(nil)

// PlaceOrderUseCase turns a purchase request into a committed order and the matching
// stock decrement, in one transaction.
type PlaceOrderUseCase struct {
	gateway   domain.Gateway
	publisher domoutbox.Publisher
	tel       observability.Observability
	opts      options

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	unitsSold    observability.Counter   // inventory_units_sold_total

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewPlaceOrderUseCase wires the use case. publisher may be nil, in which case no
// event is emitted after commit.
func NewPlaceOrderUseCase(
	gateway domain.Gateway,
	publisher domoutbox.Publisher,
	tel observability.Observability,
	opts ...Option,
) *PlaceOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()

	return &PlaceOrderUseCase{
		gateway:      gateway,
		publisher:    publisher,
		tel:          tel,
		opts:         buildOptions(opts),
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		unitsSold:    metrics.Counter(observability.MStockDecremented),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// Execute places the order. Every failure is a *PlacementError and leaves stock and
// orders as they were before the call.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCasePlaceOrder))

	var publishErr error
	var placed *domain.Order

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"PlaceOrder",
		attribute.String("use_case", useCasePlaceOrder),
		attribute.Int64("order.customer_id", cmd.CustomerID),
		attribute.Int64("order.listing_id", cmd.ListingID),
		attribute.Int("order.quantity", cmd.Quantity),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()

		observability.EndSpan(span, err, statusText)

		uc.reqCounter.Add(1,
			observability.L("use_case", useCasePlaceOrder),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat,
			observability.L("use_case", useCasePlaceOrder),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("listing_id", cmd.ListingID),
			observability.F("customer_id", cmd.CustomerID),
			observability.F("quantity", cmd.Quantity),
		}
		if placed != nil {
			fields = append(fields,
				observability.F("order_id", placed.ID),
				observability.F("total_price", placed.TotalPrice.String()),
			)
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("use_case_done", fields...)
	}()

	var event domain.PlacedEvent

	txCtx, cancel := context.WithTimeout(ctx, uc.opts.txTimeout)
	defer cancel()

	txErr := uc.gateway.RunInTransaction(txCtx, func(ctx context.Context, tx domain.Tx) error {
		view, err := tx.GetListingWithBookAndShop(ctx, cmd.ListingID)
		if errors.Is(err, dominventory.ErrNotFound) {
			return notFound(err)
		}
		if err != nil {
			return fmt.Errorf("load listing %d: %w", cmd.ListingID, err)
		}

		if cmd.Quantity <= 0 {
			return invalidQuantity()
		}

		listing := view.Listing
		if err := listing.Deduct(cmd.Quantity); err != nil {
			if errors.Is(err, dominventory.ErrInsufficientStock) {
				return insufficientStock(view.Listing.Quantity, view.Book.Title, view.Shop.Name)
			}
			return err
		}

		total := view.UnitPrice().Mul(decimal.NewFromInt(int64(cmd.Quantity)))
		entity, err := domain.New(cmd.CustomerID, cmd.ListingID, cmd.Quantity, total)
		if err != nil {
			return invalidQuantity()
		}
		entity.OrderedAt = uc.opts.now()

		if err := tx.InsertOrder(ctx, entity); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := tx.UpdateListingQuantity(ctx, listing.ID, listing.Quantity, view.Listing.Version); err != nil {
			return fmt.Errorf("update listing %d: %w", listing.ID, err)
		}

		placed = entity
		event = domain.NewPlacedEvent(entity, listing.Quantity, view.Book.Title, view.Shop.Name)
		return nil
	})
	if txErr != nil {
		placed = nil
		var perr *PlacementError
		if !errors.As(txErr, &perr) {
			perr = operationFailed(txErr)
		}
		outcome, statusText = "error", placementStatus(perr)
		return nil, perr
	}

	uc.unitsSold.Add(float64(placed.Quantity))
	span.SetAttributes(
		attribute.Int64("order.id", placed.ID),
		attribute.String("order.status", string(placed.Status)),
	)
	span.AddEvent("order.placed", trace.WithAttributes(attribute.Int64("order.id", placed.ID)))

	publishErr = publishBestEffort(ctx, uc.publisher, event, uc.opts.publishTimeout, uc.extCounter, uc.extHistogram)
	if publishErr != nil {
		span.RecordError(publishErr)
		statusText = "EVENT_PUBLISH_FAILED"
	}

	return placed, nil
}

// placementStatus maps a failure to the status code used in logs and span status.
func placementStatus(perr *PlacementError) string {
	switch perr.Kind {
	case KindNotFound:
		return "LISTING_NOT_FOUND"
	case KindInvalidQuantity:
		return "QUANTITY_INVALID"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindInvalidOrder:
		return "ORDER_INVALID"
	}
	switch {
	case errors.Is(perr, dominventory.ErrConcurrencyConflict):
		return "CONCURRENCY_CONFLICT"
	case errors.Is(perr, context.DeadlineExceeded):
		return "TX_TIMEOUT"
	case errors.Is(perr, context.Canceled):
		return "CONTEXT_CANCELED"
	default:
		return "PERSISTENCE_FAILED"
	}
}

// publishBestEffort emits e after commit. The error is returned for logging only.
func publishBestEffort(
	ctx context.Context,
	publisher domoutbox.Publisher,
	e domoutbox.Event,
	timeout time.Duration,
	extCounter observability.Counter,
	extHistogram observability.Histogram,
) error {
	if publisher == nil {
		return nil
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	pubStart := time.Now()
	pubOutcome := "success"
	err := publisher.Publish(pubCtx, e)
	switch {
	case err != nil && pubCtx.Err() != nil:
		pubOutcome = "canceled"
	case err != nil:
		pubOutcome = "error"
	}

	extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
		observability.L("outcome", pubOutcome),
	)
	extHistogram.Observe(time.Since(pubStart).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
	)
	return err
}
