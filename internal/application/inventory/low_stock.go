package inventory

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability/logctx"
)

const (
	useCaseLowStock          = "inventory.low_stock"
	DefaultLowStockThreshold = 2
)

// LowStockResult tells the caller whether the placement crossed the alert threshold.
type LowStockResult struct {
	Alerted   bool
	Remaining int
	Threshold int
}

var _ application.UseCase[domorder.PlacedEvent, *LowStockResult] = (*LowStockUseCase)(nil)

// LowStockUseCase warns when a placement leaves a listing at or below the threshold.
type LowStockUseCase struct {
	threshold int
	tel       observability.Observability

	log          observability.Logger
	alerts       observability.Counter // inventory_low_stock_total
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

// NewLowStockUseCase uses DefaultLowStockThreshold when threshold is negative.
func NewLowStockUseCase(threshold int, tel observability.Observability) *LowStockUseCase {
	if threshold < 0 {
		threshold = DefaultLowStockThreshold
	}
	if tel == nil {
		tel = observability.Nop()
	}
	return &LowStockUseCase{
		threshold:    threshold,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", inventoryService)),
		alerts:       tel.Metrics().Counter(observability.MInventoryLowStock),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

func (uc *LowStockUseCase) Execute(ctx context.Context, e domorder.PlacedEvent) (*LowStockResult, error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseLowStock))

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"LowStock",
		attribute.String("use_case", useCaseLowStock),
		attribute.Int64("listing.id", e.ListingID),
		attribute.Int("listing.remaining", e.RemainingQuantity),
	)
	start := time.Now()
	result := &LowStockResult{Remaining: e.RemainingQuantity, Threshold: uc.threshold}

	defer func() {
		lat := time.Since(start).Seconds()
		span.SetStatus(codes.Ok, "OK")
		span.End()

		outcome := "skipped"
		if result.Alerted {
			outcome = "alerted"
		}
		uc.reqCounter.Add(1, observability.L("use_case", useCaseLowStock), observability.L("outcome", outcome))
		uc.durHistogram.Observe(lat, observability.L("use_case", useCaseLowStock))
	}()

	if e.RemainingQuantity > uc.threshold {
		return result, nil
	}

	result.Alerted = true
	uc.alerts.Add(1)
	span.AddEvent("inventory.low_stock", trace.WithAttributes(attribute.Int64("order.id", e.OrderID)))

	fields := []observability.Field{
		observability.F("listing_id", e.ListingID),
		observability.F("order_id", e.OrderID),
		observability.F("book_title", e.BookTitle),
		observability.F("shop_name", e.ShopName),
		observability.F("remaining_quantity", e.RemainingQuantity),
		observability.F("threshold", uc.threshold),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, observability.F("trace_id", sc.TraceID().String()))
	}
	logger.Warn("inventory_low_stock", fields...)
	return result, nil
}
