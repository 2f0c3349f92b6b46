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
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability/logctx"
)

const useCaseAdminCreate = "order.admin_create"

// AdminCreateOrderInput is a back-office order entry. Status defaults to Pending.
type AdminCreateOrderInput struct {
	CustomerID     int64
	ListingID      int64
	Quantity       int
	Status         domain.Status
	Notes          string
	ShippedAt      *time.Time
	ShippingMethod string
	ShippingCost   decimal.Decimal
	OrderedAt      time.Time
}

var _ application.UseCase[AdminCreateOrderInput, *domain.Order] = (*AdminCreateOrderUseCase)(nil)

// AdminCreateOrderUseCase records an order without checking or decrementing stock,
// for manual and backorder entry. Pricing is the same as for PlaceOrderUseCase.
type AdminCreateOrderUseCase struct {
	gateway domain.Gateway
	tel     observability.Observability
	opts    options

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewAdminCreateOrderUseCase(gateway domain.Gateway, tel observability.Observability, opts ...Option) *AdminCreateOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &AdminCreateOrderUseCase{
		gateway:      gateway,
		tel:          tel,
		opts:         buildOptions(opts),
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

func (uc *AdminCreateOrderUseCase) Execute(ctx context.Context, cmd AdminCreateOrderInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseAdminCreate))

	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"AdminCreateOrder",
		attribute.String("use_case", useCaseAdminCreate),
		attribute.Int64("order.customer_id", cmd.CustomerID),
		attribute.Int64("order.listing_id", cmd.ListingID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var created *domain.Order

	defer func() {
		lat := time.Since(start).Seconds()
		observability.EndSpan(span, err, statusText)

		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseAdminCreate),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat, observability.L("use_case", useCaseAdminCreate))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("listing_id", cmd.ListingID),
		}
		if created != nil {
			fields = append(fields, observability.F("order_id", created.ID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

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

		entity := &domain.Order{
			CustomerID:     cmd.CustomerID,
			ListingID:      cmd.ListingID,
			Quantity:       cmd.Quantity,
			OrderedAt:      cmd.OrderedAt,
			TotalPrice:     view.UnitPrice().Mul(decimal.NewFromInt(int64(cmd.Quantity))),
			Status:         cmd.Status,
			Notes:          cmd.Notes,
			ShippedAt:      cmd.ShippedAt,
			ShippingMethod: cmd.ShippingMethod,
			ShippingCost:   cmd.ShippingCost,
		}
		if entity.Status == "" {
			entity.Status = domain.StatusPending
		}
		if entity.OrderedAt.IsZero() {
			entity.OrderedAt = uc.opts.now()
		}
		if errs := entity.Validate(); len(errs) > 0 {
			return invalidOrder(errs)
		}

		if err := tx.InsertOrder(ctx, entity); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		created = entity
		return nil
	})
	if txErr != nil {
		created = nil
		var perr *PlacementError
		if !errors.As(txErr, &perr) {
			perr = operationFailed(txErr)
		}
		outcome, statusText = "error", placementStatus(perr)
		return nil, perr
	}

	span.SetAttributes(attribute.Int64("order.id", created.ID))
	return created, nil
}
