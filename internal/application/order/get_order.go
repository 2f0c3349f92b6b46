package order

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/application"
	domain "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
)

const useCaseGetOrder = "order.get"

var _ application.UseCase[int64, *domain.Order] = (*GetOrderUseCase)(nil)

type GetOrderUseCase struct {
	reader domain.Reader
	tel    observability.Observability

	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewGetOrderUseCase(reader domain.Reader, tel observability.Observability) *GetOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &GetOrderUseCase{
		reader:       reader,
		tel:          tel,
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Execute returns domain.ErrNotFound for unknown ids.
func (uc *GetOrderUseCase) Execute(ctx context.Context, id int64) (_ *domain.Order, err error) {
	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"GetOrder",
		attribute.String("use_case", useCaseGetOrder),
		attribute.Int64("order.id", id),
	)
	start := time.Now()
	defer func() {
		outcome := "success"
		switch {
		case errors.Is(err, domain.ErrNotFound):
			outcome = "not_found"
			span.SetStatus(codes.Error, "ORDER_NOT_FOUND")
		case err != nil:
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, "REPOSITORY_FAILED")
		default:
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()
		uc.reqCounter.Add(1, observability.L("use_case", useCaseGetOrder), observability.L("outcome", outcome))
		uc.durHistogram.Observe(time.Since(start).Seconds(), observability.L("use_case", useCaseGetOrder))
	}()

	return uc.reader.GetOrder(ctx, id)
}
