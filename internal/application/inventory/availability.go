package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/application"
	dominv "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability/logctx"
)

const (
	inventoryService     = "inventory-service"
	useCaseListAvailable = "inventory.list_available"
	useCaseGetListing    = "inventory.get_listing"
	spanPrefix           = "UC."
)

// AvailableBook is one row of a shop's in-stock list.
type AvailableBook struct {
	ListingID int64
	BookID    int64
	Title     string
	Author    string
	Quantity  int
	UnitPrice decimal.Decimal
}

var _ application.UseCase[int64, []AvailableBook] = (*ListAvailableUseCase)(nil)

// ListAvailableUseCase lists what a shop can sell right now, priced the same way orders are.
type ListAvailableUseCase struct {
	repo dominv.Repository
	tel  observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewListAvailableUseCase(repo dominv.Repository, tel observability.Observability) *ListAvailableUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &ListAvailableUseCase{
		repo:         repo,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", inventoryService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

func (uc *ListAvailableUseCase) Execute(ctx context.Context, shopID int64) (_ []AvailableBook, err error) {
	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"ListAvailable",
		attribute.String("use_case", useCaseListAvailable),
		attribute.Int64("shop.id", shopID),
	)
	start := time.Now()
	defer func() {
		finish(ctx, span, uc.log, uc.reqCounter, uc.durHistogram, useCaseListAvailable, start, err)
	}()

	views, err := uc.repo.ListAvailableByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	out := make([]AvailableBook, 0, len(views))
	for _, v := range views {
		if v.Listing.Quantity <= 0 {
			continue
		}
		out = append(out, AvailableBook{
			ListingID: v.Listing.ID,
			BookID:    v.Book.ID,
			Title:     v.Book.Title,
			Author:    v.Book.Author,
			Quantity:  v.Listing.Quantity,
			UnitPrice: v.UnitPrice(),
		})
	}
	span.SetAttributes(attribute.Int("listings.count", len(out)))
	return out, nil
}

var _ application.UseCase[int64, *dominv.ListingView] = (*GetListingUseCase)(nil)

type GetListingUseCase struct {
	repo dominv.Repository
	tel  observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewGetListingUseCase(repo dominv.Repository, tel observability.Observability) *GetListingUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &GetListingUseCase{
		repo:         repo,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", inventoryService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Execute returns dominv.ErrNotFound for unknown listings.
func (uc *GetListingUseCase) Execute(ctx context.Context, listingID int64) (_ *dominv.ListingView, err error) {
	ctx, span := uc.tel.Tracer().Start(ctx, spanPrefix+"GetListing",
		attribute.String("use_case", useCaseGetListing),
		attribute.Int64("listing.id", listingID),
	)
	start := time.Now()
	defer func() {
		finish(ctx, span, uc.log, uc.reqCounter, uc.durHistogram, useCaseGetListing, start, err)
	}()

	return uc.repo.GetListing(ctx, listingID)
}

// finish closes out a read-only use case. Reads log at debug since they change nothing.
func finish(
	ctx context.Context,
	span trace.Span,
	log observability.Logger,
	req observability.Counter,
	dur observability.Histogram,
	useCase string,
	start time.Time,
	err error,
) {
	lat := time.Since(start).Seconds()
	outcome, status := "success", "OK"
	switch {
	case errors.Is(err, dominv.ErrNotFound):
		outcome, status = "error", "LISTING_NOT_FOUND"
	case err != nil:
		outcome, status = "error", "REPOSITORY_FAILED"
	}

	observability.EndSpan(span, err, status)

	req.Add(1, observability.L("use_case", useCase), observability.L("outcome", outcome))
	dur.Observe(lat, observability.L("use_case", useCase))

	fields := []observability.Field{
		observability.F("use_case", useCase),
		observability.F("outcome", outcome),
		observability.F("status", status),
		observability.F("latency_seconds", lat),
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	logctx.FromOr(ctx, log).Debug("use_case_done", fields...)
}
