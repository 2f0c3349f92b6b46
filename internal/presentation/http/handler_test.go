package httppresentation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/application"
	appInventory "github.com/Zhima-Mochi/minishop-bookshop/internal/application/inventory"
	appOrder "github.com/Zhima-Mochi/minishop-bookshop/internal/application/order"
	domainOrder "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
)

type fixture struct {
	store  *memory.Store
	router http.Handler
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Seed())

	reg := prometheus.NewRegistry()
	counters, histograms := prometrics.Instruments(prometrics.New(reg, "", ""), observability.CounterSpecs, observability.HistogramSpecs)
	tel := infraobs.New(infraobs.Options{Counters: counters, Histograms: histograms})

	h := NewHandler(UseCases{
		PlaceOrder:       appOrder.NewPlaceOrderUseCase(store, nil, tel),
		AdminCreateOrder: appOrder.NewAdminCreateOrderUseCase(store, tel),
		GetOrder:         appOrder.NewGetOrderUseCase(store, tel),
		GetListing:       appInventory.NewGetListingUseCase(store, tel),
		ListAvailable:    appInventory.NewListAvailableUseCase(store, tel),
	}, nil, tel)
	return fixture{store: store, router: h.Router(), reg: reg}
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPlaceOrderCreated(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/orders", `{"customer_id":1,"listing_id":1,"quantity":2}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "25.98", body["total_price"])
	assert.Equal(t, "Pending", body["status"])
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	v, err := f.store.GetListing(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 8, v.Listing.Quantity)
}

func TestPlaceOrderErrorStatuses(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		body string
		code int
		kind string
	}{
		{"unknown listing", `{"customer_id":1,"listing_id":99,"quantity":1}`, http.StatusNotFound, "NotFound"},
		{"zero quantity", `{"customer_id":1,"listing_id":1,"quantity":0}`, http.StatusBadRequest, "InvalidQuantity"},
		{"too many", `{"customer_id":1,"listing_id":2,"quantity":6}`, http.StatusConflict, "InsufficientStock"},
		{"unknown customer", `{"customer_id":42,"listing_id":1,"quantity":1}`, http.StatusServiceUnavailable, "OperationFailed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/orders", tc.body)

			require.Equal(t, tc.code, rec.Code, rec.Body.String())
			assert.Equal(t, tc.kind, decodeBody(t, rec)["error"])
		})
	}
}

func TestPlaceOrderInsufficientStockDetails(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/orders", `{"customer_id":1,"listing_id":2,"quantity":6}`)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(5), body["available"])
	assert.Equal(t, "The Great Gatsby", body["book_title"])
	assert.Equal(t, "University Bookshop", body["shop_name"])
	assert.Equal(t, "Only 5 copies of 'The Great Gatsby' are available in University Bookshop.", body["message"])
}

func TestPlaceOrderRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/orders", `{"customer_id":`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/orders", `{"product_id":"x"}`).Code)
}

func TestAdminCreateOrder(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/admin/orders", `{"customer_id":2,"listing_id":2,"quantity":9,"status":"Processing","shipping_cost":"3.50"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "125.91", body["total_price"])
	assert.Equal(t, "Processing", body["status"])

	v, err := f.store.GetListing(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, v.Listing.Quantity)

	rec = f.do(http.MethodPost, "/admin/orders", `{"customer_id":0,"listing_id":2,"quantity":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["fields"])
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/orders/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(domainOrder.StatusShipped), decodeBody(t, rec)["status"])

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/orders/404", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/orders/abc", "").Code)
}

func TestListingRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/listings/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "15.99", decodeBody(t, rec)["unit_price"])

	rec = f.do(http.MethodGet, "/shops/3/listings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var books []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 2)
	assert.Equal(t, "1984", books[0]["title"])
	assert.Equal(t, "To Kill a Mockingbird", books[1]["title"])
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodGet, "/orders", "").Code)
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(headerRequestID))
}

func TestHTTPMetricsUseRouteTemplate(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/orders/1", "")
	f.do(http.MethodGet, "/orders/2", "")

	expected := `
# HELP http_requests_total Total number of HTTP requests.
# TYPE http_requests_total counter
http_requests_total{method="GET",route="GET /orders/{id}",status="200"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "http_requests_total"))
}

func TestUnexpectedUseCaseErrorIsInternal(t *testing.T) {
	h := NewHandler(UseCases{
		GetOrder: application.UseCaseFunc[int64, *domainOrder.Order](func(context.Context, int64) (*domainOrder.Order, error) {
			return nil, errors.New("disk on fire")
		}),
	}, nil, nil)
	router := h.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
