package httppresentation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/application"
	appInventory "github.com/Zhima-Mochi/minishop-bookshop/internal/application/inventory"
	appOrder "github.com/Zhima-Mochi/minishop-bookshop/internal/application/order"
	domainInventory "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	domainOrder "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
)

// UseCases are the operations exposed over HTTP. A nil entry leaves its routes unregistered.
type UseCases struct {
	PlaceOrder       application.UseCase[appOrder.PlaceOrderInput, *domainOrder.Order]
	AdminCreateOrder application.UseCase[appOrder.AdminCreateOrderInput, *domainOrder.Order]
	GetOrder         application.UseCase[int64, *domainOrder.Order]
	GetListing       application.UseCase[int64, *domainInventory.ListingView]
	ListAvailable    application.UseCase[int64, []appInventory.AvailableBook]
}

type Handler struct {
	uc  UseCases
	log observability.Logger
	tel observability.Observability

	httpRequests observability.Counter
	httpDuration observability.Histogram
}

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

func NewHandler(uc UseCases, logger observability.Logger, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	if logger == nil {
		logger = tel.Logger()
	}
	return &Handler{
		uc:           uc,
		log:          logger.With(observability.F("component", componentHTTPHandler)),
		tel:          tel,
		httpRequests: tel.Metrics().Counter(observability.MHTTPRequests),
		httpDuration: tel.Metrics().Histogram(observability.MHTTPRequestDuration),
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	if h.uc.PlaceOrder != nil {
		h.muxHandle(mux, http.MethodPost, "/orders", h.handlePlaceOrder)
	}
	if h.uc.AdminCreateOrder != nil {
		h.muxHandle(mux, http.MethodPost, "/admin/orders", h.handleAdminCreateOrder)
	}
	if h.uc.GetOrder != nil {
		h.muxHandle(mux, http.MethodGet, "/orders/{id}", h.handleGetOrder)
	}
	if h.uc.GetListing != nil {
		h.muxHandle(mux, http.MethodGet, "/listings/{id}", h.handleGetListing)
	}
	if h.uc.ListAvailable != nil {
		h.muxHandle(mux, http.MethodGet, "/shops/{id}/listings", h.handleListAvailable)
	}
	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)

	return mux
}

type placeOrderRequest struct {
	CustomerID int64 `json:"customer_id"`
	ListingID  int64 `json:"listing_id"`
	Quantity   int   `json:"quantity"`
}

type orderResponse struct {
	ID             int64              `json:"id"`
	CustomerID     int64              `json:"customer_id"`
	ListingID      int64              `json:"listing_id"`
	Quantity       int                `json:"quantity"`
	OrderedAt      time.Time          `json:"ordered_at"`
	TotalPrice     decimal.Decimal    `json:"total_price"`
	Status         domainOrder.Status `json:"status"`
	Notes          string             `json:"notes,omitempty"`
	ShippedAt      *time.Time         `json:"shipped_at,omitempty"`
	ShippingMethod string             `json:"shipping_method,omitempty"`
	ShippingCost   decimal.Decimal    `json:"shipping_cost"`
}

func newOrderResponse(o *domainOrder.Order) orderResponse {
	return orderResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		ListingID:      o.ListingID,
		Quantity:       o.Quantity,
		OrderedAt:      o.OrderedAt,
		TotalPrice:     o.TotalPrice,
		Status:         o.Status,
		Notes:          o.Notes,
		ShippedAt:      o.ShippedAt,
		ShippingMethod: o.ShippingMethod,
		ShippingCost:   o.ShippingCost,
	}
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	o, err := h.uc.PlaceOrder.Execute(r.Context(), appOrder.PlaceOrderInput{
		CustomerID: req.CustomerID,
		ListingID:  req.ListingID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderResponse(o))
}

type adminCreateOrderRequest struct {
	CustomerID     int64           `json:"customer_id"`
	ListingID      int64           `json:"listing_id"`
	Quantity       int             `json:"quantity"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes"`
	OrderedAt      *time.Time      `json:"ordered_at"`
	ShippedAt      *time.Time      `json:"shipped_at"`
	ShippingMethod string          `json:"shipping_method"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
}

func (h *Handler) handleAdminCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req adminCreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	in := appOrder.AdminCreateOrderInput{
		CustomerID:     req.CustomerID,
		ListingID:      req.ListingID,
		Quantity:       req.Quantity,
		Status:         domainOrder.Status(req.Status),
		Notes:          req.Notes,
		ShippedAt:      req.ShippedAt,
		ShippingMethod: req.ShippingMethod,
		ShippingCost:   req.ShippingCost,
	}
	if req.OrderedAt != nil {
		in.OrderedAt = *req.OrderedAt
	}

	o, err := h.uc.AdminCreateOrder.Execute(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderResponse(o))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.uc.GetOrder.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(o))
}

type listingResponse struct {
	ID        int64           `json:"id"`
	BookID    int64           `json:"book_id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	ShopID    int64           `json:"shop_id"`
	ShopName  string          `json:"shop_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// ShopPrice is null when the shop sells at the book price.
	ShopPrice decimal.NullDecimal `json:"shop_price"`
	Notes     string              `json:"notes,omitempty"`
}

func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := h.uc.GetListing.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingResponse{
		ID:        v.Listing.ID,
		BookID:    v.Book.ID,
		Title:     v.Book.Title,
		Author:    v.Book.Author,
		ShopID:    v.Shop.ID,
		ShopName:  v.Shop.Name,
		Quantity:  v.Listing.Quantity,
		UnitPrice: v.UnitPrice(),
		ShopPrice: v.Listing.ShopPrice,
		Notes:     v.Listing.Notes,
	})
}

type availableBookResponse struct {
	ListingID int64           `json:"listing_id"`
	BookID    int64           `json:"book_id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (h *Handler) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	shopID, ok := pathID(w, r)
	if !ok {
		return
	}
	books, err := h.uc.ListAvailable.Execute(r.Context(), shopID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]availableBookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, availableBookResponse{
			ListingID: b.ListingID,
			BookID:    b.BookID,
			Title:     b.Title,
			Author:    b.Author,
			Quantity:  b.Quantity,
			UnitPrice: b.UnitPrice,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("id must be a positive integer"))
		return 0, false
	}
	return id, true
}
