package httppresentation

import (
	"errors"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	appOrder "github.com/Zhima-Mochi/minishop-bookshop/internal/application/order"
	domainInventory "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	domainOrder "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error     string       `json:"error"`
	Message   string       `json:"message"`
	Available *int         `json:"available,omitempty"`
	BookTitle string       `json:"book_title,omitempty"`
	ShopName  string       `json:"shop_name,omitempty"`
	Fields    []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: http.StatusText(status), Message: err.Error()})
}

// writeDomainError maps use case failures to statuses. Internal causes of
// OperationFailed are logged by the use case and never sent to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	var perr *appOrder.PlacementError
	if errors.As(err, &perr) {
		body := errorResponse{Error: string(perr.Kind), Message: perr.Message()}
		status := http.StatusServiceUnavailable
		switch perr.Kind {
		case appOrder.KindNotFound:
			status = http.StatusNotFound
		case appOrder.KindInvalidQuantity:
			status = http.StatusBadRequest
		case appOrder.KindInsufficientStock:
			status = http.StatusConflict
			available := perr.Available
			body.Available = &available
			body.BookTitle = perr.BookTitle
			body.ShopName = perr.ShopName
		case appOrder.KindInvalidOrder:
			status = http.StatusUnprocessableEntity
			for _, fe := range perr.Fields {
				body.Fields = append(body.Fields, fieldError{Field: fe.Field, Message: fe.Message})
			}
		}
		writeJSON(w, status, body)
		return
	}

	switch {
	case errors.Is(err, domainOrder.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "NotFound", Message: "Order not found."})
	case errors.Is(err, domainInventory.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "NotFound", Message: "Listing not found."})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError), Message: "Internal error."})
	}
}
