package order

import (
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/validation"
)

// Kind classifies why an order could not be created.
type Kind string

const (
	KindNotFound          Kind = "NotFound"
	KindInvalidQuantity   Kind = "InvalidQuantity"
	KindInsufficientStock Kind = "InsufficientStock"
	KindOperationFailed   Kind = "OperationFailed"
	// KindInvalidOrder is only produced by the administrative path.
	KindInvalidOrder Kind = "InvalidOrder"
)

var (
	ErrListingNotFound   = errors.New("order: listing not found")
	ErrInvalidQuantity   = errors.New("order: invalid quantity")
	ErrInsufficientStock = errors.New("order: insufficient stock")
	ErrOperationFailed   = errors.New("order: operation failed")
	ErrInvalidOrder      = errors.New("order: invalid order")
)

var kindSentinels = map[Kind]error{
	KindNotFound:          ErrListingNotFound,
	KindInvalidQuantity:   ErrInvalidQuantity,
	KindInsufficientStock: ErrInsufficientStock,
	KindOperationFailed:   ErrOperationFailed,
	KindInvalidOrder:      ErrInvalidOrder,
}

// PlacementError is the only error type returned by the order use cases.
// Available, BookTitle and ShopName are set for KindInsufficientStock, Fields for KindInvalidOrder.
type PlacementError struct {
	Kind      Kind
	Available int
	BookTitle string
	ShopName  string
	Fields    validation.Errors
	Err       error
}

// Message is the text shown to the person placing the order.
func (e *PlacementError) Message() string {
	switch e.Kind {
	case KindNotFound:
		return "Selected book is no longer available."
	case KindInvalidQuantity:
		return "Quantity must be greater than 0."
	case KindInsufficientStock:
		return fmt.Sprintf("Only %d copies of '%s' are available in %s.", e.Available, e.BookTitle, e.ShopName)
	case KindInvalidOrder:
		return "The order has invalid fields."
	default:
		return "An error occurred while placing the order. Please try again."
	}
}

func (e *PlacementError) Error() string {
	if e.Err != nil {
		return e.Message() + ": " + e.Err.Error()
	}
	return e.Message()
}

func (e *PlacementError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func (e *PlacementError) Unwrap() error { return e.Err }

func notFound(err error) *PlacementError {
	return &PlacementError{Kind: KindNotFound, Err: err}
}

func invalidQuantity() *PlacementError {
	return &PlacementError{Kind: KindInvalidQuantity}
}

func insufficientStock(available int, bookTitle, shopName string) *PlacementError {
	return &PlacementError{Kind: KindInsufficientStock, Available: available, BookTitle: bookTitle, ShopName: shopName}
}

func operationFailed(err error) *PlacementError {
	return &PlacementError{Kind: KindOperationFailed, Err: err}
}

func invalidOrder(fields validation.Errors) *PlacementError {
	return &PlacementError{Kind: KindInvalidOrder, Fields: fields}
}
