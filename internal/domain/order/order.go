package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/validation"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
)

// Status is free-form past creation; transitions are not enforced.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

type Order struct {
	ID             int64
	CustomerID     int64
	ListingID      int64
	Quantity       int
	OrderedAt      time.Time
	TotalPrice     decimal.Decimal
	Status         Status
	Notes          string
	ShippedAt      *time.Time
	ShippingMethod string
	ShippingCost   decimal.Decimal
}

// New builds a pending order; the id and timestamp are assigned on insert.
func New(customerID, listingID int64, quantity int, total decimal.Decimal) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Order{
		CustomerID: customerID,
		ListingID:  listingID,
		Quantity:   quantity,
		TotalPrice: total,
		Status:     StatusPending,
	}, nil
}

func (o Order) Validate() validation.Errors {
	var c validation.Checker
	c.Check(o.CustomerID > 0, "CustomerID", "Please select a customer")
	c.Check(o.ListingID > 0, "ListingID", "Please select a book from a shop")
	c.Check(o.Quantity >= 1, "Quantity", "Quantity must be at least 1")
	c.Check(o.TotalPrice.IsPositive(), "TotalPrice", "Total price must be greater than 0")
	c.Required("Status", string(o.Status), "Status is required")
	c.MaxLen("Status", string(o.Status), 50, "Status cannot exceed 50 characters")
	c.MaxLen("Notes", o.Notes, 500, "Notes cannot exceed 500 characters")
	c.MaxLen("ShippingMethod", o.ShippingMethod, 100, "Shipping method cannot exceed 100 characters")
	c.Check(!o.ShippingCost.IsNegative(), "ShippingCost", "Shipping cost must be 0 or greater")
	return c.Errors()
}

// UnitPrice derives the per-unit price from the stored total.
func (o Order) UnitPrice() decimal.Decimal {
	if o.Quantity <= 0 {
		return decimal.Zero
	}
	return o.TotalPrice.Div(decimal.NewFromInt(int64(o.Quantity)))
}
