package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlacedEvent is emitted after a placement commits.
type PlacedEvent struct {
	OrderID           int64
	ListingID         int64
	CustomerID        int64
	Quantity          int
	TotalPrice        decimal.Decimal
	RemainingQuantity int
	BookTitle         string
	ShopName          string
	OccurredAt        time.Time
}

func (PlacedEvent) EventName() string { return "order.placed" }

func NewPlacedEvent(o *Order, remaining int, bookTitle, shopName string) PlacedEvent {
	return PlacedEvent{
		OrderID:           o.ID,
		ListingID:         o.ListingID,
		CustomerID:        o.CustomerID,
		Quantity:          o.Quantity,
		TotalPrice:        o.TotalPrice,
		RemainingQuantity: remaining,
		BookTitle:         bookTitle,
		ShopName:          shopName,
		OccurredAt:        time.Now().UTC(),
	}
}
