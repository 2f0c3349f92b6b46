package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	o, err := New(1, 2, 2, decimal.RequireFromString("25.98"))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Zero(t, o.ID)
	assert.True(t, o.OrderedAt.IsZero())
	assert.True(t, o.ShippingCost.IsZero())
	assert.Empty(t, o.Validate())
	assert.Equal(t, "12.99", o.UnitPrice().String())

	_, err = New(1, 2, 0, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestValidate(t *testing.T) {
	o := Order{ShippingCost: decimal.NewFromInt(-1)}
	errs := o.Validate()
	for _, field := range []string{"CustomerID", "ListingID", "Quantity", "TotalPrice", "Status", "ShippingCost"} {
		assert.True(t, errs.Has(field), field)
	}
}

func TestNewPlacedEvent(t *testing.T) {
	o := &Order{ID: 7, CustomerID: 1, ListingID: 3, Quantity: 2, TotalPrice: decimal.RequireFromString("25.98")}
	e := NewPlacedEvent(o, 8, "The Great Gatsby", "Downtown Bookstore")

	assert.Equal(t, "order.placed", e.EventName())
	assert.Equal(t, int64(7), e.OrderID)
	assert.Equal(t, 8, e.RemainingQuantity)
	assert.Equal(t, "Downtown Bookstore", e.ShopName)
	assert.False(t, e.OccurredAt.IsZero())
}
