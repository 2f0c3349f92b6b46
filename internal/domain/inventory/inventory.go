package inventory

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/validation"
)

var (
	ErrNotFound            = errors.New("inventory: listing not found")
	ErrInvalidQuantity     = errors.New("inventory: quantity must be greater than zero")
	ErrInsufficientStock   = errors.New("inventory: insufficient stock")
	ErrConcurrencyConflict = errors.New("inventory: listing changed concurrently")
)

// Listing is one book's offering at one shop.
type Listing struct {
	ID        int64
	BookID    int64
	ShopID    int64
	Quantity  int
	ShopPrice decimal.NullDecimal
	Notes     string
	// Version is bumped on every quantity write and guards concurrent decrements.
	Version int64
}

// ListingView is a listing joined with its book and shop.
type ListingView struct {
	Listing Listing
	Book    catalog.Book
	Shop    catalog.Shop
}

// Deduct removes quantity units from stock. The listing is left untouched on error.
func (l *Listing) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > l.Quantity {
		return ErrInsufficientStock
	}
	l.Quantity -= quantity
	return nil
}

func (l Listing) Validate() validation.Errors {
	var c validation.Checker
	c.Check(l.BookID > 0, "BookID", "Please select a book")
	c.Check(l.ShopID > 0, "ShopID", "Please select a shop")
	c.Check(l.Quantity >= 0, "Quantity", "Quantity must be 0 or greater")
	c.Check(!l.ShopPrice.Valid || l.ShopPrice.Decimal.IsPositive(), "ShopPrice", "Price must be greater than 0")
	c.MaxLen("Notes", l.Notes, 500, "Notes cannot exceed 500 characters")
	return c.Errors()
}

// UnitPrice resolves the price of one unit: the shop override when set, else the book price.
func UnitPrice(l Listing, b catalog.Book) decimal.Decimal {
	if l.ShopPrice.Valid {
		return l.ShopPrice.Decimal
	}
	return b.Price
}

// UnitPrice is the resolved price of one unit of the listed book.
func (v ListingView) UnitPrice() decimal.Decimal {
	return UnitPrice(v.Listing, v.Book)
}
