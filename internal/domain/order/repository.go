package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
)

// Tx is the unit of work handed to RunInTransaction. Nothing written through it is
// visible to other readers until the transaction commits.
type Tx interface {
	GetListingWithBookAndShop(ctx context.Context, listingID int64) (*inventory.ListingView, error)
	// InsertOrder assigns the id, and the timestamp when OrderedAt is zero.
	InsertOrder(ctx context.Context, o *Order) error
	// UpdateListingQuantity fails with inventory.ErrConcurrencyConflict when the listing
	// version no longer matches expectedVersion.
	UpdateListingQuantity(ctx context.Context, listingID int64, newQuantity int, expectedVersion int64) error
}

type Gateway interface {
	// RunInTransaction commits when fn returns nil and rolls back otherwise.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Reader interface {
	GetOrder(ctx context.Context, id int64) (*Order, error)
}
