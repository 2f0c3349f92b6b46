package inventory

import "context"

// Repository is the read side of listings, outside any placement transaction.
type Repository interface {
	GetListing(ctx context.Context, listingID int64) (*ListingView, error)
	// ListAvailableByShop returns the shop's listings with stock on hand, ordered by book title.
	ListAvailableByShop(ctx context.Context, shopID int64) ([]ListingView, error)
}
