package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Seed())
	return s
}

func TestSeed(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	v, err := s.GetListing(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "The Great Gatsby", v.Book.Title)
	assert.Equal(t, "Downtown Bookstore", v.Shop.Name)
	assert.Equal(t, 10, v.Listing.Quantity)
	assert.Equal(t, "12.99", v.UnitPrice().String())

	o, err := s.GetOrder(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "35.97", o.TotalPrice.String())

	_, err = s.GetOrder(ctx, 4)
	assert.ErrorIs(t, err, order.ErrNotFound)
	_, err = s.GetListing(ctx, 99)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestPutListingRejectsDuplicatePair(t *testing.T) {
	s := seeded(t)

	err := s.PutListing(inventory.Listing{ID: 7, BookID: 1, ShopID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrDuplicateListing)

	err = s.PutListing(inventory.Listing{ID: 7, BookID: 9, ShopID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestListAvailableByShop(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	require.NoError(t, s.PutListing(inventory.Listing{ID: 7, BookID: 3, ShopID: 1, Quantity: 0}))

	views, err := s.ListAvailableByShop(ctx, 1)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "The Great Gatsby", views[0].Book.Title)
	assert.Equal(t, "To Kill a Mockingbird", views[1].Book.Title)
}

func TestTransactionCommit(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return fixed }))
	require.NoError(t, s.Seed())
	ctx := context.Background()

	var placed order.Order
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx order.Tx) error {
		v, err := tx.GetListingWithBookAndShop(ctx, 1)
		if err != nil {
			return err
		}
		o := &order.Order{CustomerID: 1, ListingID: 1, Quantity: 2, TotalPrice: decimal.RequireFromString("25.98"), Status: order.StatusPending}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		placed = *o
		if err := tx.UpdateListingQuantity(ctx, 1, v.Listing.Quantity-2, v.Listing.Version); err != nil {
			return err
		}

		// the transaction reads its own staged write
		again, err := tx.GetListingWithBookAndShop(ctx, 1)
		if err != nil {
			return err
		}
		assert.Equal(t, 8, again.Listing.Quantity)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4), placed.ID)
	assert.Equal(t, fixed, placed.OrderedAt)

	v, err := s.GetListing(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, v.Listing.Quantity)
	assert.Equal(t, int64(1), v.Listing.Version)
	assert.Len(t, s.OrdersForListing(1), 2)
}

func TestTransactionRollback(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx order.Tx) error {
		o := &order.Order{CustomerID: 1, ListingID: 1, Quantity: 1, TotalPrice: decimal.RequireFromString("12.99")}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.UpdateListingQuantity(ctx, 1, 9, 0); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := s.GetListing(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, v.Listing.Quantity)
	assert.Len(t, s.OrdersForListing(1), 1)
}

func TestUpdateListingQuantityVersionCheck(t *testing.T) {
	s := seeded(t)

	err := s.RunInTransaction(context.Background(), func(ctx context.Context, tx order.Tx) error {
		return tx.UpdateListingQuantity(ctx, 1, 5, 42)
	})
	assert.ErrorIs(t, err, inventory.ErrConcurrencyConflict)
}

func TestInsertOrderUnknownCustomer(t *testing.T) {
	s := seeded(t)

	err := s.RunInTransaction(context.Background(), func(ctx context.Context, tx order.Tx) error {
		return tx.InsertOrder(ctx, &order.Order{CustomerID: 99, ListingID: 1, Quantity: 1})
	})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestRunInTransactionWaitsForSlotWithinDeadline(t *testing.T) {
	s := seeded(t)
	held := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = s.RunInTransaction(context.Background(), func(context.Context, order.Tx) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.RunInTransaction(ctx, func(context.Context, order.Tx) error {
		t.Fatal("must not run while the slot is held")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommitSkippedAfterDeadline(t *testing.T) {
	s := seeded(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx order.Tx) error {
		if err := tx.UpdateListingQuantity(ctx, 1, 0, 0); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	v, err := s.GetListing(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 10, v.Listing.Quantity)
}

func TestRestockDuringTransactionIsNotLost(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	restock := inventory.Listing{ID: 1, BookID: 1, ShopID: 1, Quantity: 50, ShopPrice: decimal.NewNullDecimal(decimal.RequireFromString("12.99"))}

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx order.Tx) error {
		v, err := tx.GetListingWithBookAndShop(ctx, 1)
		if err != nil {
			return err
		}
		require.NoError(t, s.PutListing(restock))
		return tx.UpdateListingQuantity(ctx, 1, v.Listing.Quantity-2, v.Listing.Version)
	})

	assert.ErrorIs(t, err, inventory.ErrConcurrencyConflict)
	v, err := s.GetListing(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, v.Listing.Quantity)
	assert.Equal(t, int64(1), v.Listing.Version)
}

func TestRestockAfterStagedWriteFailsCommit(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	restock := inventory.Listing{ID: 1, BookID: 1, ShopID: 1, Quantity: 50}

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx order.Tx) error {
		o := &order.Order{CustomerID: 1, ListingID: 1, Quantity: 2, TotalPrice: decimal.RequireFromString("25.98"), Status: order.StatusPending}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.UpdateListingQuantity(ctx, 1, 8, 0); err != nil {
			return err
		}
		require.NoError(t, s.PutListing(restock))
		return nil
	})

	assert.ErrorIs(t, err, inventory.ErrConcurrencyConflict)
	v, err := s.GetListing(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, v.Listing.Quantity)
	assert.Len(t, s.OrdersForListing(1), 1)
}

func TestPutOrderCannotTakeAReservedID(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	var placedID int64
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx order.Tx) error {
		o := &order.Order{CustomerID: 1, ListingID: 1, Quantity: 1, TotalPrice: decimal.RequireFromString("12.99"), Status: order.StatusPending}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		placedID = o.ID

		_, putErr := s.PutOrder(order.Order{ID: o.ID, CustomerID: 2, ListingID: 3, Quantity: 1, TotalPrice: decimal.RequireFromString("14.99"), Status: order.StatusShipped})
		assert.ErrorIs(t, putErr, ErrDuplicateOrder)

		historicalID, putErr := s.PutOrder(order.Order{CustomerID: 2, ListingID: 3, Quantity: 1, TotalPrice: decimal.RequireFromString("14.99"), Status: order.StatusShipped})
		require.NoError(t, putErr)
		assert.NotEqual(t, o.ID, historicalID)
		return nil
	})
	require.NoError(t, err)

	placed, err := s.GetOrder(ctx, placedID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), placed.CustomerID)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Len(t, s.OrdersForListing(3), 2)
}

func TestPutOrderRejectsExistingID(t *testing.T) {
	s := seeded(t)

	_, err := s.PutOrder(order.Order{ID: 2, CustomerID: 1, ListingID: 1, Quantity: 1, TotalPrice: decimal.RequireFromString("12.99")})

	assert.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestSeedPassesValidation(t *testing.T) {
	s := seeded(t)
	for id := int64(1); id <= 3; id++ {
		v, err := s.GetListing(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, v.Book.Validate())
		assert.Empty(t, v.Shop.Validate())
	}
	assert.Empty(t, catalog.Customer{FirstName: "John", LastName: "Doe", Email: "john.doe@email.com", Phone: "555-1001"}.Validate())
}
