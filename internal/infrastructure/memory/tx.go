package memory

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
)

// RunInTransaction waits for the transaction slot, honouring ctx, then runs fn.
// Writes made through the Tx are staged and become visible only if fn returns nil
// and ctx is still live at commit time. Commit fails with inventory.ErrConcurrencyConflict
// when a listing the transaction wrote was replaced through PutListing meanwhile.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	select {
	case s.txSlot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("memory: begin transaction: %w", ctx.Err())
	}
	defer func() { <-s.txSlot }()

	tx := &memTx{
		store:        s,
		listings:     make(map[int64]inventory.Listing),
		baseVersions: make(map[int64]int64),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory: commit: %w", err)
	}
	return tx.commit()
}

type memTx struct {
	store    *Store
	listings map[int64]inventory.Listing
	// baseVersions is the stored version each staged listing was derived from.
	baseVersions map[int64]int64
	orders       []order.Order
}

func (t *memTx) GetListingWithBookAndShop(ctx context.Context, listingID int64) (*inventory.ListingView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	l, ok := t.listingLocked(listingID)
	if !ok {
		return nil, inventory.ErrNotFound
	}
	return t.store.viewLocked(l)
}

// InsertOrder reserves the id from the store counter at once, so ids never collide
// with PutOrder. A rolled back transaction leaves a gap.
func (t *memTx) InsertOrder(ctx context.Context, o *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, ok := t.store.customers[o.CustomerID]; !ok {
		return fmt.Errorf("customer %d: %w", o.CustomerID, ErrCustomerNotFound)
	}
	if _, ok := t.listingLocked(o.ListingID); !ok {
		return fmt.Errorf("order listing %d: %w", o.ListingID, inventory.ErrNotFound)
	}

	t.store.lastOrder++
	o.ID = t.store.lastOrder
	if o.OrderedAt.IsZero() {
		o.OrderedAt = t.store.now()
	}
	t.orders = append(t.orders, *o)
	return nil
}

func (t *memTx) UpdateListingQuantity(ctx context.Context, listingID int64, newQuantity int, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if newQuantity < 0 {
		return fmt.Errorf("listing %d: negative quantity %d: %w", listingID, newQuantity, inventory.ErrInsufficientStock)
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	l, ok := t.listingLocked(listingID)
	if !ok {
		return inventory.ErrNotFound
	}
	if l.Version != expectedVersion {
		return fmt.Errorf("listing %d: version %d, expected %d: %w", listingID, l.Version, expectedVersion, inventory.ErrConcurrencyConflict)
	}
	if _, staged := t.baseVersions[listingID]; !staged {
		t.baseVersions[listingID] = l.Version
	}
	l.Quantity = newQuantity
	l.Version++
	t.listings[listingID] = l
	return nil
}

// listingLocked prefers this transaction's staged copy. Callers hold store.mu.
func (t *memTx) listingLocked(id int64) (inventory.Listing, bool) {
	if l, ok := t.listings[id]; ok {
		return l, true
	}
	l, ok := t.store.listings[id]
	return l, ok
}

func (t *memTx) commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for id, base := range t.baseVersions {
		current, ok := t.store.listings[id]
		if !ok || current.Version != base {
			return fmt.Errorf("memory: commit listing %d: changed outside the transaction: %w", id, inventory.ErrConcurrencyConflict)
		}
	}
	for id, l := range t.listings {
		t.store.listings[id] = l
	}
	for _, o := range t.orders {
		t.store.orders[o.ID] = o
	}
	return nil
}
