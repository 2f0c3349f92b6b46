// Package memory is an in-process store for books, shops, customers, listings and orders.
// Transactions are serialised through a single slot, so a placement's read, check and
// write can never interleave with another placement.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
)

var (
	ErrCustomerNotFound = errors.New("memory: customer not found")
	ErrBookNotFound     = errors.New("memory: book not found")
	ErrShopNotFound     = errors.New("memory: shop not found")
	ErrDuplicateListing = errors.New("memory: book already listed at shop")
	ErrDuplicateOrder   = errors.New("memory: order id already taken")
)

var (
	_ order.Gateway        = (*Store)(nil)
	_ order.Reader         = (*Store)(nil)
	_ inventory.Repository = (*Store)(nil)
)

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

type Store struct {
	mu        sync.RWMutex
	books     map[int64]catalog.Book
	shops     map[int64]catalog.Shop
	customers map[int64]catalog.Customer
	listings  map[int64]inventory.Listing
	orders    map[int64]order.Order
	// lastOrder is the highest order id handed out, committed or not.
	lastOrder int64

	// txSlot holds one token; a transaction owns the store while it holds it.
	txSlot chan struct{}
	now    func() time.Time
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		books:     make(map[int64]catalog.Book),
		shops:     make(map[int64]catalog.Shop),
		customers: make(map[int64]catalog.Customer),
		listings:  make(map[int64]inventory.Listing),
		orders:    make(map[int64]order.Order),
		txSlot:    make(chan struct{}, 1),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) PutBook(b catalog.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[b.ID] = b
}

func (s *Store) PutShop(sh catalog.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[sh.ID] = sh
}

func (s *Store) PutCustomer(c catalog.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

// PutListing inserts or replaces a listing. The book and shop must already exist and
// no other listing may pair the same book and shop. A replacement gets the stored
// version plus one, so an open transaction that read the old row fails to commit.
func (s *Store) PutListing(l inventory.Listing) error {
	if errs := l.Validate(); len(errs) > 0 {
		return errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[l.BookID]; !ok {
		return fmt.Errorf("listing %d: %w", l.ID, ErrBookNotFound)
	}
	if _, ok := s.shops[l.ShopID]; !ok {
		return fmt.Errorf("listing %d: %w", l.ID, ErrShopNotFound)
	}
	for id, other := range s.listings {
		if id != l.ID && other.BookID == l.BookID && other.ShopID == l.ShopID {
			return fmt.Errorf("listing %d: %w", l.ID, ErrDuplicateListing)
		}
	}
	if existing, ok := s.listings[l.ID]; ok {
		l.Version = existing.Version + 1
	}
	s.listings[l.ID] = l
	return nil
}

// PutOrder loads a historical order as is, bypassing stock rules. A zero ID takes the
// next free id; an explicit one must be above every id already handed out.
func (s *Store) PutOrder(o order.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.lastOrder + 1
	}
	if _, ok := s.orders[o.ID]; ok || o.ID <= s.lastOrder {
		return 0, fmt.Errorf("order %d: %w", o.ID, ErrDuplicateOrder)
	}
	s.orders[o.ID] = o
	s.lastOrder = o.ID
	return o.ID, nil
}

func (s *Store) GetListing(ctx context.Context, listingID int64) (*inventory.ListingView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[listingID]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	return s.viewLocked(l)
}

func (s *Store) ListAvailableByShop(ctx context.Context, shopID int64) ([]inventory.ListingView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []inventory.ListingView
	for _, l := range s.listings {
		if l.ShopID != shopID || l.Quantity <= 0 {
			continue
		}
		v, err := s.viewLocked(l)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Book.Title == out[j].Book.Title {
			return out[i].Listing.ID < out[j].Listing.ID
		}
		return out[i].Book.Title < out[j].Book.Title
	})
	return out, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

// OrdersForListing returns the committed orders of one listing by ascending id.
func (s *Store) OrdersForListing(listingID int64) []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []order.Order
	for _, o := range s.orders {
		if o.ListingID == listingID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// viewLocked joins a listing with its book and shop. Callers hold mu.
func (s *Store) viewLocked(l inventory.Listing) (*inventory.ListingView, error) {
	b, ok := s.books[l.BookID]
	if !ok {
		return nil, fmt.Errorf("listing %d: %w", l.ID, ErrBookNotFound)
	}
	sh, ok := s.shops[l.ShopID]
	if !ok {
		return nil, fmt.Errorf("listing %d: %w", l.ID, ErrShopNotFound)
	}
	return &inventory.ListingView{Listing: l, Book: b, Shop: sh}, nil
}
