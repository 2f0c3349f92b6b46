package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/catalog"
	dominventory "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/infrastructure/memory"
)

const testListingID = int64(10)

// newStore holds one listing of a 14.99 book at one shop, plus customer 1.
func newStore(t *testing.T, quantity int, override string) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.PutBook(catalog.Book{ID: 1, Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "978-0446310789", Price: decimal.RequireFromString("14.99")})
	s.PutShop(catalog.Shop{ID: 1, Name: "Downtown Bookstore", Location: "Downtown"})
	s.PutCustomer(catalog.Customer{ID: 1, FirstName: "John", LastName: "Doe", Email: "john.doe@email.com"})

	l := dominventory.Listing{ID: testListingID, BookID: 1, ShopID: 1, Quantity: quantity}
	if override != "" {
		l.ShopPrice = decimal.NewNullDecimal(decimal.RequireFromString(override))
	}
	require.NoError(t, s.PutListing(l))
	return s
}

func quantityOf(t *testing.T, s *memory.Store) int {
	t.Helper()
	v, err := s.GetListing(context.Background(), testListingID)
	require.NoError(t, err)
	return v.Listing.Quantity
}

// faultyGateway runs the real transaction but lets a test break individual Tx calls.
type faultyGateway struct {
	inner domain.Gateway

	getErr    error
	insertErr error
	updateErr error
	// blockGet makes the listing lookup wait for the transaction context to expire.
	blockGet bool
}

func (g *faultyGateway) RunInTransaction(ctx context.Context, fn func(context.Context, domain.Tx) error) error {
	return g.inner.RunInTransaction(ctx, func(ctx context.Context, tx domain.Tx) error {
		return fn(ctx, &faultyTx{Tx: tx, g: g})
	})
}

type faultyTx struct {
	domain.Tx
	g *faultyGateway
}

func (t *faultyTx) GetListingWithBookAndShop(ctx context.Context, id int64) (*dominventory.ListingView, error) {
	if t.g.blockGet {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if t.g.getErr != nil {
		return nil, t.g.getErr
	}
	return t.Tx.GetListingWithBookAndShop(ctx, id)
}

func (t *faultyTx) InsertOrder(ctx context.Context, o *domain.Order) error {
	if t.g.insertErr != nil {
		return t.g.insertErr
	}
	return t.Tx.InsertOrder(ctx, o)
}

func (t *faultyTx) UpdateListingQuantity(ctx context.Context, id int64, q int, v int64) error {
	if t.g.updateErr != nil {
		return t.g.updateErr
	}
	return t.Tx.UpdateListingQuantity(ctx, id, q, v)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Events() []domoutbox.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domoutbox.Event(nil), p.events...)
}

var errStorage = errors.New("storage unavailable")
