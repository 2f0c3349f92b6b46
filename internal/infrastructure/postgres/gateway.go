// Package postgres persists the bookshop in PostgreSQL, over either a pgx pool or
// a sqlx handle on lib/pq. Placement transactions lock the listing row with
// SELECT ... FOR UPDATE and guard the stock update with the listing version.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
)

const (
	logMsgTxRollbackFailed = "postgres_tx_rollback_failed"
	logMsgSQLExecuted      = "postgres_sql_executed"
)

var (
	_ order.Gateway        = (*Gateway)(nil)
	_ order.Reader         = (*Gateway)(nil)
	_ inventory.Repository = (*Gateway)(nil)
)

type Option func(*Gateway) error

// WithLockTimeout bounds how long a transaction waits on a row lock. Zero leaves the server default.
func WithLockTimeout(d time.Duration) Option {
	return func(g *Gateway) error {
		if d < 0 {
			return fmt.Errorf("postgres: negative lock timeout %s", d)
		}
		g.lockTimeout = d
		return nil
	}
}

func WithLogger(logger observability.Logger) Option {
	return func(g *Gateway) error {
		if logger != nil {
			g.log = logger
		}
		return nil
	}
}

type Gateway struct {
	db          dbAdapter
	lockTimeout time.Duration
	log         observability.Logger
}

func NewGatewayFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Gateway, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newGateway(newPGXDB(pool), options...)
}

func NewGatewayFromSQLX(db *sqlx.DB, options ...Option) (*Gateway, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newGateway(newSQLXDB(db), options...)
}

func newGateway(db dbAdapter, options ...Option) (*Gateway, error) {
	g := &Gateway{db: db, log: observability.NopLogger()}
	for _, opt := range options {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Gateway) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) (err error) {
	tx, err := g.db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrBeginTxFailed, mapDBError(err))
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			g.log.Debug(logMsgTxRollbackFailed, observability.F("error", rbErr.Error()))
		}
	}()

	if g.lockTimeout > 0 {
		// SET does not take bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", g.lockTimeout.Milliseconds())
		if _, err = tx.Exec(ctx, stmt); err != nil {
			return errors.Join(ErrQueryFailed, mapDBError(err))
		}
	}

	if err = fn(ctx, &gatewayTx{tx: tx, log: g.log}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Join(ErrCommitFailed, mapDBError(err))
	}
	return nil
}

func (g *Gateway) GetListing(ctx context.Context, listingID int64) (*inventory.ListingView, error) {
	q, args, err := buildSelectListing(listingID)
	if err != nil {
		return nil, err
	}
	return scanListingView(g.db.QueryRow(ctx, q, args...))
}

func (g *Gateway) ListAvailableByShop(ctx context.Context, shopID int64) ([]inventory.ListingView, error) {
	q, args, err := buildSelectAvailableByShop(shopID)
	if err != nil {
		return nil, err
	}
	rows, err := g.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, mapDBError(err))
	}
	defer rows.Close()

	var views []inventory.ListingView
	for rows.Next() {
		v, err := scanListingView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryFailed, mapDBError(err))
	}
	return views, nil
}

func (g *Gateway) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	q, args, err := buildSelectOrder(id)
	if err != nil {
		return nil, err
	}

	var (
		o         order.Order
		status    string
		shippedAt sql.NullTime
	)
	err = g.db.QueryRow(ctx, q, args...).Scan(
		&o.ID, &o.CustomerID, &o.ListingID, &o.Quantity,
		&o.OrderedAt, &o.TotalPrice, &status,
		&o.Notes, &shippedAt,
		&o.ShippingMethod, &o.ShippingCost,
	)
	if errors.Is(err, errNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrScanFailed, mapDBError(err))
	}
	o.Status = order.Status(status)
	if shippedAt.Valid {
		t := shippedAt.Time
		o.ShippedAt = &t
	}
	return &o, nil
}

type gatewayTx struct {
	tx  txAdapter
	log observability.Logger
}

func (t *gatewayTx) GetListingWithBookAndShop(ctx context.Context, listingID int64) (*inventory.ListingView, error) {
	q, args, err := buildSelectListingForUpdate(listingID)
	if err != nil {
		return nil, err
	}
	t.log.Debug(logMsgSQLExecuted, observability.F("query", q))
	return scanListingView(t.tx.QueryRow(ctx, q, args...))
}

func (t *gatewayTx) InsertOrder(ctx context.Context, o *order.Order) error {
	if o.OrderedAt.IsZero() {
		o.OrderedAt = time.Now().UTC()
	}
	q, args, err := buildInsertOrder(o)
	if err != nil {
		return err
	}
	t.log.Debug(logMsgSQLExecuted, observability.F("query", q))
	if err := t.tx.QueryRow(ctx, q, args...).Scan(&o.ID); err != nil {
		return errors.Join(ErrQueryFailed, mapDBError(err))
	}
	return nil
}

func (t *gatewayTx) UpdateListingQuantity(ctx context.Context, listingID int64, newQuantity int, expectedVersion int64) error {
	if newQuantity < 0 {
		return fmt.Errorf("listing %d: negative quantity %d: %w", listingID, newQuantity, inventory.ErrInsufficientStock)
	}
	q, args, err := buildUpdateListingQuantity(listingID, newQuantity, expectedVersion)
	if err != nil {
		return err
	}
	t.log.Debug(logMsgSQLExecuted, observability.F("query", q))
	affected, err := t.tx.Exec(ctx, q, args...)
	if err != nil {
		return errors.Join(ErrQueryFailed, mapDBError(err))
	}
	if affected == 0 {
		return fmt.Errorf("listing %d: version %d is stale: %w", listingID, expectedVersion, inventory.ErrConcurrencyConflict)
	}
	return nil
}

func scanListingView(row rowScanner) (*inventory.ListingView, error) {
	var (
		v         inventory.ListingView
		shopPrice decimal.NullDecimal
		bookPrice decimal.Decimal
	)
	err := row.Scan(
		&v.Listing.ID, &v.Listing.BookID, &v.Listing.ShopID, &v.Listing.Quantity,
		&shopPrice, &v.Listing.Notes, &v.Listing.Version,
		&v.Book.Title, &v.Book.Author, &v.Book.ISBN, &bookPrice,
		&v.Shop.Name, &v.Shop.Location,
	)
	if errors.Is(err, errNoRows) {
		return nil, inventory.ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrScanFailed, mapDBError(err))
	}
	v.Listing.ShopPrice = shopPrice
	v.Book.ID = v.Listing.BookID
	v.Book.Price = bookPrice
	v.Shop.ID = v.Listing.ShopID
	return &v, nil
}
