package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// errNoRows is what both adapters report for an empty single-row result.
var errNoRows = errors.New("postgres: no rows")

// dbAdapter hides whether the gateway runs on pgxpool or sqlx.
type dbAdapter interface {
	Begin(ctx context.Context) (txAdapter, error)
	queryer
}

type txAdapter interface {
	queryer
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type queryer interface {
	QueryRow(ctx context.Context, query string, args ...any) rowScanner
	Query(ctx context.Context, query string, args ...any) (dbRows, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type dbRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// pgx

type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type pgxQueryer struct{ q pgxQuerier }

func (p pgxQueryer) QueryRow(ctx context.Context, query string, args ...any) rowScanner {
	return pgxRow{row: p.q.QueryRow(ctx, query, args...)}
}

func (p pgxQueryer) Query(ctx context.Context, query string, args ...any) (dbRows, error) {
	rows, err := p.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

type pgxDB struct {
	pgxQueryer
	pool *pgxpool.Pool
}

func newPGXDB(pool *pgxpool.Pool) *pgxDB {
	return &pgxDB{pgxQueryer: pgxQueryer{q: pool}, pool: pool}
}

func (p *pgxDB) Begin(ctx context.Context) (txAdapter, error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}
	return &pgxTx{pgxQueryer: pgxQueryer{q: tx}, tx: tx}, nil
}

type pgxTx struct {
	pgxQueryer
	tx pgx.Tx
}

func (p *pgxTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := p.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *pgxTx) Commit(ctx context.Context) error   { return p.tx.Commit(ctx) }
func (p *pgxTx) Rollback(ctx context.Context) error { return p.tx.Rollback(ctx) }

type pgxRow struct{ row pgx.Row }

func (r pgxRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return errNoRows
	}
	return err
}

type pgxRows struct{ rows pgx.Rows }

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Close() error {
	r.rows.Close()
	return nil
}

// sqlx

type sqlQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type sqlQueryer struct{ q sqlQuerier }

func (s sqlQueryer) QueryRow(ctx context.Context, query string, args ...any) rowScanner {
	return sqlRow{row: s.q.QueryRowContext(ctx, query, args...)}
}

func (s sqlQueryer) Query(ctx context.Context, query string, args ...any) (dbRows, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type sqlxDB struct {
	sqlQueryer
	db *sqlx.DB
}

func newSQLXDB(db *sqlx.DB) *sqlxDB {
	return &sqlxDB{sqlQueryer: sqlQueryer{q: db}, db: db}
}

func (s *sqlxDB) Begin(ctx context.Context) (txAdapter, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &sqlxTx{sqlQueryer: sqlQueryer{q: tx}, tx: tx}, nil
}

type sqlxTx struct {
	sqlQueryer
	tx *sqlx.Tx
}

func (s *sqlxTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// database/sql binds the transaction to the context given at Begin.
func (s *sqlxTx) Commit(context.Context) error   { return s.tx.Commit() }
func (s *sqlxTx) Rollback(context.Context) error { return s.tx.Rollback() }

type sqlRow struct{ row *sql.Row }

func (r sqlRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return errNoRows
	}
	return err
}
