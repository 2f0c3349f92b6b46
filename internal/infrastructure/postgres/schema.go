package postgres

import (
	"context"
	_ "embed"
	"errors"
)

// Schema is the DDL the gateway expects. Migrations are managed outside the service.
//
//go:embed schema.sql
var Schema string

// EnsureSchema applies Schema in its own transaction. Every statement is idempotent.
func (g *Gateway) EnsureSchema(ctx context.Context) (err error) {
	tx, err := g.db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrBeginTxFailed, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()
	if _, err = tx.Exec(ctx, Schema); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Join(ErrCommitFailed, err)
	}
	return nil
}
