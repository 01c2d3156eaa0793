// Package services implements the history store and status lookup on top of
// the SQLite repositories.
package services

import (
	"context"
	"fmt"

	"github.com/dshist/dshist/internal/database"
)

// withTx runs fn with a database context bound to a new transaction. fn must
// only use repositories built on the context it is given.
func withTx(ctx context.Context, dbCtx *database.Context, fn func(*database.Context) error) error {
	if dbCtx == nil || dbCtx.DB == nil {
		return fmt.Errorf("services: missing database context")
	}

	tx, err := dbCtx.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(dbCtx.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return nil
}
