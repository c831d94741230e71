package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/DeckOps/internal/storage/repository"
)

// TxFunc is a function that runs within a transaction.
type TxFunc func(*sql.Tx) error

// WithTransaction executes the given function within a database transaction.
// It commits on success and rolls back on error or panic; a panic is re-raised.
func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
		} else {
			err = tx.Commit()
			if err != nil {
				err = fmt.Errorf("failed to commit transaction: %w", err)
			}
		}
	}()

	err = fn(tx)
	return err
}

// withDeckTx runs fn with a deck repository bound to a transaction.
func (s *Service) withDeckTx(ctx context.Context, fn func(repository.DeckRepository) error) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(repository.NewDeckRepository(tx))
	})
}
