package contentservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var ErrTransactionFailure = errors.New("transaction could not be committed")

const (
	// maxTxAttempts bounds the optimistic retry loop for serialization
	// failures. After the last attempt the caller sees ErrTransactionFailure.
	maxTxAttempts = 3

	// txTimeout caps a single mutation, including retries.
	txTimeout = 5 * time.Second
)

// runTx executes fn inside a serializable transaction, retrying the whole
// function when Postgres aborts the transaction with a serialization failure
// or deadlock. fn must be safe to re-run from scratch: it re-reads its
// snapshot and recomputes its edits on every attempt.
func (m *ContentModel) runTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = m.execTx(ctx, fn)
		if err == nil {
			return nil
		}

		if !retryableTxError(err) {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %v", ErrTransactionFailure, err)
			}
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrTransactionFailure, maxTxAttempts, err)
}

func (m *ContentModel) execTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func retryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure or deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}

	return false
}
