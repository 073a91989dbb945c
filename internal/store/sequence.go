package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sequenceCounter hands out the global monotonic sequence shared by applied
// progress events and LLM request logs, giving a single ordering across
// tables. The mutex serializes within the process; the RETURNING clause
// makes the increment atomic in the database.
type sequenceCounter struct {
	mu sync.Mutex
}

// Next atomically returns the next sequence number using q, which may be a
// transaction so the number is only consumed if the caller commits.
func (sc *sequenceCounter) Next(ctx context.Context, q querier) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
