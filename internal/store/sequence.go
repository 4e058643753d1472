package store

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence shared by answer
// events and profile snapshots, so a snapshot can name the last event it
// covers.
//
// The counter lives in raw SQL outside the migrated tables because it is a
// single-row atomic counter. The mutex serializes within the process; the
// RETURNING clause makes the increment atomic at the database level. Next
// runs on whichever ExecQuerier it is given, so a transaction that appends
// an event also owns its sequence number.
type sequenceCounter struct {
	mu sync.Mutex
}

// newSequenceCounter ensures the tracking table exists and is seeded.
func newSequenceCounter(ctx context.Context, ex dialect.ExecQuerier) (*sequenceCounter, error) {
	err := ex.Exec(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`, []any{}, nil)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	err = ex.Exec(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`, []any{}, nil)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context, ex dialect.ExecQuerier) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var rows entsql.Rows
	err := ex.Query(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
		[]any{}, &rows,
	)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	var seq []int64
	if err := entsql.ScanSlice(rows, &seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	if len(seq) != 1 {
		return 0, fmt.Errorf("next sequence: got %d rows", len(seq))
	}
	return seq[0], nil
}

// queryInto runs a built query and scans every row into dest, a pointer to
// a slice.
func queryInto(ctx context.Context, ex dialect.ExecQuerier, q entsql.Querier, dest any) error {
	query, args := q.Query()
	var rows entsql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, dest)
}

// execQuery runs a built statement and returns the affected row count.
func execQuery(ctx context.Context, ex dialect.ExecQuerier, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res entsql.Result
	if err := ex.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
