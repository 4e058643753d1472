package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ProfileVersion is the current ProfileData layout.
const ProfileVersion = 1

// ProfileData captures the learner's study settings at a point in time.
type ProfileData struct {
	Version            int       `json:"version"`
	Level              string    `json:"level"`
	Phase              int       `json:"phase"`
	PhaseStartedAt     time.Time `json:"phase_started_at"`
	MasteredCategories []string  `json:"mastered_categories,omitempty"`
}

// Snapshot is a stored profile.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      ProfileData
}

type snapshotRow struct {
	ID        int       `sql:"id"`
	Sequence  int64     `sql:"sequence"`
	Timestamp time.Time `sql:"timestamp"`
	Data      string    `sql:"data"`
}

// ProfileRepo stores profile snapshots. The newest snapshot is the current
// profile.
type ProfileRepo struct {
	ex  dialect.ExecQuerier
	seq *sequenceCounter
}

// Save stores data as the newest snapshot at ts.
func (r *ProfileRepo) Save(ctx context.Context, data ProfileData, ts time.Time) (*Snapshot, error) {
	if data.Version == 0 {
		data.Version = ProfileVersion
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	seqNum, err := r.seq.Next(ctx, r.ex)
	if err != nil {
		return nil, err
	}

	ins := sqlite.Insert(tableSnapshots).
		Columns("sequence", "timestamp", "data").
		Values(seqNum, ts, string(b))
	if _, err := execQuery(ctx, r.ex, ins); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return &Snapshot{Sequence: seqNum, Timestamp: ts, Data: data}, nil
}

// Latest returns the most recent snapshot, or nil if none exist.
func (r *ProfileRepo) Latest(ctx context.Context) (*Snapshot, error) {
	snaps, err := r.list(ctx, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

// Prune deletes all but the keep most recent snapshots.
func (r *ProfileRepo) Prune(ctx context.Context, keep int) error {
	// The newest snapshot beyond the ones we keep marks the cut.
	snaps, err := r.list(ctx, keep, 1)
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}
	if len(snaps) == 0 {
		return nil // fewer than keep snapshots exist
	}

	del := sqlite.Delete(tableSnapshots).Where(entsql.LTE("sequence", snaps[0].Sequence))
	if _, err := execQuery(ctx, r.ex, del); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// Count returns the number of stored snapshots.
func (r *ProfileRepo) Count(ctx context.Context) (int, error) {
	sel := sqlite.Select().Count().From(sqlite.Table(tableSnapshots))
	var n []int
	if err := queryInto(ctx, r.ex, sel, &n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	if len(n) == 0 {
		return 0, nil
	}
	return n[0], nil
}

func (r *ProfileRepo) list(ctx context.Context, offset, limit int) ([]Snapshot, error) {
	sel := sqlite.Select("id", "sequence", "timestamp", "data").
		From(sqlite.Table(tableSnapshots)).
		OrderBy(entsql.Desc("sequence")).
		Limit(limit)
	if offset > 0 {
		sel.Offset(offset)
	}

	var rows []snapshotRow
	if err := queryInto(ctx, r.ex, sel, &rows); err != nil {
		return nil, err
	}
	out := make([]Snapshot, len(rows))
	for i, row := range rows {
		var data ProfileData
		if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot %d: %w", row.ID, err)
		}
		out[i] = Snapshot{ID: row.ID, Sequence: row.Sequence, Timestamp: row.Timestamp, Data: data}
	}
	return out, nil
}
