package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Answer modes.
const (
	ModePractice = "practice"
	ModeReview   = "review"
)

// AnswerEventData holds the fields for appending an answer event.
type AnswerEventData struct {
	Timestamp  time.Time
	SessionID  string
	QuestionID string
	CategoryID string
	Correct    bool
	TimeSpent  time.Duration
	Mode       string
}

// AnswerEvent is a stored answer.
type AnswerEvent struct {
	Sequence   int64     `sql:"sequence"`
	Timestamp  time.Time `sql:"timestamp"`
	SessionID  string    `sql:"session_id"`
	QuestionID string    `sql:"question_id"`
	CategoryID string    `sql:"category_id"`
	Correct    bool      `sql:"correct"`
	TimeMs     int64     `sql:"time_ms"`
	Mode       string    `sql:"mode"`
}

// TimeSpent returns the recorded answer time.
func (e AnswerEvent) TimeSpent() time.Duration {
	return time.Duration(e.TimeMs) * time.Millisecond
}

// AnswerRepo is the append-only answer log.
type AnswerRepo struct {
	ex  dialect.ExecQuerier
	seq *sequenceCounter
}

// Append stores an answer and returns its global sequence number.
func (r *AnswerRepo) Append(ctx context.Context, data AnswerEventData) (int64, error) {
	seqNum, err := r.seq.Next(ctx, r.ex)
	if err != nil {
		return 0, err
	}
	mode := data.Mode
	if mode == "" {
		mode = ModePractice
	}

	ins := sqlite.Insert(tableAnswerEvents).
		Columns("sequence", "timestamp", "session_id", "question_id", "category_id", "correct", "time_ms", "mode").
		Values(seqNum, data.Timestamp, data.SessionID, data.QuestionID, data.CategoryID, data.Correct,
			data.TimeSpent.Milliseconds(), mode)
	if _, err := execQuery(ctx, r.ex, ins); err != nil {
		return 0, fmt.Errorf("save answer event: %w", err)
	}
	return seqNum, nil
}

// Recent returns the last n answers, newest first.
func (r *AnswerRepo) Recent(ctx context.Context, n int) ([]AnswerEvent, error) {
	sel := sqlite.Select("sequence", "timestamp", "session_id", "question_id", "category_id", "correct", "time_ms", "mode").
		From(sqlite.Table(tableAnswerEvents)).
		OrderBy(entsql.Desc("sequence"))
	if n > 0 {
		sel.Limit(n)
	}

	var events []AnswerEvent
	if err := queryInto(ctx, r.ex, sel, &events); err != nil {
		return nil, fmt.Errorf("query recent answers: %w", err)
	}
	return events, nil
}

// AnsweredQuestionIDs returns the distinct IDs of every answered question.
func (r *AnswerRepo) AnsweredQuestionIDs(ctx context.Context) ([]string, error) {
	sel := sqlite.Select("question_id").
		From(sqlite.Table(tableAnswerEvents)).
		Distinct().
		OrderBy("question_id")

	var ids []string
	if err := queryInto(ctx, r.ex, sel, &ids); err != nil {
		return nil, fmt.Errorf("query answered questions: %w", err)
	}
	return ids, nil
}

// LatestAnswerTime returns the timestamp of the most recent answer, or the
// zero time when there are none.
func (r *AnswerRepo) LatestAnswerTime(ctx context.Context) (time.Time, error) {
	events, err := r.Recent(ctx, 1)
	if err != nil {
		return time.Time{}, err
	}
	if len(events) == 0 {
		return time.Time{}, nil
	}
	return events[0].Timestamp, nil
}

// DeleteAll removes every answer event and returns how many were removed.
func (r *AnswerRepo) DeleteAll(ctx context.Context) (int64, error) {
	n, err := execQuery(ctx, r.ex, sqlite.Delete(tableAnswerEvents))
	if err != nil {
		return 0, fmt.Errorf("delete answer events: %w", err)
	}
	return n, nil
}
