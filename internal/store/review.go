package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/boki/internal/review"
)

// ReviewRepo persists review items keyed by question ID.
type ReviewRepo struct {
	ex dialect.ExecQuerier
}

type reviewRow struct {
	ID                      int        `sql:"id"`
	QuestionID              string     `sql:"question_id"`
	CategoryID              string     `sql:"category_id"`
	IncorrectCount          int        `sql:"incorrect_count"`
	ConsecutiveCorrectCount int        `sql:"consecutive_correct_count"`
	Status                  string     `sql:"status"`
	PriorityScore           int        `sql:"priority_score"`
	LastAnsweredAt          *time.Time `sql:"last_answered_at"`
	LastReviewedAt          *time.Time `sql:"last_reviewed_at"`
	CreatedAt               time.Time  `sql:"created_at"`
	UpdatedAt               time.Time  `sql:"updated_at"`
}

func (r reviewRow) toItem() review.Item {
	return review.Item{
		QuestionID:              r.QuestionID,
		CategoryID:              r.CategoryID,
		IncorrectCount:          r.IncorrectCount,
		ConsecutiveCorrectCount: r.ConsecutiveCorrectCount,
		Status:                  review.Status(r.Status),
		PriorityScore:           r.PriorityScore,
		LastAnsweredAt:          r.LastAnsweredAt,
		LastReviewedAt:          r.LastReviewedAt,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}

func (r *ReviewRepo) selectItems() *entsql.Selector {
	return sqlite.Select(
		"id", "question_id", "category_id", "incorrect_count", "consecutive_correct_count",
		"status", "priority_score", "last_answered_at", "last_reviewed_at", "created_at", "updated_at",
	).From(sqlite.Table(tableReviewItems))
}

func (r *ReviewRepo) query(ctx context.Context, sel *entsql.Selector) ([]review.Item, error) {
	var rows []reviewRow
	if err := queryInto(ctx, r.ex, sel, &rows); err != nil {
		return nil, err
	}
	items := make([]review.Item, len(rows))
	for i, row := range rows {
		items[i] = row.toItem()
	}
	return items, nil
}

// Get returns the item for questionID, or nil if none exists.
func (r *ReviewRepo) Get(ctx context.Context, questionID string) (*review.Item, error) {
	items, err := r.query(ctx, r.selectItems().Where(entsql.EQ("question_id", questionID)).Limit(1))
	if err != nil {
		return nil, fmt.Errorf("query review item %s: %w", questionID, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// Upsert writes it, replacing any existing item for the same question.
func (r *ReviewRepo) Upsert(ctx context.Context, it review.Item) error {
	ins := sqlite.Insert(tableReviewItems).
		Columns(
			"question_id", "category_id", "incorrect_count", "consecutive_correct_count",
			"status", "priority_score", "last_answered_at", "last_reviewed_at", "created_at", "updated_at",
		).
		Values(
			it.QuestionID, it.CategoryID, it.IncorrectCount, it.ConsecutiveCorrectCount,
			string(it.Status), it.PriorityScore, nullableTime(it.LastAnsweredAt), nullableTime(it.LastReviewedAt),
			it.CreatedAt, it.UpdatedAt,
		).
		OnConflict(
			entsql.ConflictColumns("question_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("category_id")
				u.SetExcluded("incorrect_count")
				u.SetExcluded("consecutive_correct_count")
				u.SetExcluded("status")
				u.SetExcluded("priority_score")
				u.SetExcluded("last_answered_at")
				u.SetExcluded("last_reviewed_at")
				u.SetExcluded("updated_at")
			}),
		)
	if _, err := execQuery(ctx, r.ex, ins); err != nil {
		return fmt.Errorf("upsert review item %s: %w", it.QuestionID, err)
	}
	return nil
}

// Open returns items still in the review queue, highest stored priority
// first.
func (r *ReviewRepo) Open(ctx context.Context) ([]review.Item, error) {
	sel := r.selectItems().
		Where(entsql.In("status", string(review.StatusNeedsReview), string(review.StatusPriorityReview))).
		OrderBy(entsql.Desc("priority_score"), "question_id")
	items, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query open review items: %w", err)
	}
	return items, nil
}

// All returns every item ordered by question ID.
func (r *ReviewRepo) All(ctx context.Context) ([]review.Item, error) {
	items, err := r.query(ctx, r.selectItems().OrderBy("question_id"))
	if err != nil {
		return nil, fmt.Errorf("query review items: %w", err)
	}
	return items, nil
}

// DeleteAll removes every review item and returns how many were removed.
func (r *ReviewRepo) DeleteAll(ctx context.Context) (int64, error) {
	n, err := execQuery(ctx, r.ex, sqlite.Delete(tableReviewItems))
	if err != nil {
		return 0, fmt.Errorf("delete review items: %w", err)
	}
	return n, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
