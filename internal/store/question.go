package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/boki/internal/catalog"
)

var sqlite = entsql.Dialect(dialect.SQLite)

// QuestionRepo is the SQLite-backed catalog.Accessor.
type QuestionRepo struct {
	ex dialect.ExecQuerier
}

var _ catalog.Accessor = (*QuestionRepo)(nil)

// questionRow mirrors the questions table.
type questionRow struct {
	ID             string     `sql:"id"`
	CategoryID     string     `sql:"category_id"`
	Difficulty     int        `sql:"difficulty"`
	Tags           string     `sql:"tags"`
	Text           string     `sql:"question_text"`
	AnswerTemplate *string    `sql:"answer_template"`
	Explanation    string     `sql:"explanation"`
	CreatedAt      *time.Time `sql:"created_at"`
}

var questionSelectColumns = []string{
	"id", "category_id", "difficulty", "tags", "question_text",
	"answer_template", "explanation", "created_at",
}

func (r questionRow) toQuestion() (catalog.Question, error) {
	q := catalog.Question{
		ID:          r.ID,
		CategoryID:  r.CategoryID,
		Difficulty:  r.Difficulty,
		Text:        r.Text,
		Explanation: r.Explanation,
	}
	if r.Tags != "" {
		if err := json.Unmarshal([]byte(r.Tags), &q.Tags); err != nil {
			return catalog.Question{}, fmt.Errorf("decode tags of %s: %w", r.ID, err)
		}
	}
	if r.AnswerTemplate != nil && *r.AnswerTemplate != "" {
		q.AnswerTemplate = json.RawMessage(*r.AnswerTemplate)
	}
	return q, nil
}

func (r *QuestionRepo) selectQuestions() *entsql.Selector {
	return sqlite.Select(questionSelectColumns...).From(sqlite.Table(tableQuestions))
}

func (r *QuestionRepo) query(ctx context.Context, sel *entsql.Selector) ([]catalog.Question, error) {
	var rows []questionRow
	if err := queryInto(ctx, r.ex, sel, &rows); err != nil {
		return nil, err
	}
	out := make([]catalog.Question, 0, len(rows))
	for _, row := range rows {
		q, err := row.toQuestion()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *QuestionRepo) QueryAll(ctx context.Context) ([]catalog.Question, error) {
	qs, err := r.query(ctx, r.selectQuestions().OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return qs, nil
}

func (r *QuestionRepo) QueryByIDs(ctx context.Context, ids []string) ([]catalog.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	qs, err := r.query(ctx, r.selectQuestions().Where(entsql.In("id", toAny(ids)...)).OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("query questions by id: %w", err)
	}
	return qs, nil
}

func (r *QuestionRepo) QueryByCategory(ctx context.Context, categoryID string, opts catalog.QueryOptions) ([]catalog.Question, error) {
	preds := []*entsql.Predicate{entsql.EQ("category_id", categoryID)}
	if opts.Difficulty != 0 {
		preds = append(preds, entsql.EQ("difficulty", opts.Difficulty))
	}
	if len(opts.ExcludeIDs) > 0 {
		preds = append(preds, entsql.NotIn("id", toAny(opts.ExcludeIDs)...))
	}

	sel := r.selectQuestions().Where(entsql.And(preds...))
	if opts.Randomize {
		sel.OrderExpr(entsql.Expr("RANDOM()"))
	} else {
		sel.OrderBy("id")
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	qs, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query questions in %s: %w", categoryID, err)
	}
	return qs, nil
}

// Upsert inserts or replaces questions by ID. Each question is validated
// first; nothing is written if any is invalid.
func (r *QuestionRepo) Upsert(ctx context.Context, qs []catalog.Question, now time.Time) error {
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	for _, q := range qs {
		tags := q.Tags
		if tags == nil {
			tags = []string{}
		}
		tagJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("encode tags of %s: %w", q.ID, err)
		}
		var template any
		if len(q.AnswerTemplate) > 0 {
			template = string(q.AnswerTemplate)
		}

		ins := sqlite.Insert(tableQuestions).
			Columns("id", "category_id", "difficulty", "tags", "question_text", "answer_template", "explanation", "created_at").
			Values(q.ID, q.CategoryID, q.Difficulty, string(tagJSON), q.Text, template, q.Explanation, now).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.SetExcluded("category_id")
					u.SetExcluded("difficulty")
					u.SetExcluded("tags")
					u.SetExcluded("question_text")
					u.SetExcluded("answer_template")
					u.SetExcluded("explanation")
				}),
			)
		if _, err := execQuery(ctx, r.ex, ins); err != nil {
			return fmt.Errorf("upsert question %s: %w", q.ID, err)
		}
	}
	return nil
}

// CategoryCount is the number of questions in one category.
type CategoryCount struct {
	CategoryID string `sql:"category_id"`
	Count      int    `sql:"count"`
}

// CountByCategory returns question counts per category ordered by category.
func (r *QuestionRepo) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	t := sqlite.Table(tableQuestions)
	sel := sqlite.Select(t.C("category_id"), entsql.As(entsql.Count("*"), "count")).
		From(t).
		GroupBy(t.C("category_id")).
		OrderBy(t.C("category_id"))

	var out []CategoryCount
	if err := queryInto(ctx, r.ex, sel, &out); err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	return out, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
