// Package study ties the review and selection engines to persistent state.
// It is the only layer that touches the store; the engines stay pure.
package study

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/boki/internal/catalog"
	"github.com/abhisek/boki/internal/review"
	"github.com/abhisek/boki/internal/selector"
	"github.com/abhisek/boki/internal/store"
)

// DefaultPerformanceWindow is how many recent answers feed the adaptive
// controller and phase progress.
const DefaultPerformanceWindow = 20

// Options configures a Service. Zero fields take their defaults.
type Options struct {
	Review            review.Config
	Weights           selector.Weights
	DefaultMax        int
	PerformanceWindow int
	Logger            *slog.Logger
	Now               func() time.Time
}

// Service runs study operations against a store.
type Service struct {
	st         *store.Store
	cfg        review.Config
	weights    selector.Weights
	defaultMax int
	window     int
	log        *slog.Logger
	now        func() time.Time
	session    string
}

// New creates a service over st.
func New(st *store.Store, opts Options) (*Service, error) {
	cfg := opts.Review
	if cfg.MasteryThreshold == 0 && cfg.IncorrectWeight == 0 {
		cfg = review.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("review config: %w", err)
	}

	s := &Service{
		st:         st,
		cfg:        cfg,
		weights:    opts.Weights,
		defaultMax: opts.DefaultMax,
		window:     opts.PerformanceWindow,
		log:        opts.Logger,
		now:        opts.Now,
		session:    uuid.NewString(),
	}
	if len(s.weights.Phase) == 0 && len(s.weights.Difficulty) == 0 {
		s.weights = selector.DefaultWeights()
	}
	if s.defaultMax <= 0 {
		s.defaultMax = selector.DefaultMaxQuestions
	}
	if s.window <= 0 {
		s.window = DefaultPerformanceWindow
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// SessionID identifies answers recorded through this service that carry no
// session of their own.
func (s *Service) SessionID() string {
	return s.session
}

// ReviewConfig returns the review policy in use.
func (s *Service) ReviewConfig() review.Config {
	return s.cfg
}

// AnswerInput is one answered question.
type AnswerInput struct {
	QuestionID string
	Correct    bool
	AnsweredAt time.Time // zero means now
	TimeSpent  time.Duration
	SessionID  string
	Mode       string
}

// RecordAnswer logs the answer and folds it into the question's review
// item. The question must exist. Nothing is written when the answer is
// rejected.
func (s *Service) RecordAnswer(ctx context.Context, in AnswerInput) (*review.Transition, error) {
	if in.QuestionID == "" {
		return nil, fmt.Errorf("answer has no question id: %w", catalog.ErrInvalidInput)
	}
	at := in.AnsweredAt
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()
	session := in.SessionID
	if session == "" {
		session = s.session
	}

	var tr review.Transition
	err := s.st.WithTx(ctx, func(tx *store.Tx) error {
		qs, err := tx.Questions().QueryByIDs(ctx, []string{in.QuestionID})
		if err != nil {
			return err
		}
		if len(qs) == 0 {
			return fmt.Errorf("unknown question %q: %w", in.QuestionID, catalog.ErrInvalidInput)
		}
		q := qs[0]

		current, err := tx.Reviews().Get(ctx, q.ID)
		if err != nil {
			return err
		}
		next, t, err := review.Apply(current, review.Answer{
			QuestionID: q.ID,
			CategoryID: q.CategoryID,
			Correct:    in.Correct,
			AnsweredAt: at,
		}, s.cfg)
		if err != nil {
			return err
		}

		if _, err := tx.Answers().Append(ctx, store.AnswerEventData{
			Timestamp:  at,
			SessionID:  session,
			QuestionID: q.ID,
			CategoryID: q.CategoryID,
			Correct:    in.Correct,
			TimeSpent:  in.TimeSpent,
			Mode:       in.Mode,
		}); err != nil {
			return err
		}
		if t.Changed() {
			if err := tx.Reviews().Upsert(ctx, next); err != nil {
				return err
			}
		}
		tr = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "answer recorded",
		slog.String("question_id", tr.QuestionID),
		slog.Bool("correct", in.Correct),
		slog.String("action", string(tr.Action)),
		slog.String("status", string(tr.To)),
		slog.Int("priority", tr.NewPriority))
	if tr.Action == review.ActionMastered {
		s.log.InfoContext(ctx, "question mastered", slog.String("question_id", tr.QuestionID))
	}
	return &tr, nil
}

// QueueEntry is a review item with its question. Question is nil when the
// question has since been removed from the catalog.
type QueueEntry struct {
	Item     review.Item
	Question *catalog.Question
}

// ReviewQueue returns the open review items in review order.
func (s *Service) ReviewQueue(ctx context.Context, f review.Filter) ([]QueueEntry, error) {
	items, err := s.st.Reviews().Open(ctx)
	if err != nil {
		return nil, err
	}
	// Categories match topic categories as well, so they are applied after
	// the questions are joined, and the limit after that.
	categories, limit := f.Categories, f.Limit
	f.Categories, f.Limit = nil, 0
	queue := review.BuildQueue(items, s.now(), f, s.cfg)
	if len(queue) == 0 {
		return nil, nil
	}

	ids := make([]string, len(queue))
	for i, it := range queue {
		ids[i] = it.QuestionID
	}
	qs, err := s.st.Questions().QueryByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalog.Question, len(qs))
	for _, q := range qs {
		byID[q.ID] = q
	}

	var out []QueueEntry
	for _, it := range queue {
		e := QueueEntry{Item: it}
		if q, ok := byID[it.QuestionID]; ok {
			e.Question = &q
		}
		if len(categories) > 0 && !e.inCategory(categories) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// inCategory matches the question's category or topic category, falling
// back to the item's category when the question is gone.
func (e QueueEntry) inCategory(ids []string) bool {
	if e.Question != nil {
		return e.Question.InCategory(ids)
	}
	return slices.Contains(ids, e.Item.CategoryID)
}

// NextOptions narrows a selection request.
type NextOptions struct {
	Max              int
	Focus            []string
	Exclude          []string
	TargetDifficulty int
	Adaptive         bool
}

// Next picks the next questions to study for the current profile.
// Questions that have been answered before are left out.
func (s *Service) Next(ctx context.Context, opts NextOptions) (*selector.Result, error) {
	prof, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := s.st.Questions().QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	answered, err := s.st.Answers().AnsweredQuestionIDs(ctx)
	if err != nil {
		return nil, err
	}

	sel := selector.New(pool, selector.WithWeights(s.weights), selector.WithDefaultMax(s.defaultMax))
	c := selector.Criteria{
		Level:              prof.Level,
		Phase:              prof.Phase,
		CompletedIDs:       answered,
		MasteredCategories: prof.MasteredCategories,
		FocusCategories:    opts.Focus,
		ExcludeCategories:  opts.Exclude,
		TargetDifficulty:   opts.TargetDifficulty,
		MaxQuestions:       opts.Max,
	}

	var res *selector.Result
	if opts.Adaptive {
		events, err := s.st.Answers().Recent(ctx, s.window)
		if err != nil {
			return nil, err
		}
		// No history leaves the target alone.
		if len(events) > 0 {
			res, err = sel.SelectAdaptive(performanceOf(events), c)
		} else {
			res, err = sel.Select(c)
		}
		if err != nil {
			return nil, err
		}
	} else {
		res, err = sel.Select(c)
		if err != nil {
			return nil, err
		}
	}

	s.log.DebugContext(ctx, "questions selected",
		slog.Int("selected", res.Metadata.SelectedCount),
		slog.Int("available", res.Metadata.TotalAvailable),
		slog.Int("target_difficulty", res.Metadata.TargetDifficulty),
		slog.String("reason", res.Metadata.Reason))
	return res, nil
}

// Performance summarizes the most recent answers.
func (s *Service) Performance(ctx context.Context) (selector.Performance, error) {
	events, err := s.st.Answers().Recent(ctx, s.window)
	if err != nil {
		return selector.Performance{}, err
	}
	return performanceOf(events), nil
}

// performanceOf summarizes events ordered newest first.
func performanceOf(events []store.AnswerEvent) selector.Performance {
	if len(events) == 0 {
		return selector.Performance{}
	}
	var correct int
	var total time.Duration
	streak, streaking := 0, true
	for _, e := range events {
		if e.Correct {
			correct++
			if streaking {
				streak++
			}
		} else {
			streaking = false
		}
		total += e.TimeSpent()
	}
	return selector.Performance{
		CorrectRate: float64(correct) / float64(len(events)),
		AverageTime: total / time.Duration(len(events)),
		StreakCount: streak,
	}
}

// Stats summarizes every review item.
func (s *Service) Stats(ctx context.Context) (review.Stats, error) {
	items, err := s.st.Reviews().All(ctx)
	if err != nil {
		return review.Stats{}, err
	}
	return review.Summarize(items, s.now(), s.cfg), nil
}

// Catalog returns question counts per category.
func (s *Service) Catalog(ctx context.Context) ([]store.CategoryCount, error) {
	return s.st.Questions().CountByCategory(ctx)
}

// Questions lists the catalog, optionally limited to one category.
func (s *Service) Questions(ctx context.Context, categoryID string) ([]catalog.Question, error) {
	if categoryID == "" {
		return s.st.Questions().QueryAll(ctx)
	}
	return s.st.Questions().QueryByCategory(ctx, categoryID, catalog.QueryOptions{})
}

// ResetResult reports what Reset removed.
type ResetResult struct {
	ReviewItems int64
	Answers     int64
}

// Reset deletes every review item and answer event. The catalog and the
// profile are kept.
func (s *Service) Reset(ctx context.Context) (ResetResult, error) {
	var res ResetResult
	err := s.st.WithTx(ctx, func(tx *store.Tx) error {
		n, err := tx.Reviews().DeleteAll(ctx)
		if err != nil {
			return err
		}
		res.ReviewItems = n
		n, err = tx.Answers().DeleteAll(ctx)
		if err != nil {
			return err
		}
		res.Answers = n
		return nil
	})
	if err != nil {
		return ResetResult{}, err
	}
	s.log.InfoContext(ctx, "review state reset",
		slog.Int64("review_items", res.ReviewItems),
		slog.Int64("answers", res.Answers))
	return res, nil
}

// ImportQuestions loads a JSON question file into the catalog, replacing
// questions with the same ID. It returns the number of questions written.
func (s *Service) ImportQuestions(ctx context.Context, r io.Reader) (int, error) {
	qs, err := catalog.Decode(r)
	if err != nil {
		return 0, err
	}
	if len(qs) == 0 {
		return 0, nil
	}
	now := s.now().UTC()
	err = s.st.WithTx(ctx, func(tx *store.Tx) error {
		return tx.Questions().Upsert(ctx, qs, now)
	})
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "questions imported", slog.Int("count", len(qs)))
	return len(qs), nil
}
