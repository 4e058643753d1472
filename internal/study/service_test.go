package study

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/boki/internal/catalog"
	"github.com/abhisek/boki/internal/review"
	"github.com/abhisek/boki/internal/store"
)

const questionsJSON = `[
  {"id": "j1", "category_id": "journal-entries", "difficulty": 1, "tags": ["現金過不足"]},
  {"id": "j2", "category_id": "journal-entries", "difficulty": 2, "tags": ["小口現金"]},
  {"id": "j3", "category_id": "journal-entries", "difficulty": 2, "tags": ["商品売買"]},
  {"id": "j4", "category_id": "journal-entries", "difficulty": 3, "tags": ["売掛金"]},
  {"id": "l1", "category_id": "ledgers", "difficulty": 3, "tags": ["総勘定元帳"]},
  {"id": "t1", "category_id": "trial-balance", "difficulty": 4, "tags": ["残高試算表"]}
]`

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	svc   *Service
	st    *store.Store
	clock *clock
	logs  *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c := &clock{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	logs := &bytes.Buffer{}
	svc, err := New(st, Options{
		Logger: slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Now:    c.now,
	})
	require.NoError(t, err)

	n, err := svc.ImportQuestions(context.Background(), strings.NewReader(questionsJSON))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	return &harness{svc: svc, st: st, clock: c, logs: logs}
}

func (h *harness) answer(t *testing.T, id string, correct bool) *review.Transition {
	t.Helper()
	h.clock.advance(time.Minute)
	tr, err := h.svc.RecordAnswer(context.Background(), AnswerInput{
		QuestionID: id,
		Correct:    correct,
		TimeSpent:  20 * time.Second,
		SessionID:  "s1",
	})
	require.NoError(t, err)
	return tr
}

func TestNew_Defaults(t *testing.T) {
	st, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	defer st.Close()

	svc, err := New(st, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, svc.ReviewConfig().MasteryThreshold)
	assert.Equal(t, DefaultPerformanceWindow, svc.window)

	bad := review.DefaultConfig()
	bad.MaxPriorityScore = -1
	_, err = New(st, Options{Review: bad})
	assert.Error(t, err)
}

func TestRecordAnswer_UnknownQuestion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.RecordAnswer(ctx, AnswerInput{QuestionID: "missing", Correct: false})
	require.ErrorIs(t, err, catalog.ErrInvalidInput)

	_, err = h.svc.RecordAnswer(ctx, AnswerInput{})
	require.ErrorIs(t, err, catalog.ErrInvalidInput)

	events, err := h.st.Answers().Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecordAnswer_CorrectOnNewQuestionIsLoggedOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tr := h.answer(t, "j1", true)
	assert.Equal(t, review.ActionNoChange, tr.Action)

	item, err := h.st.Reviews().Get(ctx, "j1")
	require.NoError(t, err)
	assert.Nil(t, item)

	events, err := h.st.Answers().Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "journal-entries", events[0].CategoryID)
	assert.Equal(t, store.ModePractice, events[0].Mode)
}

func TestRecordAnswer_DefaultSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.answer(t, "j1", true)
	h.clock.advance(time.Minute)
	_, err := h.svc.RecordAnswer(ctx, AnswerInput{QuestionID: "j2", Correct: true})
	require.NoError(t, err)

	events, err := h.st.Answers().Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, h.svc.SessionID(), events[0].SessionID)
	assert.Equal(t, "s1", events[1].SessionID)
	assert.NoError(t, uuid.Validate(h.svc.SessionID()))
}

func TestRecordAnswer_Lifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tr := h.answer(t, "l1", false)
	assert.Equal(t, review.ActionCreated, tr.Action)
	assert.Equal(t, review.StatusNeedsReview, tr.To)

	tr = h.answer(t, "l1", false)
	assert.Equal(t, review.ActionUpdated, tr.Action)
	assert.Equal(t, review.StatusPriorityReview, tr.To)
	assert.Greater(t, tr.NewPriority, tr.PreviousPriority)

	for i := 0; i < 2; i++ {
		tr = h.answer(t, "l1", true)
		assert.Equal(t, review.ActionUpdated, tr.Action)
	}
	tr = h.answer(t, "l1", true)
	assert.Equal(t, review.ActionMastered, tr.Action)
	assert.Equal(t, review.StatusMastered, tr.To)

	item, err := h.st.Reviews().Get(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 2, item.IncorrectCount)
	assert.Equal(t, 3, item.ConsecutiveCorrectCount)
	assert.Equal(t, "ledgers", item.CategoryID)
	require.NotNil(t, item.LastReviewedAt)
	assert.True(t, item.LastReviewedAt.Equal(h.clock.now()))

	queue, err := h.svc.ReviewQueue(ctx, review.Filter{})
	require.NoError(t, err)
	assert.Empty(t, queue)

	tr = h.answer(t, "l1", false)
	assert.Equal(t, review.ActionReopened, tr.Action)
	assert.Contains(t, h.logs.String(), "question mastered")
}

func TestRecordAnswer_RejectsOutOfOrderAnswer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.answer(t, "j1", false)
	_, err := h.svc.RecordAnswer(ctx, AnswerInput{
		QuestionID: "j1",
		AnsweredAt: h.clock.now().Add(-time.Hour),
	})
	require.ErrorIs(t, err, catalog.ErrInvalidInput)

	events, err := h.st.Answers().Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1, "rejected answer is not logged")
}

func TestReviewQueue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.answer(t, "j1", false)
	h.answer(t, "t1", false)
	h.answer(t, "t1", false)
	h.answer(t, "l1", false)

	queue, err := h.svc.ReviewQueue(ctx, review.Filter{})
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, "t1", queue[0].Item.QuestionID)
	require.NotNil(t, queue[0].Question)
	assert.Equal(t, 4, queue[0].Question.Difficulty)
	for i := 1; i < len(queue); i++ {
		assert.GreaterOrEqual(t, queue[i-1].Item.PriorityScore, queue[i].Item.PriorityScore)
	}

	ledgers, err := h.svc.ReviewQueue(ctx, review.Filter{Categories: []string{"ledgers"}})
	require.NoError(t, err)
	require.Len(t, ledgers, 1)
	assert.Equal(t, "l1", ledgers[0].Item.QuestionID)

	priority, err := h.svc.ReviewQueue(ctx, review.Filter{MinStatus: review.StatusPriorityReview})
	require.NoError(t, err)
	require.Len(t, priority, 1)
	assert.Equal(t, "t1", priority[0].Item.QuestionID)
}

func TestReviewQueue_TopicCategories(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.answer(t, "j1", false)
	h.answer(t, "j3", false)
	h.answer(t, "l1", false)

	// j1 is tagged 現金過不足, which maps to the cash_deposit topic.
	cash, err := h.svc.ReviewQueue(ctx, review.Filter{Categories: []string{"cash_deposit"}})
	require.NoError(t, err)
	require.Len(t, cash, 1)
	assert.Equal(t, "j1", cash[0].Item.QuestionID)

	limited, err := h.svc.ReviewQueue(ctx, review.Filter{Categories: []string{"journal-entries"}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "journal-entries", limited[0].Item.CategoryID)

	none, err := h.svc.ReviewQueue(ctx, review.Filter{Categories: []string{"trial_balance"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNext_SkipsAnsweredQuestions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// t1 is above the beginner band of phase 1.
	first, err := h.svc.Next(ctx, NextOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, first.Metadata.TotalAvailable)
	assert.NotContains(t, first.IDs(), "t1")
	assert.Contains(t, first.IDs(), "j1")

	h.answer(t, "j1", true)
	h.answer(t, "j2", false)

	next, err := h.svc.Next(ctx, NextOptions{Max: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, next.Metadata.TotalAvailable)
	assert.LessOrEqual(t, len(next.Questions), 3)
	assert.NotContains(t, next.IDs(), "j1")
	assert.NotContains(t, next.IDs(), "j2")
}

func TestNext_FocusAndMastered(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Next(ctx, NextOptions{Focus: []string{"ledgers"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, res.IDs())

	_, err = h.svc.MasterCategory(ctx, "journal-entries")
	require.NoError(t, err)
	res, err = h.svc.Next(ctx, NextOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, res.IDs())

	_, err = h.svc.Next(ctx, NextOptions{Max: -1})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
}

func TestNext_Adaptive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// A strong run raises the beginner target from 2 to 3.
	for _, id := range []string{"j1", "j2", "j3", "j4", "l1"} {
		h.answer(t, id, true)
	}
	res, err := h.svc.Next(ctx, NextOptions{Adaptive: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Metadata.TargetDifficulty)

	plain, err := h.svc.Next(ctx, NextOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, plain.Metadata.TargetDifficulty)
}

func TestNext_AdaptiveWithoutHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	adaptive, err := h.svc.Next(ctx, NextOptions{Adaptive: true})
	require.NoError(t, err)
	plain, err := h.svc.Next(ctx, NextOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, adaptive.Metadata.TargetDifficulty)
	assert.Equal(t, plain.Metadata.TargetDifficulty, adaptive.Metadata.TargetDifficulty)
	assert.Equal(t, plain.IDs(), adaptive.IDs())
}

func TestPerformance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	perf, err := h.svc.Performance(ctx)
	require.NoError(t, err)
	assert.Zero(t, perf)

	h.answer(t, "j1", true)
	h.answer(t, "j2", false)
	h.answer(t, "j3", true)
	h.answer(t, "j4", true)

	perf, err = h.svc.Performance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, perf.CorrectRate, 1e-9)
	assert.Equal(t, 2, perf.StreakCount)
	assert.Equal(t, 20*time.Second, perf.AverageTime)
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p, err := h.svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.LevelBeginner, p.Level)
	assert.Equal(t, 1, p.Phase)
	assert.False(t, p.Saved)

	p, err = h.svc.SetLevel(ctx, "advanced")
	require.NoError(t, err)
	assert.Equal(t, catalog.LevelAdvanced, p.Level)
	assert.Equal(t, 3, p.Phase)
	assert.True(t, p.Saved)
	assert.True(t, p.PhaseStartedAt.Equal(h.clock.now()))

	// Lowering the level keeps the phase.
	p, err = h.svc.SetLevel(ctx, "beginner")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Phase)

	_, err = h.svc.SetLevel(ctx, "expert")
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)

	p, err = h.svc.MasterCategory(ctx, "ledgers")
	require.NoError(t, err)
	p, err = h.svc.MasterCategory(ctx, "cash_deposit")
	require.NoError(t, err)
	p, err = h.svc.MasterCategory(ctx, "ledgers")
	require.NoError(t, err)
	assert.Equal(t, []string{"cash_deposit", "ledgers"}, p.MasteredCategories)
	assert.Equal(t, 3, p.Phase)

	_, err = h.svc.MasterCategory(ctx, "")
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
}

func TestProfile_SnapshotsArePruned(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < profileHistory+5; i++ {
		h.clock.advance(time.Second)
		_, err := h.svc.SetLevel(ctx, "intermediate")
		require.NoError(t, err)
	}
	n, err := h.st.Profiles().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, profileHistory, n)
}

func TestCheckProgress(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	prog, err := h.svc.CheckProgress(ctx)
	require.NoError(t, err)
	assert.False(t, prog.Advanced)
	assert.Equal(t, 0, prog.Answers)

	// Too few answers, even if all correct.
	for i := 0; i < MinProgressAnswers-1; i++ {
		h.answer(t, "j1", true)
	}
	prog, err = h.svc.CheckProgress(ctx)
	require.NoError(t, err)
	assert.False(t, prog.Advanced)

	h.answer(t, "j2", true)
	h.clock.advance(time.Minute)
	prog, err = h.svc.CheckProgress(ctx)
	require.NoError(t, err)
	require.True(t, prog.Advanced)
	assert.Equal(t, 1, prog.Phase.Number)
	assert.Equal(t, 2, prog.NextPhase)
	assert.InDelta(t, 1.0, prog.CorrectRate, 1e-9)

	p, err := h.svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Phase)

	// Answers from the finished phase do not count toward the new one.
	prog, err = h.svc.CheckProgress(ctx)
	require.NoError(t, err)
	assert.False(t, prog.Advanced)
	assert.Equal(t, 0, prog.Answers)
}

func TestCheckProgress_BelowMasteryBar(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < MinProgressAnswers; i++ {
		h.answer(t, "j3", i%2 == 0)
	}
	prog, err := h.svc.CheckProgress(ctx)
	require.NoError(t, err)
	assert.False(t, prog.Advanced)
	assert.InDelta(t, 0.5, prog.CorrectRate, 1e-9)
}

func TestStatsAndReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.answer(t, "j1", false)
	h.answer(t, "l1", false)
	h.answer(t, "l1", false)

	stats, err := h.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Open())
	assert.Equal(t, 1, stats.ByStatus[review.StatusPriorityReview])
	require.Len(t, stats.Categories, 2)

	counts, err := h.svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, 3)

	res, err := h.svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResetResult{ReviewItems: 2, Answers: 3}, res)

	stats, err = h.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)

	qs, err := h.svc.Questions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, qs, 6, "reset keeps the catalog")
}

func TestImportQuestions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	n, err := h.svc.ImportQuestions(ctx, strings.NewReader(
		`[{"id": "j1", "category_id": "journal-entries", "difficulty": 5}, {"id": "n1", "category_id": "ledgers", "difficulty": 2}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ledgers, err := h.svc.Questions(ctx, "ledgers")
	require.NoError(t, err)
	assert.Len(t, ledgers, 2)

	all, err := h.svc.Questions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Equal(t, 5, all[0].Difficulty)

	_, err = h.svc.ImportQuestions(ctx, strings.NewReader(`[{"id": "x"}]`))
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)

	n, err = h.svc.ImportQuestions(ctx, strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPerformanceOf(t *testing.T) {
	events := []store.AnswerEvent{
		{Correct: false, TimeMs: 1000},
		{Correct: true, TimeMs: 3000},
	}
	perf := performanceOf(events)
	assert.Equal(t, 0, perf.StreakCount, "newest answer was wrong")
	assert.InDelta(t, 0.5, perf.CorrectRate, 1e-9)
	assert.Equal(t, 2*time.Second, perf.AverageTime)
}
