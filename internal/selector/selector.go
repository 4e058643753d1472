package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/boki/internal/catalog"
	"github.com/abhisek/boki/internal/curriculum"
)

// DefaultMaxQuestions is used when Criteria.MaxQuestions is zero.
const DefaultMaxQuestions = 10

// UnknownTopic labels questions whose tags map to no topic.
const UnknownTopic = "unknown"

// Criteria describes one selection request. MaxQuestions of zero selects
// up to the selector default (DefaultMaxQuestions unless WithDefaultMax is
// given); a negative MaxQuestions is rejected with ErrInvalidInput.
type Criteria struct {
	Level              catalog.Level
	Phase              int
	CompletedIDs       []string
	MasteredCategories []string
	FocusCategories    []string
	ExcludeCategories  []string
	TargetDifficulty   int // 0 derives the target from Level
	MaxQuestions       int // 0 uses the selector default, < 0 is invalid
}

// Scored is a selected question with its score.
type Scored struct {
	Question           catalog.Question
	Score              int
	Breakdown          Breakdown
	AdjustedDifficulty int
}

// Metadata explains a selection.
type Metadata struct {
	TotalAvailable       int
	SelectedCount        int
	AverageDifficulty    float64
	CategoryDistribution map[string]int
	TopicDistribution    map[string]int
	TargetDifficulty     int
	Phase                int
	Reason               string
}

// Result is the outcome of Select.
type Result struct {
	Questions []Scored
	Metadata  Metadata
}

// IDs returns the selected question IDs in rank order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Questions))
	for i, s := range r.Questions {
		ids[i] = s.Question.ID
	}
	return ids
}

// Selector ranks questions from a fixed pool. It holds no per-request state
// and is safe for concurrent use.
type Selector struct {
	pool       []catalog.Question
	weights    Weights
	defaultMax int
}

// Option configures a Selector.
type Option func(*Selector)

// WithWeights overrides the scoring scales.
func WithWeights(w Weights) Option {
	return func(s *Selector) { s.weights = w }
}

// WithDefaultMax overrides the result size used when a request leaves
// MaxQuestions unset.
func WithDefaultMax(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.defaultMax = n
		}
	}
}

// New creates a selector over a copy of pool.
func New(pool []catalog.Question, opts ...Option) *Selector {
	s := &Selector{
		pool:       append([]catalog.Question(nil), pool...),
		weights:    DefaultWeights(),
		defaultMax: DefaultMaxQuestions,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Select filters, scores and ranks the pool against c.
func (s *Selector) Select(c Criteria) (*Result, error) {
	if c.MaxQuestions < 0 {
		return nil, fmt.Errorf("max questions %d: %w", c.MaxQuestions, catalog.ErrInvalidInput)
	}
	if c.TargetDifficulty != 0 && (c.TargetDifficulty < catalog.MinDifficulty || c.TargetDifficulty > catalog.MaxDifficulty) {
		return nil, fmt.Errorf("target difficulty %d: %w", c.TargetDifficulty, catalog.ErrInvalidInput)
	}
	limit := c.MaxQuestions
	if limit == 0 {
		limit = s.defaultMax
	}

	phase, _ := curriculum.PhaseFor(c.Phase)
	target := c.TargetDifficulty
	if target == 0 {
		target = curriculum.TargetForLevel(c.Level)
	}

	candidates := s.filter(c, phase)

	sc := scorer{w: s.weights, phase: phase, level: c.Level, target: target}
	ranked := make([]Scored, len(candidates))
	for i, q := range candidates {
		b := sc.score(q)
		ranked[i] = Scored{
			Question:           q,
			Score:              b.Total(),
			Breakdown:          b,
			AdjustedDifficulty: curriculum.AdjustForLevel(q.Difficulty, c.Level),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Question.ID < ranked[j].Question.ID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	res := &Result{Questions: ranked}
	res.Metadata = metadata(ranked, len(candidates), phase, target)
	res.Metadata.Reason = reason(c, phase, target, len(ranked), len(candidates))
	return res, nil
}

// filter applies the exclusion rules in order: completed questions, mastered
// categories, excluded categories, requested focus, then the phase's band on
// level-adjusted difficulty.
func (s *Selector) filter(c Criteria, phase curriculum.Phase) []catalog.Question {
	completed := make(map[string]bool, len(c.CompletedIDs))
	for _, id := range c.CompletedIDs {
		completed[id] = true
	}
	applyFocus := len(c.FocusCategories) > 0 && !phase.FocusAll()

	var out []catalog.Question
	for _, q := range s.pool {
		if completed[q.ID] {
			continue
		}
		if q.InCategory(c.MasteredCategories) {
			continue
		}
		if q.InCategory(c.ExcludeCategories) {
			continue
		}
		if applyFocus && !q.InCategory(c.FocusCategories) {
			continue
		}
		if !phase.Allows(curriculum.AdjustForLevel(q.Difficulty, c.Level)) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func metadata(selected []Scored, available int, phase curriculum.Phase, target int) Metadata {
	m := Metadata{
		TotalAvailable:       available,
		SelectedCount:        len(selected),
		CategoryDistribution: make(map[string]int),
		TopicDistribution:    make(map[string]int),
		TargetDifficulty:     target,
		Phase:                phase.Number,
	}
	if len(selected) == 0 {
		return m
	}

	var sum int
	for _, s := range selected {
		sum += s.Question.Difficulty
		m.CategoryDistribution[s.Question.CategoryID]++
		topic := UnknownTopic
		if t, ok := s.Question.Topic(); ok {
			topic = t.Category
		}
		m.TopicDistribution[topic]++
	}
	m.AverageDifficulty = float64(sum) / float64(len(selected))
	return m
}

func reason(c Criteria, phase curriculum.Phase, target, selected, available int) string {
	parts := []string{fmt.Sprintf("phase %d (%s)", phase.Number, phase.Name)}
	if c.Level != "" {
		parts = append(parts, "level "+string(c.Level))
	}
	if len(c.FocusCategories) > 0 {
		parts = append(parts, "focus "+strings.Join(c.FocusCategories, ", "))
	}
	if c.TargetDifficulty != 0 {
		parts = append(parts, fmt.Sprintf("target difficulty %d", target))
	}
	if available == 0 {
		parts = append(parts, "no questions match")
	} else {
		parts = append(parts, fmt.Sprintf("selected %d of %d", selected, available))
	}
	return strings.Join(parts, " / ")
}
