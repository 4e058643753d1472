package selector

import (
	"github.com/abhisek/boki/internal/catalog"
	"github.com/abhisek/boki/internal/curriculum"
)

// Weights are the per-factor point scales of the selection score.
type Weights struct {
	// Phase is indexed by |recommended phase - current phase|; larger gaps
	// score the last entry.
	Phase []int

	// Difficulty is indexed by |adjusted difficulty - target|.
	Difficulty []int

	CategoryFocus int // question in the phase's focus set
	CategoryAll   int // phase focuses on everything
	Novelty       int

	// OrderBands award Points to learning orders up to MaxOrder; orders past
	// the last band score OrderFloor.
	OrderBands []OrderBand
	OrderFloor int
}

// OrderBand is one step of the learning-order scale.
type OrderBand struct {
	MaxOrder int
	Points   int
}

// DefaultWeights returns the standard scales. The maxima sum to 100.
func DefaultWeights() Weights {
	return Weights{
		Phase:         []int{30, 20, 10, 0},
		Difficulty:    []int{25, 15, 5, 0},
		CategoryFocus: 20,
		CategoryAll:   10,
		Novelty:       15,
		OrderBands: []OrderBand{
			{MaxOrder: 5, Points: 10},
			{MaxOrder: 10, Points: 8},
			{MaxOrder: 15, Points: 5},
			{MaxOrder: 20, Points: 3},
		},
		OrderFloor: 1,
	}
}

// Breakdown is the per-factor contribution to a question's score.
type Breakdown struct {
	Phase      int `json:"phase"`
	Difficulty int `json:"difficulty"`
	Category   int `json:"category"`
	Novelty    int `json:"novelty"`
	Order      int `json:"order"`
}

// Total sums the factors.
func (b Breakdown) Total() int {
	return b.Phase + b.Difficulty + b.Category + b.Novelty + b.Order
}

// scorer evaluates questions against one selection request.
type scorer struct {
	w      Weights
	phase  curriculum.Phase
	level  catalog.Level
	target int
}

func (s scorer) score(q catalog.Question) Breakdown {
	adjusted := curriculum.AdjustForLevel(q.Difficulty, s.level)
	return Breakdown{
		Phase:      step(s.w.Phase, abs(curriculum.RecommendedPhase(q.Difficulty)-s.phase.Number)),
		Difficulty: step(s.w.Difficulty, abs(adjusted-s.target)),
		Category:   s.category(q),
		Novelty:    s.w.Novelty,
		Order:      s.order(q),
	}
}

func (s scorer) category(q catalog.Question) int {
	switch {
	case s.phase.FocusAll():
		return s.w.CategoryAll
	case s.phase.Focuses(q):
		return s.w.CategoryFocus
	default:
		return 0
	}
}

func (s scorer) order(q catalog.Question) int {
	order := curriculum.UnrankedOrder
	if t, ok := q.Topic(); ok {
		order = curriculum.LearningOrder(t)
	}
	for _, b := range s.w.OrderBands {
		if order <= b.MaxOrder {
			return b.Points
		}
	}
	return s.w.OrderFloor
}

// step returns scale[d], or the last entry when d runs past the scale.
func step(scale []int, d int) int {
	if len(scale) == 0 {
		return 0
	}
	if d >= len(scale) {
		return scale[len(scale)-1]
	}
	return scale[d]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
