package catalog

import (
	"context"
	"math/rand/v2"
	"slices"
	"sort"
)

// QueryOptions narrows QueryByCategory.
type QueryOptions struct {
	Difficulty int      // 0 matches any difficulty
	ExcludeIDs []string // question IDs to leave out
	Randomize  bool     // shuffle instead of ordering by ID
	Limit      int      // 0 means unlimited
}

// Accessor supplies questions to the engines. It is read-only.
type Accessor interface {
	QueryAll(ctx context.Context) ([]Question, error)
	QueryByIDs(ctx context.Context, ids []string) ([]Question, error)
	QueryByCategory(ctx context.Context, categoryID string, opts QueryOptions) ([]Question, error)
}

// Pool is an in-memory Accessor over a fixed question slice.
type Pool struct {
	questions []Question
	byID      map[string]int
	rng       *rand.Rand
}

// NewPool copies qs into a pool ordered by ID. Later duplicates of an ID
// replace earlier ones.
func NewPool(qs []Question) *Pool {
	p := &Pool{byID: make(map[string]int, len(qs))}
	for _, q := range qs {
		if i, ok := p.byID[q.ID]; ok {
			p.questions[i] = q
			continue
		}
		p.byID[q.ID] = len(p.questions)
		p.questions = append(p.questions, q)
	}
	sort.Slice(p.questions, func(i, j int) bool {
		return p.questions[i].ID < p.questions[j].ID
	})
	for i, q := range p.questions {
		p.byID[q.ID] = i
	}
	return p
}

// WithRand sets the source used for randomized queries.
func (p *Pool) WithRand(r *rand.Rand) *Pool {
	p.rng = r
	return p
}

// Len returns the number of questions in the pool.
func (p *Pool) Len() int {
	return len(p.questions)
}

func (p *Pool) QueryAll(_ context.Context) ([]Question, error) {
	return slices.Clone(p.questions), nil
}

func (p *Pool) QueryByIDs(_ context.Context, ids []string) ([]Question, error) {
	var out []Question
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		i, ok := p.byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p.questions[i])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *Pool) QueryByCategory(_ context.Context, categoryID string, opts QueryOptions) ([]Question, error) {
	excluded := make(map[string]bool, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		excluded[id] = true
	}

	var out []Question
	for _, q := range p.questions {
		if q.CategoryID != categoryID || excluded[q.ID] {
			continue
		}
		if opts.Difficulty != 0 && q.Difficulty != opts.Difficulty {
			continue
		}
		out = append(out, q)
	}

	if opts.Randomize {
		shuffle := rand.Shuffle
		if p.rng != nil {
			shuffle = p.rng.Shuffle
		}
		shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}
