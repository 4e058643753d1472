package review

import (
	"sort"
	"time"
)

// Engine keeps review items in memory for a single study session. It is not
// safe for concurrent use; persistent callers use Apply against their store
// instead.
type Engine struct {
	cfg   Config
	items map[string]Item
}

// NewEngine creates an engine seeded with items.
func NewEngine(items []Item, cfg Config) *Engine {
	e := &Engine{cfg: cfg, items: make(map[string]Item, len(items))}
	for _, it := range items {
		if it.Exists() {
			e.items[it.QuestionID] = it.clone()
		}
	}
	return e
}

// RecordAnswer applies an answer and stores the result.
func (e *Engine) RecordAnswer(ans Answer) (Transition, error) {
	var current *Item
	if it, ok := e.items[ans.QuestionID]; ok {
		current = &it
	}
	next, tr, err := Apply(current, ans, e.cfg)
	if err != nil {
		return Transition{}, err
	}
	if tr.Changed() {
		e.items[next.QuestionID] = next
	}
	return tr, nil
}

// Item returns the item for questionID.
func (e *Engine) Item(questionID string) (Item, bool) {
	it, ok := e.items[questionID]
	if !ok {
		return Item{}, false
	}
	return it.clone(), true
}

// Items returns all items ordered by question ID.
func (e *Engine) Items() []Item {
	out := make([]Item, 0, len(e.items))
	for _, it := range e.items {
		out = append(out, it.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

// Queue builds the review queue over the engine's items.
func (e *Engine) Queue(now time.Time, f Filter) []Item {
	return BuildQueue(e.Items(), now, f, e.cfg)
}
