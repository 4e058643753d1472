package review

import (
	"sort"
	"time"
)

// Recommendation is the suggested treatment of a weak area.
type Recommendation string

const (
	RecommendFocus  Recommendation = "focus"  // average priority >= 70
	RecommendSteady Recommendation = "steady" // average priority >= 50
	RecommendLight  Recommendation = "light"
	RecommendClear  Recommendation = "clear" // nothing open
)

// CategoryStats summarizes the items of one category.
type CategoryStats struct {
	CategoryID      string
	Total           int
	Open            int
	Mastered        int
	AveragePriority float64 // over open items
}

// Recommendation suggests how much review the category needs.
func (c CategoryStats) Recommendation() Recommendation {
	switch {
	case c.Open == 0:
		return RecommendClear
	case c.AveragePriority >= 70:
		return RecommendFocus
	case c.AveragePriority >= 50:
		return RecommendSteady
	default:
		return RecommendLight
	}
}

// Stats summarizes a set of review items.
type Stats struct {
	Total      int
	ByStatus   map[Status]int
	ByLevel    map[PriorityLevel]int // open items only
	Categories []CategoryStats       // ordered by category ID
}

// Open returns the number of items still in the queue.
func (s Stats) Open() int {
	return s.ByStatus[StatusNeedsReview] + s.ByStatus[StatusPriorityReview]
}

// WeakAreas returns categories with open items, most urgent first.
func (s Stats) WeakAreas() []CategoryStats {
	var out []CategoryStats
	for _, c := range s.Categories {
		if c.Open > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AveragePriority != out[j].AveragePriority {
			return out[i].AveragePriority > out[j].AveragePriority
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// Summarize reclassifies and rescores items at now and aggregates them.
func Summarize(items []Item, now time.Time, cfg Config) Stats {
	st := Stats{
		ByStatus: make(map[Status]int),
		ByLevel:  make(map[PriorityLevel]int),
	}
	byCat := make(map[string]*CategoryStats)
	sums := make(map[string]int)

	for _, it := range items {
		if it.Status.Valid() {
			it.Status = Classify(it, cfg)
		}
		st.Total++
		st.ByStatus[it.Status]++

		cs, ok := byCat[it.CategoryID]
		if !ok {
			cs = &CategoryStats{CategoryID: it.CategoryID}
			byCat[it.CategoryID] = cs
		}
		cs.Total++
		if !it.Status.Open() {
			cs.Mastered++
			continue
		}
		score := PriorityScore(it, now, cfg)
		st.ByLevel[LevelFor(score)]++
		cs.Open++
		sums[it.CategoryID] += score
	}

	for id, cs := range byCat {
		if cs.Open > 0 {
			cs.AveragePriority = float64(sums[id]) / float64(cs.Open)
		}
		st.Categories = append(st.Categories, *cs)
	}
	sort.Slice(st.Categories, func(i, j int) bool {
		return st.Categories[i].CategoryID < st.Categories[j].CategoryID
	})
	return st
}
