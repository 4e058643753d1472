package review

import (
	"slices"
	"sort"
	"time"
)

// Filter narrows the review queue. Zero values mean no restriction.
// A MinStatus that is not an open tier, such as mastered, matches nothing.
type Filter struct {
	Categories     []string
	MinStatus      Status          // lowest tier to include, e.g. priority_review
	Levels         []PriorityLevel // keep only these priority levels
	AnsweredBefore time.Time       // drop items answered at or after this time
	Limit          int
}

// BuildQueue reclassifies and rescores items at now under cfg and returns
// the open ones in review order: highest priority first, then the
// longest-unanswered, then by question ID. Mastered items never appear.
// The input is not modified.
func BuildQueue(items []Item, now time.Time, f Filter, cfg Config) []Item {
	minRank := StatusNeedsReview.Rank()
	if f.MinStatus != "" {
		if !f.MinStatus.Open() {
			return nil
		}
		minRank = f.MinStatus.Rank()
	}

	var queue []Item
	for _, it := range items {
		if len(f.Categories) > 0 && !slices.Contains(f.Categories, it.CategoryID) {
			continue
		}
		if !f.AnsweredBefore.IsZero() && it.LastAnsweredAt != nil && !it.LastAnsweredAt.Before(f.AnsweredBefore) {
			continue
		}
		scored := it.clone()
		if scored.Status.Valid() {
			scored.Status = Classify(scored, cfg)
		}
		if !scored.Status.Open() || scored.Status.Rank() < minRank {
			continue
		}
		scored.PriorityScore = PriorityScore(scored, now, cfg)
		if len(f.Levels) > 0 && !slices.Contains(f.Levels, LevelFor(scored.PriorityScore)) {
			continue
		}
		queue = append(queue, scored)
	}

	sort.SliceStable(queue, func(i, j int) bool {
		a, b := queue[i], queue[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if !sameTime(a.LastAnsweredAt, b.LastAnsweredAt) {
			return answeredEarlier(a.LastAnsweredAt, b.LastAnsweredAt)
		}
		return a.QuestionID < b.QuestionID
	})

	if f.Limit > 0 && len(queue) > f.Limit {
		queue = queue[:f.Limit]
	}
	return queue
}

// answeredEarlier orders never-answered items first.
func answeredEarlier(a, b *time.Time) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
