package review

import (
	"testing"
	"time"
)

func queueIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.QuestionID
	}
	return ids
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestBuildQueue_Ordering(t *testing.T) {
	cfg := DefaultConfig()
	now := t0.Add(time.Hour)
	items := []Item{
		{QuestionID: "low", IncorrectCount: 1, Status: StatusNeedsReview, LastAnsweredAt: ptr(t0)},
		{QuestionID: "high", IncorrectCount: 3, Status: StatusPriorityReview, LastAnsweredAt: ptr(t0)},
		{QuestionID: "tie-newer", IncorrectCount: 2, Status: StatusPriorityReview, LastAnsweredAt: ptr(t0.Add(30 * time.Minute))},
		{QuestionID: "tie-older", IncorrectCount: 2, Status: StatusPriorityReview, LastAnsweredAt: ptr(t0)},
		{QuestionID: "done", IncorrectCount: 5, ConsecutiveCorrectCount: 3, Status: StatusMastered, LastAnsweredAt: ptr(t0)},
	}

	got := queueIDs(BuildQueue(items, now, Filter{}, cfg))
	want := []string{"high", "tie-older", "tie-newer", "low"}
	if !sameIDs(got, want) {
		t.Errorf("BuildQueue() = %v, want %v", got, want)
	}
}

func TestBuildQueue_SortedByScore(t *testing.T) {
	cfg := DefaultConfig()
	now := t0.Add(20 * Day)
	var items []Item
	for i := 0; i < 40; i++ {
		at := t0.Add(time.Duration(i%9) * 2 * Day)
		items = append(items, Item{
			QuestionID:              string(rune('a'+i%26)) + string(rune('a'+i/26)),
			IncorrectCount:          1 + i%6,
			ConsecutiveCorrectCount: i % 3,
			Status:                  StatusNeedsReview,
			LastAnsweredAt:          &at,
		})
	}
	q := BuildQueue(items, now, Filter{}, cfg)
	if len(q) != len(items) {
		t.Fatalf("len = %d, want %d", len(q), len(items))
	}
	for i := 1; i < len(q); i++ {
		if q[i].PriorityScore > q[i-1].PriorityScore {
			t.Fatalf("queue not sorted at %d: %d > %d", i, q[i].PriorityScore, q[i-1].PriorityScore)
		}
		if q[i].PriorityScore == q[i-1].PriorityScore && q[i].LastAnsweredAt.Before(*q[i-1].LastAnsweredAt) {
			t.Fatalf("tie at %d not ordered by oldest answer", i)
		}
	}
}

func TestBuildQueue_Filters(t *testing.T) {
	cfg := DefaultConfig()
	now := t0.Add(time.Hour)
	items := []Item{
		{QuestionID: "j1", CategoryID: "journal-entries", IncorrectCount: 1, Status: StatusNeedsReview, LastAnsweredAt: ptr(t0)},
		{QuestionID: "j2", CategoryID: "journal-entries", IncorrectCount: 7, Status: StatusPriorityReview, LastAnsweredAt: ptr(t0)},
		{QuestionID: "l1", CategoryID: "ledgers", IncorrectCount: 2, Status: StatusPriorityReview, LastAnsweredAt: ptr(now.Add(-time.Minute))},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"none", Filter{}, []string{"j2", "l1", "j1"}},
		{"category", Filter{Categories: []string{"journal-entries"}}, []string{"j2", "j1"}},
		{"min status", Filter{MinStatus: StatusPriorityReview}, []string{"j2", "l1"}},
		{"levels", Filter{Levels: []PriorityLevel{LevelHigh}}, []string{"j2"}},
		{"skip recent", Filter{AnsweredBefore: now.Add(-30 * time.Minute)}, []string{"j2", "j1"}},
		{"limit", Filter{Limit: 1}, []string{"j2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := queueIDs(BuildQueue(items, now, tt.filter, cfg))
			if !sameIDs(got, tt.want) {
				t.Errorf("BuildQueue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildQueue_ClosedMinStatusMatchesNothing(t *testing.T) {
	cfg := DefaultConfig()
	items := []Item{{QuestionID: "q", IncorrectCount: 2, Status: StatusPriorityReview, LastAnsweredAt: ptr(t0)}}
	if q := BuildQueue(items, t0, Filter{MinStatus: StatusMastered}, cfg); len(q) != 0 {
		t.Errorf("BuildQueue(mastered) = %v, want empty", queueIDs(q))
	}
	if q := BuildQueue(items, t0, Filter{MinStatus: "bogus"}, cfg); len(q) != 0 {
		t.Errorf("BuildQueue(bogus) = %v, want empty", queueIDs(q))
	}
}

func TestBuildQueue_ReclassifiesUnderConfig(t *testing.T) {
	items := []Item{
		{QuestionID: "two-wrong", IncorrectCount: 2, Status: StatusPriorityReview, LastAnsweredAt: ptr(t0)},
		{QuestionID: "two-right", IncorrectCount: 1, ConsecutiveCorrectCount: 2, Status: StatusNeedsReview, LastAnsweredAt: ptr(t0)},
	}

	cfg := DefaultConfig()
	cfg.PriorityIncorrectCount = 3
	cfg.MasteryThreshold = 2
	q := BuildQueue(items, t0.Add(time.Hour), Filter{}, cfg)
	if len(q) != 1 || q[0].QuestionID != "two-wrong" {
		t.Fatalf("BuildQueue() = %v, want [two-wrong]", queueIDs(q))
	}
	if q[0].Status != StatusNeedsReview {
		t.Errorf("Status = %q, want %q", q[0].Status, StatusNeedsReview)
	}
	if q := BuildQueue(items, t0.Add(time.Hour), Filter{MinStatus: StatusPriorityReview}, cfg); len(q) != 0 {
		t.Errorf("priority queue = %v, want empty", queueIDs(q))
	}
	if items[0].Status != StatusPriorityReview {
		t.Errorf("input Status = %q, want unchanged", items[0].Status)
	}

	st := Summarize(items, t0, cfg)
	if st.ByStatus[StatusMastered] != 1 || st.ByStatus[StatusNeedsReview] != 1 {
		t.Errorf("ByStatus = %v", st.ByStatus)
	}
}

func TestBuildQueue_DoesNotModifyInput(t *testing.T) {
	cfg := DefaultConfig()
	items := []Item{{QuestionID: "q", IncorrectCount: 2, Status: StatusPriorityReview, PriorityScore: 1, LastAnsweredAt: ptr(t0)}}
	BuildQueue(items, t0.Add(10*Day), Filter{}, cfg)
	if items[0].PriorityScore != 1 {
		t.Errorf("input PriorityScore = %d, want 1", items[0].PriorityScore)
	}
}

func TestSummarize(t *testing.T) {
	cfg := DefaultConfig()
	items := []Item{
		{QuestionID: "j1", CategoryID: "journal-entries", IncorrectCount: 7, Status: StatusPriorityReview, LastAnsweredAt: ptr(t0)},
		{QuestionID: "j2", CategoryID: "journal-entries", IncorrectCount: 1, Status: StatusNeedsReview, LastAnsweredAt: ptr(t0)},
		{QuestionID: "j3", CategoryID: "journal-entries", IncorrectCount: 1, ConsecutiveCorrectCount: 3, Status: StatusMastered},
		{QuestionID: "t1", CategoryID: "trial-balance", IncorrectCount: 1, ConsecutiveCorrectCount: 3, Status: StatusMastered},
	}
	st := Summarize(items, t0, cfg)

	if st.Total != 4 {
		t.Errorf("Total = %d, want 4", st.Total)
	}
	if st.Open() != 2 {
		t.Errorf("Open() = %d, want 2", st.Open())
	}
	if st.ByStatus[StatusMastered] != 2 {
		t.Errorf("mastered = %d, want 2", st.ByStatus[StatusMastered])
	}
	// j1: 60 + 5 bonus = 65 (high); j2: 20 + 5 = 25 (low)
	if st.ByLevel[LevelHigh] != 1 || st.ByLevel[LevelLow] != 1 {
		t.Errorf("ByLevel = %v", st.ByLevel)
	}
	if len(st.Categories) != 2 {
		t.Fatalf("len(Categories) = %d, want 2", len(st.Categories))
	}
	journal := st.Categories[0]
	if journal.CategoryID != "journal-entries" || journal.Open != 2 || journal.Mastered != 1 {
		t.Errorf("journal stats = %+v", journal)
	}
	if journal.AveragePriority != 45 {
		t.Errorf("AveragePriority = %v, want 45", journal.AveragePriority)
	}
	if journal.Recommendation() != RecommendLight {
		t.Errorf("Recommendation() = %q, want %q", journal.Recommendation(), RecommendLight)
	}
	if st.Categories[1].Recommendation() != RecommendClear {
		t.Errorf("trial-balance Recommendation() = %q, want %q", st.Categories[1].Recommendation(), RecommendClear)
	}

	weak := st.WeakAreas()
	if len(weak) != 1 || weak[0].CategoryID != "journal-entries" {
		t.Errorf("WeakAreas() = %+v", weak)
	}
}
