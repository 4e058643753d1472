package review

import "time"

// Status is the review tier of a question.
type Status string

const (
	StatusNeedsReview    Status = "needs_review"
	StatusPriorityReview Status = "priority_review"
	StatusMastered       Status = "mastered"
)

// AllStatuses returns every status in ascending urgency, mastered last.
func AllStatuses() []Status {
	return []Status{StatusNeedsReview, StatusPriorityReview, StatusMastered}
}

// Rank orders the open tiers: needs_review < priority_review. Mastered and
// unknown statuses rank below both.
func (s Status) Rank() int {
	switch s {
	case StatusNeedsReview:
		return 1
	case StatusPriorityReview:
		return 2
	default:
		return 0
	}
}

// Open reports whether items in this status belong in the review queue.
func (s Status) Open() bool {
	return s.Rank() > 0
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNeedsReview, StatusPriorityReview, StatusMastered:
		return true
	}
	return false
}

// Item is the review state of one question. A question with no Item has
// never been answered wrong.
type Item struct {
	QuestionID              string
	CategoryID              string
	IncorrectCount          int
	ConsecutiveCorrectCount int
	Status                  Status
	PriorityScore           int
	LastAnsweredAt          *time.Time
	LastReviewedAt          *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Exists reports whether the item has been created.
func (it Item) Exists() bool {
	return it.QuestionID != ""
}

// ElapsedSinceAnswer returns how long ago the question was last answered.
// Never-answered items and future timestamps yield zero.
func (it Item) ElapsedSinceAnswer(now time.Time) time.Duration {
	if it.LastAnsweredAt == nil {
		return 0
	}
	d := now.Sub(*it.LastAnsweredAt)
	if d < 0 {
		return 0
	}
	return d
}

// clone copies the item including its time pointers.
func (it Item) clone() Item {
	out := it
	if it.LastAnsweredAt != nil {
		t := *it.LastAnsweredAt
		out.LastAnsweredAt = &t
	}
	if it.LastReviewedAt != nil {
		t := *it.LastReviewedAt
		out.LastReviewedAt = &t
	}
	return out
}

// Answer is a single answer event.
type Answer struct {
	QuestionID string
	CategoryID string
	Correct    bool
	AnsweredAt time.Time
}

// Action describes what an answer did to the review state.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionMastered Action = "mastered"
	ActionReopened Action = "reopened"
	ActionNoChange Action = "no_change"
)

// Transition records the effect of one answer.
type Transition struct {
	QuestionID       string
	Action           Action
	From             Status // empty when the item was created
	To               Status // empty when nothing exists
	PreviousPriority int
	NewPriority      int
}

// Changed reports whether the state needs persisting.
func (t Transition) Changed() bool {
	return t.Action != ActionNoChange
}
