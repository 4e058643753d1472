package review

import (
	"fmt"
	"time"

	"github.com/abhisek/boki/internal/catalog"
)

// Apply folds one answer into the current review state and returns the new
// state. current may be nil when the question has no item yet; it is never
// modified. On error the returned item is the zero value and the caller's
// state stays as it was.
func Apply(current *Item, ans Answer, cfg Config) (Item, Transition, error) {
	if ans.QuestionID == "" {
		return Item{}, Transition{}, fmt.Errorf("answer has no question id: %w", catalog.ErrInvalidInput)
	}
	if ans.AnsweredAt.IsZero() {
		return Item{}, Transition{}, fmt.Errorf("answer for %s has no timestamp: %w", ans.QuestionID, catalog.ErrInvalidInput)
	}

	exists := current != nil && current.Exists()
	if exists {
		if current.QuestionID != ans.QuestionID {
			return Item{}, Transition{}, fmt.Errorf("answer for %s applied to item %s: %w",
				ans.QuestionID, current.QuestionID, catalog.ErrInvalidInput)
		}
		if current.LastAnsweredAt != nil && ans.AnsweredAt.Before(*current.LastAnsweredAt) {
			return Item{}, Transition{}, fmt.Errorf("answer for %s at %s precedes last answer at %s: %w",
				ans.QuestionID, ans.AnsweredAt.Format(time.RFC3339),
				current.LastAnsweredAt.Format(time.RFC3339), catalog.ErrInvalidInput)
		}
	}

	if !exists {
		if ans.Correct {
			return Item{}, Transition{QuestionID: ans.QuestionID, Action: ActionNoChange}, nil
		}
		return create(ans, cfg)
	}

	next := current.clone()
	at := ans.AnsweredAt
	if ans.CategoryID != "" {
		next.CategoryID = ans.CategoryID
	}
	if ans.Correct {
		next.ConsecutiveCorrectCount++
	} else {
		next.IncorrectCount++
		next.ConsecutiveCorrectCount = 0
	}
	next.LastAnsweredAt = &at
	reviewed := at
	next.LastReviewedAt = &reviewed
	next.UpdatedAt = at
	next.Status = Classify(next, cfg)
	next.PriorityScore = PriorityScore(next, at, cfg)

	tr := Transition{
		QuestionID:       next.QuestionID,
		Action:           ActionUpdated,
		From:             current.Status,
		To:               next.Status,
		PreviousPriority: current.PriorityScore,
		NewPriority:      next.PriorityScore,
	}
	switch {
	case next.Status == StatusMastered && current.Status != StatusMastered:
		tr.Action = ActionMastered
	case current.Status == StatusMastered && next.Status != StatusMastered:
		tr.Action = ActionReopened
	}
	return next, tr, nil
}

func create(ans Answer, cfg Config) (Item, Transition, error) {
	at := ans.AnsweredAt
	it := Item{
		QuestionID:     ans.QuestionID,
		CategoryID:     ans.CategoryID,
		IncorrectCount: 1,
		LastAnsweredAt: &at,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	it.Status = Classify(it, cfg)
	it.PriorityScore = PriorityScore(it, at, cfg)
	return it, Transition{
		QuestionID:  it.QuestionID,
		Action:      ActionCreated,
		To:          it.Status,
		NewPriority: it.PriorityScore,
	}, nil
}
