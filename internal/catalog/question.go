package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput reports a malformed argument to one of the engines.
// Callers wrap it with context and test with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Difficulty bounds shared by every question.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Category identifies a top-level subject area.
type Category string

const (
	CategoryJournal      Category = "journal-entries"
	CategoryLedgers      Category = "ledgers"
	CategoryTrialBalance Category = "trial-balance"
)

// AllCategories returns the top-level categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryJournal,
		CategoryLedgers,
		CategoryTrialBalance,
	}
}

// CategoryDisplayName returns a human-readable name for a category.
func CategoryDisplayName(c Category) string {
	switch c {
	case CategoryJournal:
		return "Journal Entries"
	case CategoryLedgers:
		return "Ledgers"
	case CategoryTrialBalance:
		return "Trial Balance"
	default:
		return string(c)
	}
}

// IsKnownCategory reports whether id names a top-level category.
func IsKnownCategory(id string) bool {
	for _, c := range AllCategories() {
		if string(c) == id {
			return true
		}
	}
	return false
}

// Question is a single practice item. Engines only read it.
type Question struct {
	ID             string          `json:"id"`
	CategoryID     string          `json:"category_id"`
	Difficulty     int             `json:"difficulty"`
	Tags           []string        `json:"tags,omitempty"`
	Text           string          `json:"question_text,omitempty"`
	AnswerTemplate json.RawMessage `json:"answer_template,omitempty"`
	Explanation    string          `json:"explanation,omitempty"`
}

// Validate checks the fields every engine relies on.
func (q Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("question id is empty: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(q.CategoryID) == "" {
		return fmt.Errorf("question %s: category is empty: %w", q.ID, ErrInvalidInput)
	}
	if q.Difficulty < MinDifficulty || q.Difficulty > MaxDifficulty {
		return fmt.Errorf("question %s: difficulty %d out of range [%d,%d]: %w",
			q.ID, q.Difficulty, MinDifficulty, MaxDifficulty, ErrInvalidInput)
	}
	return nil
}

// Topic resolves the strategy topic of the question from its tags.
func (q Question) Topic() (Topic, bool) {
	return TopicFor(q.Tags)
}

// InCategory reports whether the question belongs to any of ids, matching
// either the top-level category or the topic category derived from tags.
func (q Question) InCategory(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	topic, hasTopic := q.Topic()
	for _, id := range ids {
		if id == q.CategoryID {
			return true
		}
		if hasTopic && id == topic.Category {
			return true
		}
	}
	return false
}

// Level is the learner's self-reported experience.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel converts s to a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelBeginner:
		return LevelBeginner, nil
	case LevelIntermediate:
		return LevelIntermediate, nil
	case LevelAdvanced:
		return LevelAdvanced, nil
	}
	return "", fmt.Errorf("unknown level %q: %w", s, ErrInvalidInput)
}
