package review

import (
	"fmt"
	"time"

	"github.com/abhisek/boki/internal/catalog"
)

// Day is the unit the recency boost counts in.
const Day = 24 * time.Hour

// Config holds the review policy. Every field is a tunable knob.
type Config struct {
	// MasteryThreshold is the run of consecutive correct answers that
	// masters a question.
	MasteryThreshold int

	// PriorityIncorrectCount is the incorrect count that raises a question
	// to priority_review.
	PriorityIncorrectCount int

	// PriorityDemoteStreak drops a priority_review question back to
	// needs_review after this many consecutive correct answers, before
	// mastery. Zero disables demotion.
	PriorityDemoteStreak int

	// IncorrectWeight scales the log2(1+incorrect) base score.
	IncorrectWeight float64

	// RecencyWindows are the spaced-review intervals, ascending.
	RecencyWindows []time.Duration

	// WindowBoost is added per window elapsed since the last answer.
	WindowBoost float64

	// OverdueBoostPerDay is added per whole day past the latest elapsed window.
	OverdueBoostPerDay float64

	// MaxRecencyBoost caps the recency contribution.
	MaxRecencyBoost float64

	// CategoryBonus adds a fixed amount for items in a category.
	CategoryBonus map[string]float64

	// MaxPriorityScore caps the final score.
	MaxPriorityScore int
}

// DefaultConfig returns the standard review policy.
func DefaultConfig() Config {
	return Config{
		MasteryThreshold:       3,
		PriorityIncorrectCount: 2,
		PriorityDemoteStreak:   0,
		IncorrectWeight:        20,
		RecencyWindows:         []time.Duration{1 * Day, 3 * Day, 7 * Day},
		WindowBoost:            5,
		OverdueBoostPerDay:     1,
		MaxRecencyBoost:        25,
		CategoryBonus: map[string]float64{
			string(catalog.CategoryJournal):      5,
			string(catalog.CategoryLedgers):      3,
			string(catalog.CategoryTrialBalance): 8,
		},
		MaxPriorityScore: 100,
	}
}

// Validate checks that the knobs describe a usable policy.
func (c Config) Validate() error {
	if c.MasteryThreshold <= 0 {
		return fmt.Errorf("mastery threshold must be positive, got %d", c.MasteryThreshold)
	}
	if c.PriorityIncorrectCount <= 0 {
		return fmt.Errorf("priority incorrect count must be positive, got %d", c.PriorityIncorrectCount)
	}
	if c.PriorityDemoteStreak < 0 {
		return fmt.Errorf("priority demote streak must not be negative, got %d", c.PriorityDemoteStreak)
	}
	if c.IncorrectWeight <= 0 {
		return fmt.Errorf("incorrect weight must be positive, got %v", c.IncorrectWeight)
	}
	if c.WindowBoost < 0 || c.OverdueBoostPerDay < 0 || c.MaxRecencyBoost < 0 {
		return fmt.Errorf("recency boosts must not be negative")
	}
	for i, w := range c.RecencyWindows {
		if w <= 0 {
			return fmt.Errorf("recency window %d must be positive, got %s", i, w)
		}
		if i > 0 && w <= c.RecencyWindows[i-1] {
			return fmt.Errorf("recency windows must be ascending, got %s after %s", w, c.RecencyWindows[i-1])
		}
	}
	for cat, b := range c.CategoryBonus {
		if b < 0 {
			return fmt.Errorf("category bonus for %s must not be negative, got %v", cat, b)
		}
	}
	if c.MaxPriorityScore <= 0 {
		return fmt.Errorf("max priority score must be positive, got %d", c.MaxPriorityScore)
	}
	return nil
}
