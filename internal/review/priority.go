package review

import (
	"math"
	"time"
)

// PriorityScore computes how urgently an item needs review at now.
//
// The base grows with log2(1+incorrect), so early mistakes weigh most. A
// recency boost grows as the spaced-review windows elapse, and the category
// bonus is added on top. The sum is damped linearly by the consecutive
// correct run, reaching zero at the mastery threshold.
func PriorityScore(it Item, now time.Time, cfg Config) int {
	if it.IncorrectCount <= 0 {
		return 0
	}

	base := cfg.IncorrectWeight * math.Log2(1+float64(it.IncorrectCount))
	raw := base + recencyBoost(it.ElapsedSinceAnswer(now), cfg) + cfg.CategoryBonus[it.CategoryID]

	damp := 1.0
	if cfg.MasteryThreshold > 0 {
		damp = 1 - float64(it.ConsecutiveCorrectCount)/float64(cfg.MasteryThreshold)
	}
	if damp <= 0 {
		return 0
	}

	score := int(math.Round(raw * damp))
	return max(0, min(cfg.MaxPriorityScore, score))
}

// recencyBoost rewards items left alone past the spaced-review windows.
func recencyBoost(elapsed time.Duration, cfg Config) float64 {
	var passed int
	var nearest time.Duration
	for _, w := range cfg.RecencyWindows {
		if elapsed < w {
			break
		}
		passed++
		nearest = w
	}
	if passed == 0 {
		return 0
	}

	overdueDays := math.Floor(float64(elapsed-nearest) / float64(Day))
	boost := float64(passed)*cfg.WindowBoost + overdueDays*cfg.OverdueBoostPerDay
	return math.Min(boost, cfg.MaxRecencyBoost)
}

// Classify derives the status from the counters.
func Classify(it Item, cfg Config) Status {
	if it.ConsecutiveCorrectCount >= cfg.MasteryThreshold {
		return StatusMastered
	}
	if it.IncorrectCount >= cfg.PriorityIncorrectCount {
		if cfg.PriorityDemoteStreak > 0 && it.ConsecutiveCorrectCount >= cfg.PriorityDemoteStreak {
			return StatusNeedsReview
		}
		return StatusPriorityReview
	}
	return StatusNeedsReview
}

// PriorityLevel buckets priority scores for display and filtering.
type PriorityLevel string

const (
	LevelCritical PriorityLevel = "critical"
	LevelHigh     PriorityLevel = "high"
	LevelMedium   PriorityLevel = "medium"
	LevelLow      PriorityLevel = "low"
)

// AllLevels returns the priority levels from most to least urgent.
func AllLevels() []PriorityLevel {
	return []PriorityLevel{LevelCritical, LevelHigh, LevelMedium, LevelLow}
}

// LevelFor returns the bucket a score falls in.
func LevelFor(score int) PriorityLevel {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	default:
		return LevelLow
	}
}
