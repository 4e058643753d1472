package selector

import (
	"time"

	"github.com/abhisek/boki/internal/curriculum"
)

// Adaptive thresholds.
const (
	RaiseCorrectRate = 0.8 // raise when the correct rate is above this
	RaiseMinStreak   = 3   // and the current streak is above this
	LowerCorrectRate = 0.5 // lower when the correct rate is below this
)

// Performance summarizes a learner's recent answers.
type Performance struct {
	CorrectRate float64 // 0..1
	AverageTime time.Duration
	StreakCount int // current run of correct answers
}

// AdjustTarget returns the target difficulty for c given perf. A strong run
// raises the base by one, a weak correct rate lowers it by one, and anything
// else leaves c.TargetDifficulty as it was (0 stays unset). The base is the
// explicit target or, when unset, the level's default.
func AdjustTarget(perf Performance, c Criteria) int {
	base := c.TargetDifficulty
	if base == 0 {
		base = curriculum.TargetForLevel(c.Level)
	}
	switch {
	case perf.CorrectRate > RaiseCorrectRate && perf.StreakCount > RaiseMinStreak:
		return curriculum.Clamp(base + 1)
	case perf.CorrectRate < LowerCorrectRate:
		return curriculum.Clamp(base - 1)
	default:
		return c.TargetDifficulty
	}
}

// SelectAdaptive adjusts the target difficulty from perf and delegates to
// Select. The caller's criteria are not modified.
func (s *Selector) SelectAdaptive(perf Performance, c Criteria) (*Result, error) {
	c.TargetDifficulty = AdjustTarget(perf, c)
	return s.Select(c)
}
