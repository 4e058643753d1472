package curriculum

import (
	"slices"

	"github.com/abhisek/boki/internal/catalog"
)

// FocusAll in a phase's focus set means every category is in focus.
const FocusAll = "all"

// Phase is one stage of the study plan.
type Phase struct {
	Number          int
	Name            string
	Description     string
	FocusCategories []string
	RequiredMastery float64 // correct rate needed to move on, 0..1
	MinDifficulty   int
	MaxDifficulty   int
	TargetDays      int
}

// FocusAll reports whether the phase focuses on every category.
func (p Phase) FocusAll() bool {
	return slices.Contains(p.FocusCategories, FocusAll)
}

// Focuses reports whether q falls in the phase's focus set.
func (p Phase) Focuses(q catalog.Question) bool {
	return q.InCategory(p.FocusCategories)
}

// Allows reports whether difficulty lies in the phase's band.
func (p Phase) Allows(difficulty int) bool {
	return difficulty >= p.MinDifficulty && difficulty <= p.MaxDifficulty
}

// DefaultPhases is the fixed four-phase plan.
var DefaultPhases = []Phase{
	{
		Number:          1,
		Name:            "Foundations",
		Description:     "Cash, deposits and basic merchandise entries",
		FocusCategories: []string{"cash_deposit", "sales_purchase"},
		RequiredMastery: 0.80,
		MinDifficulty:   1,
		MaxDifficulty:   2,
		TargetDays:      14,
	},
	{
		Number:          2,
		Name:            "Applied transactions",
		Description:     "Receivables, payables, fixed assets and payroll",
		FocusCategories: []string{"receivable_payable", "fixed_asset", "salary_tax"},
		RequiredMastery: 0.75,
		MinDifficulty:   2,
		MaxDifficulty:   3,
		TargetDays:      21,
	},
	{
		Number:          3,
		Name:            "Closing preparation",
		Description:     "Year-end adjustments, ledgers and trial balances",
		FocusCategories: []string{"adjustment", string(catalog.CategoryLedgers), string(catalog.CategoryTrialBalance)},
		RequiredMastery: 0.85,
		MinDifficulty:   3,
		MaxDifficulty:   4,
		TargetDays:      14,
	},
	{
		Number:          4,
		Name:            "Comprehensive drills",
		Description:     "Mixed exam-style practice across every area",
		FocusCategories: []string{FocusAll},
		RequiredMastery: 0.70,
		MinDifficulty:   3,
		MaxDifficulty:   5,
		TargetDays:      7,
	},
}

// PhaseFor returns phase n. Unknown numbers fall back to the first phase
// with ok=false.
func PhaseFor(n int) (Phase, bool) {
	for _, p := range DefaultPhases {
		if p.Number == n {
			return p, true
		}
	}
	return DefaultPhases[0], false
}

// RecommendedPhase maps a raw difficulty to the phase it is written for.
func RecommendedPhase(difficulty int) int {
	switch difficulty {
	case 1, 2:
		return 1
	case 3:
		return 2
	case 4:
		return 3
	case 5:
		return 4
	default:
		return 1
	}
}

// AdjustForLevel shifts difficulty by the learner's level and clamps it to
// the valid range.
func AdjustForLevel(difficulty int, level catalog.Level) int {
	switch level {
	case catalog.LevelBeginner:
		difficulty--
	case catalog.LevelAdvanced:
		difficulty++
	}
	return Clamp(difficulty)
}

// TargetForLevel is the difficulty a learner at level is aimed at when no
// explicit target is given.
func TargetForLevel(level catalog.Level) int {
	switch level {
	case catalog.LevelBeginner:
		return 2
	case catalog.LevelAdvanced:
		return 4
	default:
		return 3
	}
}

// Clamp bounds d to [MinDifficulty, MaxDifficulty].
func Clamp(d int) int {
	return max(catalog.MinDifficulty, min(catalog.MaxDifficulty, d))
}

// PathFor returns the phases a learner at level works through. Experienced
// learners skip the early phases.
func PathFor(level catalog.Level) []Phase {
	switch level {
	case catalog.LevelIntermediate:
		return slices.Clone(DefaultPhases[1:])
	case catalog.LevelAdvanced:
		return slices.Clone(DefaultPhases[2:])
	default:
		return slices.Clone(DefaultPhases)
	}
}

// StartingPhase is the first phase on level's path.
func StartingPhase(level catalog.Level) int {
	return PathFor(level)[0].Number
}

// ShouldAdvance reports whether correctRate meets the phase's mastery bar.
func ShouldAdvance(p Phase, correctRate float64) bool {
	return correctRate >= p.RequiredMastery
}

// NextPhase returns the phase after n, or n itself when it is the last.
func NextPhase(n int) int {
	last := DefaultPhases[len(DefaultPhases)-1].Number
	if n >= last {
		return last
	}
	if n < DefaultPhases[0].Number {
		return DefaultPhases[0].Number
	}
	return n + 1
}
