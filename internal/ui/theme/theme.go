package theme

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#2563EB") // Ledger Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F97316") // Orange
	Error     = lipgloss.Color("#E11D48") // Crimson
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Answer outcomes
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Review statuses and priority levels
var (
	NeedsReview    = lipgloss.NewStyle().Foreground(Accent)
	PriorityReview = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Mastered       = lipgloss.NewStyle().Foreground(Success)

	Critical = lipgloss.NewStyle().Foreground(Error).Bold(true)
	High     = lipgloss.NewStyle().Foreground(Warning)
	Medium   = lipgloss.NewStyle().Foreground(Accent)
	Low      = lipgloss.NewStyle().Foreground(TextDim)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Foreground(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Status returns the style for a review status name.
func Status(s string) lipgloss.Style {
	switch s {
	case "priority_review":
		return PriorityReview
	case "mastered":
		return Mastered
	default:
		return NeedsReview
	}
}

// Level returns the style for a priority level name.
func Level(l string) lipgloss.Style {
	switch l {
	case "critical":
		return Critical
	case "high":
		return High
	case "medium":
		return Medium
	default:
		return Low
	}
}

// Bar renders a width-cell progress bar filled to frac (0..1).
func Bar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac = max(0, min(1, frac))
	filled := int(frac*float64(width) + 0.5)
	return ProgressFilled.Render(strings.Repeat("█", filled)) +
		ProgressEmpty.Render(strings.Repeat("░", width-filled))
}
