package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/boki/internal/review"
	"github.com/abhisek/boki/internal/ui/theme"
)

func newReviewCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "review",
		Short: "Show the review queue, most urgent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := reviewFilter(cmd)
			if err != nil {
				return err
			}

			svc, closeFn, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			queue, err := svc.ReviewQueue(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(queue) == 0 {
				fmt.Fprintln(out, theme.Mastered.Render("Review queue is empty"))
				return nil
			}

			fmt.Fprintf(out, "%-16s  %-16s  %-15s  %5s  %-8s  %5s  %s\n",
				"ID", "Category", "Status", "Score", "Level", "Wrong", "Last answered")
			fmt.Fprintln(out, strings.Repeat("─", 95))
			for _, e := range queue {
				it := e.Item
				lvl := string(review.LevelFor(it.PriorityScore))
				status := string(it.Status)
				last := "-"
				if it.LastAnsweredAt != nil {
					last = it.LastAnsweredAt.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(out, "%-16s  %-16s  %s  %5d  %s  %5d  %s\n",
					it.QuestionID, it.CategoryID,
					theme.Status(status).Render(fmt.Sprintf("%-15s", status)),
					it.PriorityScore,
					theme.Level(lvl).Render(fmt.Sprintf("%-8s", lvl)),
					it.IncorrectCount, last)
			}
			fmt.Fprintf(out, "\n%d items\n", len(queue))
			return nil
		},
	}
	c.Flags().StringSlice("category", nil, "Only show these categories or topic categories (e.g. ledgers, cash_deposit)")
	c.Flags().String("min-status", "", "Lowest status to include: needs_review or priority_review")
	c.Flags().StringSlice("level", nil, "Only show these priority levels: critical, high, medium, low")
	c.Flags().Int("limit", 0, "Maximum number of items")
	c.Flags().Duration("skip-recent", 0, "Hide items answered within this duration (e.g. 1h)")
	return c
}

func reviewFilter(cmd *cobra.Command) (review.Filter, error) {
	fl := cmd.Flags()
	var f review.Filter
	f.Categories, _ = fl.GetStringSlice("category")
	f.Limit, _ = fl.GetInt("limit")
	if f.Limit < 0 {
		return f, fmt.Errorf("--limit must not be negative")
	}

	if s, _ := fl.GetString("min-status"); s != "" {
		st := review.Status(s)
		if !st.Open() {
			return f, fmt.Errorf("invalid --min-status %q: want needs_review or priority_review", s)
		}
		f.MinStatus = st
	}

	levels, _ := fl.GetStringSlice("level")
	for _, l := range levels {
		lvl := review.PriorityLevel(strings.ToLower(strings.TrimSpace(l)))
		valid := false
		for _, known := range review.AllLevels() {
			if lvl == known {
				valid = true
				break
			}
		}
		if !valid {
			return f, fmt.Errorf("invalid --level %q", l)
		}
		f.Levels = append(f.Levels, lvl)
	}

	if d, _ := fl.GetDuration("skip-recent"); d > 0 {
		f.AnsweredBefore = time.Now().Add(-d)
	}
	return f, nil
}
