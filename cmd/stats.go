package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/boki/internal/review"
	"github.com/abhisek/boki/internal/study"
	"github.com/abhisek/boki/internal/ui/theme"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			counts, err := svc.Catalog(ctx)
			if err != nil {
				return err
			}
			st, err := svc.Stats(ctx)
			if err != nil {
				return err
			}
			perf, err := svc.Performance(ctx)
			if err != nil {
				return err
			}
			prof, err := svc.Profile(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, theme.Title.Render("Boki stats"))

			printPhase(out, prof, perf.CorrectRate)

			fmt.Fprintln(out, theme.Heading.Render("\nQuestions"))
			total := 0
			for _, c := range counts {
				fmt.Fprintf(out, "  %-20s %4d\n", c.CategoryID, c.Count)
				total += c.Count
			}
			fmt.Fprintf(out, "  %-20s %4d\n", "total", total)

			fmt.Fprintln(out, theme.Heading.Render("\nReview"))
			for _, s := range review.AllStatuses() {
				name := string(s)
				fmt.Fprintf(out, "  %s %4d\n", theme.Status(name).Render(fmt.Sprintf("%-20s", name)), st.ByStatus[s])
			}
			if st.Open() > 0 {
				var parts []string
				for _, l := range review.AllLevels() {
					name := string(l)
					parts = append(parts, theme.Level(name).Render(fmt.Sprintf("%s %d", name, st.ByLevel[l])))
				}
				fmt.Fprintf(out, "  open by level: %s\n", strings.Join(parts, "  "))
			}

			if weak := st.WeakAreas(); len(weak) > 0 {
				fmt.Fprintln(out, theme.Heading.Render("\nWeak areas"))
				for _, c := range weak {
					fmt.Fprintf(out, "  %-20s %3d open  avg %5.1f  %s\n",
						c.CategoryID, c.Open, c.AveragePriority, c.Recommendation())
				}
			}

			fmt.Fprintln(out, theme.Heading.Render("\nRecent performance"))
			fmt.Fprintf(out, "  correct %3.0f%%  avg time %s  streak %d\n",
				perf.CorrectRate*100, perf.AverageTime.Round(time.Second), perf.StreakCount)
			return nil
		},
	}
}

func printPhase(out io.Writer, prof study.Profile, rate float64) {
	ph := prof.CurrentPhase()
	fmt.Fprintf(out, "%s level, phase %d: %s\n", prof.Level, ph.Number, ph.Name)
	frac := 0.0
	if ph.RequiredMastery > 0 {
		frac = rate / ph.RequiredMastery
	}
	fmt.Fprintf(out, "  %s %3.0f%% of %.0f%% needed\n",
		theme.Bar(frac, 30), rate*100, ph.RequiredMastery*100)
}
