package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/boki/internal/study"
	"github.com/abhisek/boki/internal/ui/theme"
)

func newNextCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "next",
		Short: "Pick the next questions to practice",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			opts := study.NextOptions{}
			opts.Max, _ = f.GetInt("max")
			opts.Focus, _ = f.GetStringSlice("focus")
			opts.Exclude, _ = f.GetStringSlice("exclude")
			opts.TargetDifficulty, _ = f.GetInt("target")
			opts.Adaptive, _ = f.GetBool("adaptive")

			svc, closeFn, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.Next(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, theme.Hint.Render(res.Metadata.Reason))
			if len(res.Questions) == 0 {
				fmt.Fprintln(out, "Nothing left to practice. Try `boki review` or import more questions.")
				return nil
			}

			fmt.Fprintf(out, "\n%3s  %-16s  %-16s  %4s  %5s  %s\n", "#", "ID", "Category", "Diff", "Score", "Question")
			fmt.Fprintln(out, strings.Repeat("─", 90))
			for i, s := range res.Questions {
				fmt.Fprintf(out, "%3d  %-16s  %-16s  %4d  %5d  %s\n",
					i+1, s.Question.ID, s.Question.CategoryID, s.AdjustedDifficulty, s.Score,
					truncate(s.Question.Text, 40))
			}
			fmt.Fprintf(out, "\naverage difficulty %.1f, target %d\n",
				res.Metadata.AverageDifficulty, res.Metadata.TargetDifficulty)
			return nil
		},
	}
	c.Flags().Int("max", 0, "Maximum number of questions (default from config)")
	c.Flags().StringSlice("focus", nil, "Only pick from these categories")
	c.Flags().StringSlice("exclude", nil, "Never pick from these categories")
	c.Flags().Int("target", 0, "Target difficulty 1-5 (default from level)")
	c.Flags().Bool("adaptive", false, "Adjust the target difficulty from recent performance")
	return c
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
