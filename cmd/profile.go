package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/boki/internal/study"
	"github.com/abhisek/boki/internal/ui/theme"
)

func newProfileCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the study profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("level")
			master, _ := cmd.Flags().GetStringSlice("master")

			svc, closeFn, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			prof, err := svc.Profile(ctx)
			if err != nil {
				return err
			}
			if level != "" {
				if prof, err = svc.SetLevel(ctx, level); err != nil {
					return err
				}
			}
			for _, id := range master {
				if prof, err = svc.MasterCategory(ctx, id); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), theme.Card.Render(renderProfile(prof)))
			return nil
		},
	}
	c.Flags().String("level", "", "Set the level: beginner, intermediate or advanced")
	c.Flags().StringSlice("master", nil, "Mark categories as mastered")
	return c
}

func renderProfile(p study.Profile) string {
	ph := p.CurrentPhase()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", theme.Title.Render("Profile"))
	fmt.Fprintf(&b, "Level:  %s\n", p.Level)
	fmt.Fprintf(&b, "Phase:  %d %s (difficulty %d-%d)\n", ph.Number, ph.Name, ph.MinDifficulty, ph.MaxDifficulty)
	if !p.PhaseStartedAt.IsZero() {
		fmt.Fprintf(&b, "Since:  %s\n", p.PhaseStartedAt.Local().Format("2006-01-02"))
	}
	mastered := "none"
	if len(p.MasteredCategories) > 0 {
		mastered = strings.Join(p.MasteredCategories, ", ")
	}
	fmt.Fprintf(&b, "Mastered: %s", mastered)
	if !p.Saved {
		fmt.Fprintf(&b, "\n%s", theme.Hint.Render("(defaults, not saved yet)"))
	}
	return b.String()
}
