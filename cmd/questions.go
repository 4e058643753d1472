package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/boki/internal/catalog"
	"github.com/abhisek/boki/internal/selector"
)

func newQuestionsCmd() *cobra.Command {
	questionsCmd := &cobra.Command{
		Use:   "questions",
		Short: "Manage the question catalog",
	}
	questionsCmd.AddCommand(newQuestionsImportCmd(), newQuestionsListCmd())
	return questionsCmd
}

func newQuestionsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import questions from a JSON file, replacing questions with the same ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, closeFn, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := svc.ImportQuestions(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions\n", n)
			return nil
		},
	}
}

func newQuestionsListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "List questions (optionally filtered by category)",
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")

			svc, closeFn, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			qs, err := svc.Questions(cmd.Context(), category)
			if err != nil {
				return err
			}
			if len(qs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No questions found")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-16s  %-16s  %4s  %-20s  %s\n", "ID", "Category", "Diff", "Topic", "Tags")
			fmt.Fprintln(out, strings.Repeat("─", 90))
			for _, q := range qs {
				topic := selector.UnknownTopic
				if t, ok := q.Topic(); ok {
					topic = t.Category
				}
				fmt.Fprintf(out, "%-16s  %-16s  %4d  %-20s  %s\n",
					q.ID, q.CategoryID, q.Difficulty, topic,
					strings.Join(catalog.NormalizeTags(q.Tags), ", "))
			}
			fmt.Fprintf(out, "\n%d questions\n", len(qs))
			return nil
		},
	}
	c.Flags().String("category", "", "Filter by category (e.g. journal-entries)")
	return c
}
