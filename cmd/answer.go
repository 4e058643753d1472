package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/boki/internal/review"
	"github.com/abhisek/boki/internal/store"
	"github.com/abhisek/boki/internal/study"
	"github.com/abhisek/boki/internal/ui/theme"
)

func newAnswerCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "answer <question-id>",
		Short: "Record an answer to a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			correct, _ := f.GetBool("correct")
			spent, _ := f.GetDuration("time")
			session, _ := f.GetString("session")
			mode := store.ModePractice
			if asReview, _ := f.GetBool("review"); asReview {
				mode = store.ModeReview
			}

			svc, closeFn, err := openService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			tr, err := svc.RecordAnswer(ctx, study.AnswerInput{
				QuestionID: args[0],
				Correct:    correct,
				TimeSpent:  spent,
				SessionID:  session,
				Mode:       mode,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if correct {
				fmt.Fprint(out, theme.Correct.Render("Correct"))
			} else {
				fmt.Fprint(out, theme.Incorrect.Render("Incorrect"))
			}
			fmt.Fprintf(out, "  %s\n", describeTransition(tr))

			prog, err := svc.CheckProgress(ctx)
			if err != nil {
				return err
			}
			if prog.Advanced {
				fmt.Fprintf(out, "%s phase %d complete (%.0f%% correct), moving to phase %d\n",
					theme.Title.Render("Level up!"), prog.Phase.Number, prog.CorrectRate*100, prog.NextPhase)
			}
			return nil
		},
	}
	c.Flags().Bool("correct", false, "The answer was correct")
	c.Flags().Bool("wrong", false, "The answer was wrong")
	c.Flags().Duration("time", 0, "Time spent on the question (e.g. 45s)")
	c.Flags().String("session", "", "Session ID to group answers")
	c.Flags().Bool("review", false, "Record the answer as part of a review pass")
	c.MarkFlagsMutuallyExclusive("correct", "wrong")
	c.MarkFlagsOneRequired("correct", "wrong")
	return c
}

func describeTransition(tr *review.Transition) string {
	switch tr.Action {
	case review.ActionNoChange:
		return fmt.Sprintf("%s: not in review", tr.QuestionID)
	case review.ActionCreated:
		return fmt.Sprintf("%s: added to review as %s (priority %d)",
			tr.QuestionID, theme.Status(string(tr.To)).Render(string(tr.To)), tr.NewPriority)
	case review.ActionMastered:
		return fmt.Sprintf("%s: %s", tr.QuestionID, theme.Mastered.Render("mastered"))
	case review.ActionReopened:
		return fmt.Sprintf("%s: back in review as %s (priority %d)",
			tr.QuestionID, theme.Status(string(tr.To)).Render(string(tr.To)), tr.NewPriority)
	default:
		return fmt.Sprintf("%s: %s, priority %d -> %d",
			tr.QuestionID, theme.Status(string(tr.To)).Render(string(tr.To)), tr.PreviousPriority, tr.NewPriority)
	}
}
