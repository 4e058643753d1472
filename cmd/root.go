package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/boki/internal/config"
	"github.com/abhisek/boki/internal/store"
	"github.com/abhisek/boki/internal/study"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "boki",
		Short:        "Bookkeeping exam practice with adaptive review",
		Long:         "Boki tracks the questions you get wrong, ranks them for review, and picks new practice questions that fit your study phase.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides BOKI_DB env var)")
	pf.String("config", "", "Path to YAML config file")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: text or json")

	root.AddCommand(
		newQuestionsCmd(),
		newNextCmd(),
		newAnswerCmd(),
		newReviewCmd(),
		newStatsCmd(),
		newProfileCmd(),
		newResetCmd(),
		newVersionCmd(),
	)
	return root
}

func Execute() error {
	return newRootCmd().Execute()
}

// openService loads configuration, opens the store and builds the study
// service. The returned func closes the store.
func openService(cmd *cobra.Command) (*study.Service, func(), error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	if !strings.HasPrefix(cfg.DB, "file:") {
		if err := store.EnsureDir(cfg.DB); err != nil {
			return nil, nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	st, err := store.Open(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "path", cfg.DB)

	svc, err := study.New(st, study.Options{
		Review:            cfg.ReviewPolicy(),
		DefaultMax:        cfg.Study.MaxQuestions,
		PerformanceWindow: cfg.Study.PerformanceWindow,
		Logger:            logger,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return svc, func() { st.Close() }, nil
}
