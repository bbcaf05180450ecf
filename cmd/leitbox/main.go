// Command leitbox is a Leitner-box flashcard trainer for the terminal.
package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/conorfennell/leitbox/internal/clock"
	"github.com/conorfennell/leitbox/internal/config"
	"github.com/conorfennell/leitbox/internal/state"
)

const (
	Version = "0.1.0"
	appName = "leitbox"
)

func main() {
	a := &app{clock: clock.System{}}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	clock  clock.Clock
	rand   *rand.Rand
	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) store() *state.Store {
	return state.NewStore(a.cfg.StatePath, a.logger)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Leitner-box flashcards with confidence grading",
		Long: `leitbox schedules flashcards with a fixed five-box Leitner system.

Each review is graded low, medium or high. Low sends a card back to box 1,
medium and high move it up one box and schedule it after half or all of that
box's interval (box 1: now, 2: 1 day, 3: 3 days, 4: 7 days, 5: 21 days).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))
			slog.SetDefault(a.logger)
			return nil
		},
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newDueCmd(a),
		newStudyCmd(a),
		newStatsCmd(a),
		newExportCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}
