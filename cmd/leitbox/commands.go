package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/leitbox/internal/domain"
	"github.com/conorfennell/leitbox/internal/gitsource"
	"github.com/conorfennell/leitbox/internal/parser"
	"github.com/conorfennell/leitbox/internal/session"
	"github.com/conorfennell/leitbox/internal/state"
	"github.com/conorfennell/leitbox/internal/storage"
)

// loadDeck parses a deck file, fetching it first when it names a git repository.
func (a *app) loadDeck(ctx context.Context, arg string) ([]domain.Card, error) {
	path := arg
	if ref, ok := gitsource.ParseRef(arg); ok {
		f := &gitsource.Fetcher{BaseDir: a.cfg.ReposDir, Logger: a.logger}
		local, err := f.Fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		path = local
	}

	cards, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	a.logger.Info("deck loaded", "source", arg, "cards", len(cards))
	return cards, nil
}

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init <deck>",
		Short: "Initialize state from a deck file (.csv, .json, .yaml or .md)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.loadDeck(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			now := a.clock.Now()
			d := state.New(now)
			d.MergeAdd(cards, now)

			store := a.store()
			if err := store.Create(d, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %d cards into %s\n", d.Len(), store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing state file")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <deck>",
		Short: "Append cards from another deck file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.store()
			d, err := store.Load()
			if err != nil {
				return err
			}
			cards, err := a.loadDeck(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			added := d.MergeAdd(cards, a.clock.Now())
			if err := store.Save(d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d new cards.\n", added)
			return nil
		},
	}
}

func newDueCmd(a *app) *cobra.Command {
	var (
		all   bool
		limit int
	)
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List due cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.store().Load()
			if err != nil {
				return err
			}

			now := a.clock.Now()
			ids := d.Due(now, all)
			if limit <= 0 {
				limit = a.cfg.DueLimit
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Due count: %d\n", d.Stats(now).DueNow)
			fmt.Fprintf(out, "Total fetched (respecting --all): %d\n", len(ids))
			for _, id := range ids[:min(limit, len(ids))] {
				p, _ := d.Progress(id)
				fmt.Fprintf(out, "- %s | box %d | due %s\n", id, p.Box, p.NextDue.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include not-due cards")
	cmd.Flags().IntVar(&limit, "limit", 0, "Limit listing (default: due-limit config)")
	return cmd
}

func newStudyCmd(a *app) *cobra.Command {
	var opts session.Options
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Run a study session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.store()
			d, err := store.Load()
			if err != nil {
				return err
			}

			r := &session.Runner{
				Store:  store,
				Clock:  a.clock,
				In:     cmd.InOrStdin(),
				Out:    cmd.OutOrStdout(),
				Rand:   a.rand,
				Logger: a.logger,
			}
			res, err := r.Run(cmd.Context(), d, opts)
			if err != nil {
				return err
			}
			if res.Pool == 0 {
				return nil
			}

			a.logger.Info("study session finished", "reviewed", res.Reviewed, "skipped", res.Skipped)
			fmt.Fprintln(cmd.OutOrStdout(), "\nSession complete.")
			session.WriteStats(cmd.OutOrStdout(), d.Stats(a.clock.Now()))
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Max cards this session")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Include not-due cards to fill session")
	cmd.Flags().BoolVar(&opts.Shuffle, "shuffle", false, "Shuffle due pool before starting")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show counts per box and due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.store().Load()
			if err != nil {
				return err
			}
			session.WriteStats(cmd.OutOrStdout(), d.Stats(a.clock.Now()))
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <sqlite-file>",
		Short: "Export cards, progress and history to a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.store().Load()
			if err != nil {
				return err
			}

			db, err := storage.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.ExportDeck(cmd.Context(), d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cards and %d reviews to %s\n", d.Len(), len(d.History), args[0])
			return nil
		},
	}
}
