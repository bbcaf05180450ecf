package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/conorfennell/leitbox/internal/clock"
	"github.com/conorfennell/leitbox/internal/domain"
	"github.com/conorfennell/leitbox/internal/state"
)

const rule = "----------------------------------------------------------------------"

// Saver commits a deck state durably.
type Saver interface {
	Save(d *state.DeckState) error
}

// Options select and order the cards of a study session.
type Options struct {
	All     bool // include cards that are not due yet
	Limit   int  // maximum number of graded cards; 0 means no limit
	Shuffle bool
}

// Result summarises a finished session.
type Result struct {
	Pool     int // cards selected for the session
	Reviewed int
	Skipped  int
	Quit     bool
}

// Runner drives an interactive study session over a line-oriented terminal.
type Runner struct {
	Store  Saver
	Clock  clock.Clock
	In     io.Reader
	Out    io.Writer
	Rand   *rand.Rand
	Logger *slog.Logger
}

// Run presents the selected cards one at a time, applies each grade and saves
// the deck before moving on. Stopping early, by quitting, end of input or a
// cancelled ctx, keeps every review already saved.
func (r *Runner) Run(ctx context.Context, d *state.DeckState, opts Options) (Result, error) {
	var res Result
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pool := d.Due(r.Clock.Now(), opts.All)
	res.Pool = len(pool)
	if len(pool) == 0 {
		fmt.Fprintln(r.Out, "Nothing due. Use --all to include not-due cards, or come back later.")
		return res, nil
	}

	if opts.Shuffle {
		rng := r.Rand
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	limit := len(pool)
	if opts.Limit > 0 && opts.Limit < limit {
		limit = opts.Limit
	}

	in := bufio.NewScanner(r.In)
	ask := func(prompt string) string {
		fmt.Fprint(r.Out, prompt)
		if !in.Scan() {
			fmt.Fprintln(r.Out)
			return "q"
		}
		return strings.ToLower(strings.TrimSpace(in.Text()))
	}

	fmt.Fprintln(r.Out, "Study mode: [Enter]=show answer | then grade: (l)ow wrong, (m)edium, (h)igh | (s)kip | (q)uit")
	for _, id := range pool {
		if res.Reviewed >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			logger.Info("study session cancelled", "reviewed", res.Reviewed)
			return res, err
		}

		card, _ := d.Card(id)
		p, _ := d.Progress(id)

		fmt.Fprintln(r.Out)
		fmt.Fprintln(r.Out, rule)
		fmt.Fprintf(r.Out, "[%d/%d] Box %d  Due: %s\n", res.Reviewed+1, limit, p.Box, p.NextDue.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(r.Out, "Q: %s\n", card.Question)

		switch ask("Press Enter to reveal, or (s)kip/(q)uit: ") {
		case "q":
			res.Quit = true
			return res, nil
		case "s":
			res.Skipped++
			continue
		}

		fmt.Fprintf(r.Out, "A: %s\n", card.Answer)
		answer := ask("Grade (l/m/h), or (q)uit: ")
		if answer == "q" {
			res.Quit = true
			return res, nil
		}
		grade, ok := domain.NormalizeGrade(answer)
		if !ok {
			fmt.Fprintln(r.Out, "Invalid; treating as 'l'.")
		}

		entry, err := d.Review(id, grade, r.Clock.Now())
		if err != nil {
			return res, err
		}
		if err := r.Store.Save(d); err != nil {
			return res, fmt.Errorf("failed to save review of %s: %w", id, err)
		}
		logger.Debug("card reviewed", "card", id, "confidence", grade, "prior_box", entry.PriorBox, "new_box", entry.NewBox)
		res.Reviewed++
	}
	return res, nil
}
