package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/leitbox/internal/clock"
	"github.com/conorfennell/leitbox/internal/domain"
	"github.com/conorfennell/leitbox/internal/state"
)

var t0 = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type countingSaver struct {
	saves int
	err   error
	boxes []int // box of "c1" at each save
}

func (c *countingSaver) Save(d *state.DeckState) error {
	if c.err != nil {
		return c.err
	}
	c.saves++
	p, _ := d.Progress("c1")
	c.boxes = append(c.boxes, p.Box)
	return nil
}

func deck(n int) *state.DeckState {
	d := state.New(t0)
	var cards []domain.Card
	for i := 1; i <= n; i++ {
		id := "c" + string(rune('0'+i))
		cards = append(cards, domain.Card{ID: id, Question: "Q" + id, Answer: "A" + id})
	}
	d.MergeAdd(cards, t0)
	return d
}

func newRunner(saver Saver, clk clock.Clock, input string, out io.Writer) *Runner {
	return &Runner{
		Store:  saver,
		Clock:  clk,
		In:     strings.NewReader(input),
		Out:    out,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRunPromotesOnHighAndPersists(t *testing.T) {
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"), nil)
	d := deck(1)
	require.NoError(t, store.Save(d))

	var out bytes.Buffer
	r := newRunner(store, clock.NewFixed(t0), "\nh\n", &out)
	res, err := r.Run(context.Background(), d, Options{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reviewed)

	loaded, err := store.Load()
	require.NoError(t, err)
	p, _ := loaded.Progress("c1")
	assert.Equal(t, 2, p.Box)
	assert.True(t, p.NextDue.Equal(t0.Add(24*time.Hour)))
	assert.Len(t, loaded.History, 1)
	assert.Contains(t, out.String(), "Q: Qc1")
	assert.Contains(t, out.String(), "A: Ac1")
}

func TestRunDemotesOnLow(t *testing.T) {
	d := deck(1)
	_, err := d.Review("c1", domain.High, t0)
	require.NoError(t, err)

	clk := clock.NewFixed(t0.Add(25 * time.Hour))
	saver := &countingSaver{}
	r := newRunner(saver, clk, "\nl\n", io.Discard)
	res, err := r.Run(context.Background(), d, Options{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reviewed)

	p, _ := d.Progress("c1")
	assert.Equal(t, 1, p.Box)
	assert.True(t, p.NextDue.Equal(clk.Now()))
}

func TestRunInvalidGradeTreatedAsLow(t *testing.T) {
	d := deck(1)
	var out bytes.Buffer
	r := newRunner(&countingSaver{}, clock.NewFixed(t0), "\nyes\n", &out)
	_, err := r.Run(context.Background(), d, Options{})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Invalid; treating as 'l'.")
	p, _ := d.Progress("c1")
	assert.Equal(t, 1, p.Box)
	require.NotNil(t, p.LastConfidence)
	assert.Equal(t, domain.Low, *p.LastConfidence)
	assert.Equal(t, 1, p.ReviewCount)
}

func TestRunSavesAfterEveryReview(t *testing.T) {
	d := deck(3)
	saver := &countingSaver{}
	clk := clock.NewFixed(t0)
	r := newRunner(saver, clk, "\nh\n\nm\n\nh\n", io.Discard)
	res, err := r.Run(context.Background(), d, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Reviewed)
	assert.Equal(t, 3, saver.saves)
	assert.Equal(t, []int{2, 2, 2}, saver.boxes)
	assert.Len(t, d.History, 3)
}

func TestRunSkipQuitAndEOF(t *testing.T) {
	t.Run("skip does not count toward limit", func(t *testing.T) {
		d := deck(3)
		saver := &countingSaver{}
		r := newRunner(saver, clock.NewFixed(t0), "s\n\nh\n", io.Discard)
		res, err := r.Run(context.Background(), d, Options{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, 1, res.Reviewed)
		p, _ := d.Progress("c2")
		assert.Equal(t, 2, p.Box)
		p, _ = d.Progress("c3")
		assert.Equal(t, 1, p.Box)
	})

	t.Run("quit keeps earlier reviews", func(t *testing.T) {
		d := deck(3)
		saver := &countingSaver{}
		r := newRunner(saver, clock.NewFixed(t0), "\nh\nq\n", io.Discard)
		res, err := r.Run(context.Background(), d, Options{})
		require.NoError(t, err)
		assert.True(t, res.Quit)
		assert.Equal(t, 1, res.Reviewed)
		assert.Equal(t, 1, saver.saves)
	})

	t.Run("quit at grade prompt", func(t *testing.T) {
		d := deck(1)
		saver := &countingSaver{}
		r := newRunner(saver, clock.NewFixed(t0), "\nq\n", io.Discard)
		res, err := r.Run(context.Background(), d, Options{})
		require.NoError(t, err)
		assert.True(t, res.Quit)
		assert.Zero(t, saver.saves)
		assert.Empty(t, d.History)
	})

	t.Run("end of input quits", func(t *testing.T) {
		d := deck(2)
		saver := &countingSaver{}
		r := newRunner(saver, clock.NewFixed(t0), "\nm\n", io.Discard)
		res, err := r.Run(context.Background(), d, Options{})
		require.NoError(t, err)
		assert.True(t, res.Quit)
		assert.Equal(t, 1, res.Reviewed)
	})
}

func TestRunNothingDue(t *testing.T) {
	d := deck(1)
	_, err := d.Review("c1", domain.High, t0)
	require.NoError(t, err)

	var out bytes.Buffer
	r := newRunner(&countingSaver{}, clock.NewFixed(t0), "", &out)
	res, err := r.Run(context.Background(), d, Options{})
	require.NoError(t, err)
	assert.Zero(t, res.Reviewed)
	assert.Contains(t, out.String(), "Nothing due.")

	out.Reset()
	r = newRunner(&countingSaver{}, clock.NewFixed(t0), "\nh\n", &out)
	res, err = r.Run(context.Background(), d, Options{All: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reviewed)
	p, _ := d.Progress("c1")
	assert.Equal(t, 3, p.Box)
}

func TestRunShuffleUsesInjectedSource(t *testing.T) {
	order := func(seed uint64) []string {
		d := deck(5)
		var out bytes.Buffer
		r := newRunner(&countingSaver{}, clock.NewFixed(t0), strings.Repeat("s\n", 5), &out)
		r.Rand = rand.New(rand.NewPCG(seed, seed))
		_, err := r.Run(context.Background(), d, Options{Shuffle: true})
		require.NoError(t, err)

		var ids []string
		for _, line := range strings.Split(out.String(), "\n") {
			if q, ok := strings.CutPrefix(line, "Q: Q"); ok {
				ids = append(ids, q)
			}
		}
		return ids
	}

	first := order(42)
	assert.Equal(t, first, order(42))
	assert.ElementsMatch(t, []string{"c1", "c2", "c3", "c4", "c5"}, first)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := deck(2)
	saver := &countingSaver{}
	r := newRunner(saver, clock.NewFixed(t0), "\nh\n\nh\n", io.Discard)
	_, err := r.Run(ctx, d, Options{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, saver.saves)
}

func TestRunSaveFailureStopsSession(t *testing.T) {
	d := deck(2)
	saver := &countingSaver{err: errors.New("disk full")}
	r := newRunner(saver, clock.NewFixed(t0), "\nh\n\nh\n", io.Discard)
	res, err := r.Run(context.Background(), d, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, res.Reviewed)
}

func TestWriteStats(t *testing.T) {
	d := deck(2)
	_, err := d.Review("c2", domain.Medium, t0)
	require.NoError(t, err)

	var out bytes.Buffer
	WriteStats(&out, d.Stats(t0))
	assert.Equal(t, "Total cards: 2\n"+
		"Due now: 1\n"+
		"  Box 1: 1\n"+
		"  Box 2: 1\n"+
		"  Box 3: 0\n"+
		"  Box 4: 0\n"+
		"  Box 5: 0\n"+
		"Last review: 2025-01-01T09:00:00Z - card c2 (medium)\n", out.String())
}
