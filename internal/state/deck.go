package state

import (
	"fmt"
	"time"

	"github.com/conorfennell/leitbox/internal/domain"
	"github.com/conorfennell/leitbox/internal/leitner"
)

// DeckState is the unit of persistence: every card, its progress, and the
// review history. Cards and progress are kept in lockstep; the only way in is
// MergeAdd, and there is no way out.
type DeckState struct {
	Created time.Time
	History []domain.HistoryEntry

	order    []string
	cards    map[string]domain.Card
	progress map[string]*domain.ProgressState
}

// New returns an empty deck state created at now.
func New(now time.Time) *DeckState {
	return &DeckState{
		Created:  now.UTC(),
		History:  []domain.HistoryEntry{},
		cards:    make(map[string]domain.Card),
		progress: make(map[string]*domain.ProgressState),
	}
}

// Len returns the number of cards.
func (d *DeckState) Len() int {
	return len(d.order)
}

// IDs returns card ids in insertion order.
func (d *DeckState) IDs() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Card returns the card with the given id.
func (d *DeckState) Card(id string) (domain.Card, bool) {
	c, ok := d.cards[id]
	return c, ok
}

// Progress returns a copy of the progress state of a card.
func (d *DeckState) Progress(id string) (domain.ProgressState, bool) {
	p, ok := d.progress[id]
	if !ok {
		return domain.ProgressState{}, false
	}
	return *p, true
}

// NextDue returns when a card is next due. Unknown ids report the zero time.
func (d *DeckState) NextDue(id string) time.Time {
	if p, ok := d.progress[id]; ok {
		return p.NextDue
	}
	return time.Time{}
}

// MergeAdd inserts the cards whose id is not yet present, each at box 1 and
// due at now. Existing cards and their progress are left alone. It returns the
// number of cards inserted.
func (d *DeckState) MergeAdd(cards []domain.Card, now time.Time) int {
	added := 0
	for _, c := range cards {
		if _, exists := d.cards[c.ID]; exists {
			continue
		}
		p := domain.NewProgress(now)
		d.insert(c, &p)
		added++
	}
	return added
}

func (d *DeckState) insert(c domain.Card, p *domain.ProgressState) {
	d.order = append(d.order, c.ID)
	d.cards[c.ID] = c
	d.progress[c.ID] = p
}

// Due returns the ids due at now, or all ids when includeNotDue is set,
// earliest due first.
func (d *DeckState) Due(now time.Time, includeNotDue bool) []string {
	return leitner.SelectDue(d, now, includeNotDue)
}

// Review applies a graded review to a card and appends it to the history.
func (d *DeckState) Review(id string, c domain.Confidence, now time.Time) (domain.HistoryEntry, error) {
	if !c.IsValid() {
		return domain.HistoryEntry{}, fmt.Errorf("review %s: %w: %d", id, domain.ErrInvalidConfidence, int(c))
	}
	p, ok := d.progress[id]
	if !ok {
		return domain.HistoryEntry{}, fmt.Errorf("review %s: %w", id, ErrUnknownCard)
	}

	now = now.UTC()
	prior := p.Box
	p.Box, p.NextDue = leitner.Advance(p.Box, c, now)
	grade := c
	p.LastConfidence = &grade
	p.ReviewCount++

	entry := domain.HistoryEntry{
		Timestamp:  now,
		CardID:     id,
		PriorBox:   prior,
		NewBox:     p.Box,
		Confidence: c,
	}
	d.History = append(d.History, entry)
	return entry, nil
}

// Stats summarises a deck at a point in time.
type Stats struct {
	Total      int
	DueNow     int
	Boxes      [leitner.MaxBox + 1]int // index 0 unused
	LastReview *domain.HistoryEntry
}

// Stats counts cards per box and cards due at now.
func (d *DeckState) Stats(now time.Time) Stats {
	s := Stats{Total: len(d.order)}
	for _, id := range d.order {
		p := d.progress[id]
		if p.Box >= 1 && p.Box <= leitner.MaxBox {
			s.Boxes[p.Box]++
		}
		if !p.NextDue.After(now) {
			s.DueNow++
		}
	}
	if n := len(d.History); n > 0 {
		last := d.History[n-1]
		s.LastReview = &last
	}
	return s
}
