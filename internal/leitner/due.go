package leitner

import (
	"slices"
	"time"
)

// Schedule is a read-only view over the cards of a deck in insertion order.
type Schedule interface {
	IDs() []string
	NextDue(id string) time.Time
}

// SelectDue returns the ids of the cards due at now (next due at or before now),
// or every card when includeNotDue is set. Results are ordered by next due time,
// earliest first, with ties kept in insertion order.
func SelectDue(s Schedule, now time.Time, includeNotDue bool) []string {
	type entry struct {
		id  string
		due time.Time
	}

	ids := s.IDs()
	entries := make([]entry, 0, len(ids))
	for _, id := range ids {
		due := s.NextDue(id)
		if includeNotDue || !due.After(now) {
			entries = append(entries, entry{id: id, due: due})
		}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return a.due.Compare(b.due)
	})

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}
