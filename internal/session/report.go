package session

import (
	"fmt"
	"io"

	"github.com/conorfennell/leitbox/internal/leitner"
	"github.com/conorfennell/leitbox/internal/state"
)

// WriteStats prints box counts, the due count and the last review.
func WriteStats(w io.Writer, s state.Stats) {
	fmt.Fprintf(w, "Total cards: %d\n", s.Total)
	fmt.Fprintf(w, "Due now: %d\n", s.DueNow)
	for b := 1; b <= leitner.MaxBox; b++ {
		fmt.Fprintf(w, "  Box %d: %d\n", b, s.Boxes[b])
	}
	if last := s.LastReview; last != nil {
		fmt.Fprintf(w, "Last review: %s - card %s (%s)\n",
			last.Timestamp.Format("2006-01-02T15:04:05Z07:00"), last.CardID, last.Confidence)
	}
}
