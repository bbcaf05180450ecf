package leitner

import (
	"time"

	"github.com/conorfennell/leitbox/internal/domain"
)

// Advance computes the box and due time of a card after a review graded c at now.
//
//	Low:    back to box 1, due now.
//	Medium: up one box (capped at MaxBox), due after half the new box's interval.
//	High:   up one box (capped at MaxBox), due after the new box's full interval.
//
// Reviews at the ceiling still push the due time out. An invalid confidence is
// treated as Low.
func Advance(box int, c domain.Confidence, now time.Time) (int, time.Time) {
	now = now.UTC()
	switch c {
	case domain.Medium:
		next := promote(box)
		return next, now.Add(scale(IntervalFor(next), 0.5))
	case domain.High:
		next := promote(box)
		return next, now.Add(scale(IntervalFor(next), 1.0))
	default:
		return 1, now
	}
}

func promote(box int) int {
	return min(MaxBox, max(1, box+1))
}

func scale(d time.Duration, factor float64) time.Duration {
	return time.Duration(float64(d) * factor)
}
