package domain

import "time"

// Card is a single question-answer entry. Cards are never mutated once loaded.
type Card struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Question string `json:"question" yaml:"question" validate:"required"`
	Answer   string `json:"answer" yaml:"answer" validate:"required"`
}

// ProgressState is the Leitner scheduling state of one card.
type ProgressState struct {
	Box            int         `json:"box" validate:"min=1,max=5"`
	NextDue        time.Time   `json:"next_due" validate:"required"`
	LastConfidence *Confidence `json:"last_confidence"`
	ReviewCount    int         `json:"review_count" validate:"min=0"`
}

// NewProgress returns the state of a card that just entered the deck:
// box 1, due immediately.
func NewProgress(now time.Time) ProgressState {
	return ProgressState{Box: 1, NextDue: now.UTC()}
}

// HistoryEntry records a single review event.
type HistoryEntry struct {
	Timestamp  time.Time  `json:"timestamp" validate:"required"`
	CardID     string     `json:"card_id" validate:"required"`
	PriorBox   int        `json:"prior_box" validate:"min=1,max=5"`
	NewBox     int        `json:"new_box" validate:"min=1,max=5"`
	Confidence Confidence `json:"confidence" validate:"min=1,max=3"`
}
