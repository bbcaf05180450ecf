package leitner

import (
	"testing"
	"time"

	"github.com/conorfennell/leitbox/internal/domain"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestIntervalFor(t *testing.T) {
	testCases := []struct {
		box      int
		expected time.Duration
	}{
		{1, 0},
		{2, 24 * time.Hour},
		{3, 3 * 24 * time.Hour},
		{4, 7 * 24 * time.Hour},
		{5, 21 * 24 * time.Hour},
		{0, 21 * 24 * time.Hour},
		{-1, 21 * 24 * time.Hour},
		{6, 21 * 24 * time.Hour},
	}

	for _, tc := range testCases {
		if got := IntervalFor(tc.box); got != tc.expected {
			t.Errorf("IntervalFor(%d): expected %v, but got %v", tc.box, tc.expected, got)
		}
	}
}

func TestAdvanceBoxes(t *testing.T) {
	for box := 1; box <= MaxBox; box++ {
		for _, c := range []domain.Confidence{domain.Medium, domain.High} {
			got, _ := Advance(box, c, t0)
			expected := min(MaxBox, box+1)
			if got != expected {
				t.Errorf("Advance(%d, %v): expected box %d, but got %d", box, c, expected, got)
			}
		}
		if got, _ := Advance(box, domain.Low, t0); got != 1 {
			t.Errorf("Advance(%d, low): expected box 1, but got %d", box, got)
		}
	}
}

func TestAdvanceDueDates(t *testing.T) {
	for box := 1; box <= MaxBox; box++ {
		t.Run("low", func(t *testing.T) {
			_, due := Advance(box, domain.Low, t0)
			if !due.Equal(t0) {
				t.Errorf("Expected low from box %d to be due at %v, but got %v", box, t0, due)
			}
		})
		t.Run("medium", func(t *testing.T) {
			next, due := Advance(box, domain.Medium, t0)
			expected := t0.Add(IntervalFor(next) / 2)
			if !due.Equal(expected) {
				t.Errorf("Expected medium from box %d to be due at %v, but got %v", box, expected, due)
			}
		})
		t.Run("high", func(t *testing.T) {
			next, due := Advance(box, domain.High, t0)
			expected := t0.Add(IntervalFor(next))
			if !due.Equal(expected) {
				t.Errorf("Expected high from box %d to be due at %v, but got %v", box, expected, due)
			}
		})
	}
}

func TestAdvanceAtCeilingStillReschedules(t *testing.T) {
	box, due := Advance(MaxBox, domain.High, t0)
	if box != MaxBox {
		t.Fatalf("Expected box to stay at %d, but got %d", MaxBox, box)
	}
	if !due.Equal(t0.Add(21 * 24 * time.Hour)) {
		t.Errorf("Expected due to move 21 days out, but got %v", due)
	}

	_, due = Advance(MaxBox, domain.Medium, t0)
	if !due.Equal(t0.Add(252 * time.Hour)) {
		t.Errorf("Expected due to move 10.5 days out, but got %v", due)
	}
}

func TestAdvanceInvalidInputs(t *testing.T) {
	if box, due := Advance(3, domain.Confidence(0), t0); box != 1 || !due.Equal(t0) {
		t.Errorf("Expected an invalid confidence to behave like low, but got box %d due %v", box, due)
	}
	if box, _ := Advance(-4, domain.High, t0); box != 1 {
		t.Errorf("Expected an out-of-range box to clamp to 1, but got %d", box)
	}
	if box, _ := Advance(9, domain.High, t0); box != MaxBox {
		t.Errorf("Expected an out-of-range box to clamp to %d, but got %d", MaxBox, box)
	}
}

func TestAdvanceScenario(t *testing.T) {
	box, due := 1, t0

	box, due = Advance(box, domain.High, t0)
	if box != 2 || !due.Equal(t0.Add(24*time.Hour)) {
		t.Fatalf("After high: expected box 2 due %v, but got box %d due %v", t0.Add(24*time.Hour), box, due)
	}

	t1 := t0.Add(25 * time.Hour)
	box, due = Advance(box, domain.Medium, t1)
	if box != 3 || !due.Equal(t1.Add(36*time.Hour)) {
		t.Fatalf("After medium: expected box 3 due %v, but got box %d due %v", t1.Add(36*time.Hour), box, due)
	}

	t2 := t1.Add(40 * time.Hour)
	box, due = Advance(box, domain.Low, t2)
	if box != 1 || !due.Equal(t2) {
		t.Fatalf("After low: expected box 1 due %v, but got box %d due %v", t2, box, due)
	}
}

type fakeSchedule struct {
	ids []string
	due map[string]time.Time
}

func (f fakeSchedule) IDs() []string               { return f.ids }
func (f fakeSchedule) NextDue(id string) time.Time { return f.due[id] }

func TestSelectDue(t *testing.T) {
	s := fakeSchedule{
		ids: []string{"a", "b", "c", "d", "e"},
		due: map[string]time.Time{
			"a": t0,
			"b": t0.Add(5 * time.Minute),
			"c": t0.Add(2 * time.Minute),
			"d": t0.Add(-time.Hour),
			"e": t0,
		},
	}

	testCases := []struct {
		name          string
		now           time.Time
		includeNotDue bool
		expected      []string
	}{
		{"due at t0", t0, false, []string{"d", "a", "e"}},
		{"all", t0, true, []string{"d", "a", "e", "c", "b"}},
		{"later", t0.Add(3 * time.Minute), false, []string{"d", "a", "e", "c"}},
		{"nothing due", t0.Add(-2 * time.Hour), false, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectDue(s, tc.now, tc.includeNotDue)
			if len(got) != len(tc.expected) {
				t.Fatalf("Expected %v, but got %v", tc.expected, got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Fatalf("Expected %v, but got %v", tc.expected, got)
				}
			}
		})
	}
}

func TestSelectDueOrdering(t *testing.T) {
	s := fakeSchedule{
		ids: []string{"x", "y", "z"},
		due: map[string]time.Time{
			"x": t0,
			"y": t0.Add(5 * time.Second),
			"z": t0.Add(2 * time.Second),
		},
	}
	got := SelectDue(s, t0.Add(time.Minute), false)
	expected := []string{"x", "z", "y"}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Expected %v, but got %v", expected, got)
		}
	}
}
