package clock

import "time"

// Clock supplies the current time. Everything that stamps or compares times
// takes a Clock so that tests can pin "now".
type Clock interface {
	Now() time.Time
}

// System reads the wall clock, normalized to UTC.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant. Advance moves it forward.
type Fixed struct {
	T time.Time
}

// NewFixed returns a Fixed clock pinned to t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{T: t.UTC()}
}

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time {
	return f.T
}

// Advance moves the pinned instant forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
