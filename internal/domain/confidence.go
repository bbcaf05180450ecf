package domain

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfidence is returned when a grade cannot be mapped to a Confidence.
var ErrInvalidConfidence = errors.New("leitbox: invalid confidence grade")

// Confidence is the reviewer's self-assessed recall quality.
type Confidence int

const (
	Low    Confidence = iota + 1 // Missed or badly recalled.
	Medium                       // Recalled with effort.
	High                         // Recalled confidently.
)

var (
	confidenceNames = [...]string{Low: "low", Medium: "medium", High: "high"}
	confidenceCodes = [...]string{Low: "l", Medium: "m", High: "h"}
)

var (
	_ fmt.Stringer             = Confidence(0)
	_ encoding.TextMarshaler   = Confidence(0)
	_ encoding.TextUnmarshaler = (*Confidence)(nil)
	_ json.Marshaler           = Confidence(0)
	_ json.Unmarshaler         = (*Confidence)(nil)
)

// String returns "low", "medium" or "high", or "Confidence(n)" for invalid values.
func (c Confidence) String() string {
	if c.IsValid() {
		return confidenceNames[c]
	}
	return fmt.Sprintf("Confidence(%d)", int(c))
}

// Code returns the single-character grade code ("l", "m", "h").
func (c Confidence) Code() string {
	if c.IsValid() {
		return confidenceCodes[c]
	}
	return "?"
}

// IsValid reports whether c is one of Low, Medium, High.
func (c Confidence) IsValid() bool {
	return c >= Low && c <= High
}

// ParseConfidence maps a grade code or name, case-insensitively, to a Confidence.
func ParseConfidence(s string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return Low, nil
	case "m", "medium":
		return Medium, nil
	case "h", "high":
		return High, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidConfidence, s)
}

// NormalizeGrade maps free-form input to a Confidence. Anything that is not a
// recognised grade becomes Low; ok reports whether the input was recognised.
func NormalizeGrade(s string) (c Confidence, ok bool) {
	c, err := ParseConfidence(s)
	if err != nil {
		return Low, false
	}
	return c, true
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidConfidence, int(c))
	}
	return []byte(confidenceNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Single-letter codes are
// accepted as well as names.
func (c *Confidence) UnmarshalText(text []byte) error {
	v, err := ParseConfidence(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalJSON implements json.Marshaler. Confidence serializes as a JSON string.
func (c Confidence) MarshalJSON() ([]byte, error) {
	text, err := c.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfidence, data)
	}
	return c.UnmarshalText([]byte(s))
}
