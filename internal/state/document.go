package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/leitbox/internal/domain"
)

// document is the persisted shape of a DeckState.
type document struct {
	Created  time.Time                      `json:"created"`
	Cards    ordered[domain.Card]           `json:"cards"`
	Progress ordered[*domain.ProgressState] `json:"progress"`
	History  []domain.HistoryEntry          `json:"history"`
}

// ordered is a JSON object that remembers the order of its keys.
type ordered[T any] struct {
	keys   []string
	values map[string]T
}

func (o ordered[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *ordered[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	o.keys = nil
	o.values = make(map[string]T)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		if _, dup := o.values[key]; !dup {
			o.keys = append(o.keys, key)
		}
		o.values[key] = v
	}
	_, err = dec.Token()
	return err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func encode(d *DeckState) ([]byte, error) {
	doc := document{
		Created:  d.Created.UTC(),
		Cards:    ordered[domain.Card]{keys: d.order, values: d.cards},
		Progress: ordered[*domain.ProgressState]{keys: d.order, values: d.progress},
		History:  d.History,
	}
	if doc.History == nil {
		doc.History = []domain.HistoryEntry{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// decode parses and checks a persisted document. Any shape problem is
// reported as ErrStateCorrupt; nothing is repaired.
func decode(data []byte) (*DeckState, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}
	if doc.Created.IsZero() {
		return nil, fmt.Errorf("%w: missing created", ErrStateCorrupt)
	}
	if doc.Cards.values == nil {
		return nil, fmt.Errorf("%w: missing cards", ErrStateCorrupt)
	}
	if doc.Progress.values == nil {
		return nil, fmt.Errorf("%w: missing progress", ErrStateCorrupt)
	}
	if len(doc.Cards.keys) != len(doc.Progress.keys) {
		return nil, fmt.Errorf("%w: %d cards but %d progress entries",
			ErrStateCorrupt, len(doc.Cards.keys), len(doc.Progress.keys))
	}

	d := New(doc.Created)
	for _, id := range doc.Cards.keys {
		card := doc.Cards.values[id]
		if err := validate.Struct(card); err != nil {
			return nil, fmt.Errorf("%w: card %s: %v", ErrStateCorrupt, id, err)
		}
		if card.ID != id {
			return nil, fmt.Errorf("%w: card keyed %s has id %s", ErrStateCorrupt, id, card.ID)
		}
		p, ok := doc.Progress.values[id]
		if !ok || p == nil {
			return nil, fmt.Errorf("%w: card %s has no progress", ErrStateCorrupt, id)
		}
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: progress %s: %v", ErrStateCorrupt, id, err)
		}
		if p.NextDue.IsZero() {
			return nil, fmt.Errorf("%w: progress %s: missing next_due", ErrStateCorrupt, id)
		}
		p.NextDue = p.NextDue.UTC()
		d.insert(card, p)
	}

	for i, h := range doc.History {
		if err := validate.Struct(h); err != nil {
			return nil, fmt.Errorf("%w: history entry %d: %v", ErrStateCorrupt, i, err)
		}
		h.Timestamp = h.Timestamp.UTC()
		d.History = append(d.History, h)
	}
	return d, nil
}
