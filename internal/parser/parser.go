package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/leitbox/internal/domain"
)

var (
	ErrDeckEmpty         = errors.New("leitbox: no cards found in deck")
	ErrUnsupportedFormat = errors.New("leitbox: unsupported deck format")
)

// Format identifies a deck file encoding.
type Format string

const (
	CSV      Format = "csv"
	JSON     Format = "json"
	YAML     Format = "yaml"
	Markdown Format = "md"
)

// FormatFromPath picks the deck format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".md", ".markdown":
		return Markdown, nil
	}
	return "", fmt.Errorf("%w: %s (expected .csv, .json, .yaml or .md)", ErrUnsupportedFormat, path)
}

// ParseFile reads a deck file and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cards, err := Parse(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cards, nil
}

// Parse reads a deck in the given format. Records with an empty question or
// answer are skipped; records without an id get one derived from their
// position in the source, so re-reading an unchanged deck yields the same ids.
// A deck with no usable records fails with ErrDeckEmpty.
func Parse(r io.Reader, format Format) ([]domain.Card, error) {
	var (
		records []record
		err     error
	)
	switch format {
	case CSV:
		records, err = readCSV(r)
	case JSON:
		records, err = readJSON(r)
	case YAML:
		records, err = readYAML(r)
	case Markdown:
		records, err = readMarkdown(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return toCards(records, format)
}

// record is one raw deck entry before validation. Pos is its 1-based
// position in the source.
type record struct {
	Pos      int
	ID       string
	Question string
	Answer   string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func toCards(records []record, format Format) ([]domain.Card, error) {
	var cards []domain.Card
	for _, rec := range records {
		card := domain.Card{
			ID:       strings.TrimSpace(rec.ID),
			Question: strings.TrimSpace(rec.Question),
			Answer:   strings.TrimSpace(rec.Answer),
		}
		if card.ID == "" {
			card.ID = string(format) + ":" + strconv.Itoa(rec.Pos)
		}
		if err := validate.Struct(card); err != nil {
			continue
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w (%s decks need q and a fields, id optional)", ErrDeckEmpty, format)
	}
	return cards, nil
}
