package parser

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const utf8BOM = "\ufeff"

// readCSV expects a header row naming q and a columns; id is optional.
func readCSV(r io.Reader) ([]record, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []record
	for pos := 1; ; pos++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", pos, err)
		}
		records = append(records, record{
			Pos:      pos,
			ID:       field(row, "id"),
			Question: field(row, "q"),
			Answer:   field(row, "a"),
		})
	}
	return records, nil
}

// listItem is the shape of one entry of a JSON or YAML deck.
type listItem struct {
	ID string `json:"id" yaml:"id"`
	Q  string `json:"q" yaml:"q"`
	A  string `json:"a" yaml:"a"`
}

func fromItems(items []listItem) []record {
	records := make([]record, len(items))
	for i, item := range items {
		records[i] = record{Pos: i + 1, ID: item.ID, Question: item.Q, Answer: item.A}
	}
	return records
}

func readJSON(r io.Reader) ([]record, error) {
	var items []listItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode json deck: %w", err)
	}
	return fromItems(items), nil
}

func readYAML(r io.Reader) ([]record, error) {
	var items []listItem
	if err := yaml.NewDecoder(r).Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode yaml deck: %w", err)
	}
	return fromItems(items), nil
}
