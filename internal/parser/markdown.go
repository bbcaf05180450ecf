package parser

import (
	"bufio"
	"io"
	"strings"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	idPrefix       = "ID:"
	separator      = "---"
)

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
)

// readMarkdown extracts Q:/A: blocks. A new Q: line or a --- separator ends
// the current card; an optional ID: line names it.
func readMarkdown(r io.Reader) ([]record, error) {
	scanner := bufio.NewScanner(r)
	var records []record
	var current record
	var block []string
	currentState := seeking
	pos := 0

	flushBlock := func() {
		content := strings.Join(block, "\n")
		switch currentState {
		case readingQuestion:
			current.Question = content
		case readingAnswer:
			current.Answer = content
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Pos > 0 {
			records = append(records, current)
		}
		current = record{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.TrimSpace(line) == separator:
			finishCard()

		case strings.HasPrefix(line, questionPrefix):
			finishCard()
			pos++
			current.Pos = pos
			currentState = readingQuestion
			block = append(block, trimPrefix(line, questionPrefix))

		case strings.HasPrefix(line, answerPrefix) && currentState != seeking:
			flushBlock()
			currentState = readingAnswer
			block = append(block, trimPrefix(line, answerPrefix))

		case strings.HasPrefix(line, idPrefix) && currentState != seeking:
			current.ID = trimPrefix(line, idPrefix)

		case currentState != seeking:
			block = append(block, line)
		}
	}

	finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func trimPrefix(line, prefix string) string {
	content := line[len(prefix):]
	return strings.TrimPrefix(content, " ")
}
