// Package parser reads question/answer text in the "Q:" / "A:" format used
// both by markdown deck files and by generated practice questions.
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/brainstack/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	separator      = "---"
)

type state int

const (
	seeking state = iota
	readingFront
	readingBack
)

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.CardContent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse extracts every complete card from r. A "Q:" line starts a card and
// an "A:" line its answer; following lines continue the current part until
// the next prefix, a "---" line or the end of input. Cards missing either
// side are skipped.
func Parse(r io.Reader) ([]domain.CardContent, error) {
	p := &cardParser{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	p.finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.cards, nil
}

type cardParser struct {
	cards   []domain.CardContent
	current domain.CardContent
	block   []string
	state   state
}

func (p *cardParser) line(line string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == separator:
		p.finishCard()
	case strings.HasPrefix(trimmed, questionPrefix):
		// A new question always starts a new card.
		p.finishCard()
		p.state = readingFront
		p.block = append(p.block, stripPrefix(trimmed, questionPrefix))
	case strings.HasPrefix(trimmed, answerPrefix) && p.state != seeking:
		p.flushBlock()
		p.state = readingBack
		p.block = append(p.block, stripPrefix(trimmed, answerPrefix))
	case p.state != seeking:
		p.block = append(p.block, line)
	}
}

func (p *cardParser) flushBlock() {
	if len(p.block) == 0 {
		return
	}
	content := strings.TrimSpace(strings.Join(p.block, "\n"))
	switch p.state {
	case readingFront:
		p.current.Front = content
	case readingBack:
		p.current.Back = content
	}
	p.block = nil
}

func (p *cardParser) finishCard() {
	p.flushBlock()
	if p.current.Front != "" && p.current.Back != "" {
		p.cards = append(p.cards, p.current)
	}
	p.current = domain.CardContent{}
	p.state = seeking
}

func stripPrefix(line, prefix string) string {
	return strings.TrimSpace(line[len(prefix):])
}
