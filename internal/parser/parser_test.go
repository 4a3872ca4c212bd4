package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/brainstack/internal/domain"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []domain.CardContent
	}{
		{
			name:     "Simple Q&A",
			input:    "Q: What is the capital of France?\nA: Paris",
			expected: []domain.CardContent{{Front: "What is the capital of France?", Back: "Paris"}},
		},
		{
			name: "Multiline answer",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			expected: []domain.CardContent{{Front: "What are the primary colors?", Back: "Red\nBlue\nYellow"}},
		},
		{
			name: "Two cards",
			input: `
Q: First question
A: First answer

Q: Second question
A: Second answer
`,
			expected: []domain.CardContent{
				{Front: "First question", Back: "First answer"},
				{Front: "Second question", Back: "Second answer"},
			},
		},
		{
			name:     "Separator ends a card",
			input:    "Q: One\nA: 1\n---\nnot part of the answer\nQ: Two\nA: 2",
			expected: []domain.CardContent{{Front: "One", Back: "1"}, {Front: "Two", Back: "2"}},
		},
		{
			name:     "Question without answer is skipped",
			input:    "Q: Dangling\nQ: Kept\nA: yes",
			expected: []domain.CardContent{{Front: "Kept", Back: "yes"}},
		},
		{
			name:     "Answer without question is ignored",
			input:    "A: orphan\nQ: Real\nA: answer",
			expected: []domain.CardContent{{Front: "Real", Back: "answer"}},
		},
		{
			name:     "Prefixes with no space and indentation",
			input:    "  Q:Question\n\tA:Answer",
			expected: []domain.CardContent{{Front: "Question", Back: "Answer"}},
		},
		{
			name:  "No cards, just text",
			input: "This is a file with no questions.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := Parse(strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cards)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.md")
	require.NoError(t, os.WriteFile(path, []byte("# Go\n\nQ: What is a goroutine?\nA: A lightweight thread.\n"), 0o644))

	cards, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.CardContent{{Front: "What is a goroutine?", Back: "A lightweight thread."}}, cards)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
