package ai

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the similarity at which an answer counts as correct.
const DefaultThreshold = 0.85

// FuzzyGrader accepts answers equal to the expected one after normalization,
// or close enough to it to forgive small typos.
type FuzzyGrader struct {
	threshold float64
}

// NewFuzzyGrader creates a grader. A threshold outside (0, 1] selects
// DefaultThreshold.
func NewFuzzyGrader(threshold float64) *FuzzyGrader {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &FuzzyGrader{threshold: threshold}
}

// Judge reports whether submitted matches correctAnswer.
func (g *FuzzyGrader) Judge(correctAnswer, submitted string) bool {
	want := normalize(correctAnswer)
	got := normalize(submitted)
	if want == got {
		return true
	}
	if want == "" || got == "" {
		return false
	}
	return Similarity(want, got) >= g.threshold
}

// normalize folds case and collapses runs of whitespace. A Caser keeps
// state, so each call gets its own.
func normalize(s string) string {
	s = cases.Fold().String(norm.NFC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// Similarity scores two strings in [0, 1] as 2M/T, where M is the number of
// runes in matching blocks and T the combined rune count. A substitution
// costs two matched runes, so near misses on short words fall below the
// default threshold.
func Similarity(a, b string) float64 {
	ra, rb := runes(a), runes(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}
	return difflib.NewMatcher(ra, rb).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
