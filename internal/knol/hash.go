// Package knol identifies card content independently of formatting, so an
// imported card can be recognised when it is imported again.
package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/conorfennell/brainstack/internal/domain"
)

// Normalize joins the front and back after cleaning each side: Unicode NFC,
// lower case, LF line endings and no surrounding whitespace.
func Normalize(card domain.CardContent) string {
	normalizePart := func(part string) string {
		p := norm.NFC.String(part)
		p = strings.ToLower(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return strings.TrimSpace(p)
	}

	// The newline keeps "ab"+"c" and "a"+"bc" apart.
	return normalizePart(card.Front) + "\n" + normalizePart(card.Back)
}

// Hash returns the hex SHA-256 of the normalized card.
func Hash(card domain.CardContent) string {
	sum := sha256.Sum256([]byte(Normalize(card)))
	return fmt.Sprintf("%x", sum)
}
