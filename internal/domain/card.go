package domain

import "time"

// Flashcard is a single front/back card owned by exactly one deck.
// TimesStudied and TimesCorrect are the source of truth for its statistics;
// accuracy is always derived from them.
type Flashcard struct {
	ID           string    `json:"id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	CreatedAt    time.Time `json:"created_at"`
	TimesStudied int       `json:"times_studied"`
	TimesCorrect int       `json:"times_correct"`
}

// CardContent is the text of a card without identity or statistics. It is
// what the markdown parser produces and what question generation consumes.
type CardContent struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// Content returns the card's text.
func (c *Flashcard) Content() CardContent {
	return CardContent{Front: c.Front, Back: c.Back}
}

// Accuracy returns TimesCorrect/TimesStudied, or 0 for a card never studied.
func (c *Flashcard) Accuracy() float64 {
	return ratio(c.TimesCorrect, c.TimesStudied)
}

// TimesIncorrect is the number of study events answered wrong.
func (c *Flashcard) TimesIncorrect() int {
	return c.TimesStudied - c.TimesCorrect
}

func (c *Flashcard) record(isCorrect bool) {
	c.TimesStudied++
	if isCorrect {
		c.TimesCorrect++
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
