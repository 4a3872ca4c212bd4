package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck is a named, ordered collection of flashcards. Card order is insertion
// order and doubles as the default study sequence.
type Deck struct {
	ID          string       `json:"id"`
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	Cards       []*Flashcard `json:"cards"`
}

// DeckStats summarises the study history of a deck.
type DeckStats struct {
	TotalCards     int     `json:"total_cards"`
	TotalStudied   int     `json:"total_studied"`
	TotalCorrect   int     `json:"total_correct"`
	TotalIncorrect int     `json:"total_incorrect"`
	Accuracy       float64 `json:"accuracy"`
}

// NewDeck creates an empty deck. The name must not be blank.
func NewDeck(name, description string) (*Deck, error) {
	d := &Deck{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := ValidateStruct(d); err != nil {
		return nil, err
	}
	return d, nil
}

// AddCard appends a new card with zeroed statistics.
func (d *Deck) AddCard(front, back string) (*Flashcard, error) {
	content := CardContent{Front: strings.TrimSpace(front), Back: strings.TrimSpace(back)}
	if err := ValidateStruct(content); err != nil {
		return nil, err
	}
	card := &Flashcard{
		ID:        uuid.NewString(),
		Front:     content.Front,
		Back:      content.Back,
		CreatedAt: time.Now().UTC(),
	}
	d.Cards = append(d.Cards, card)
	return card, nil
}

// RemoveCard deletes the card with the given id from the deck.
func (d *Deck) RemoveCard(id string) error {
	for i, c := range d.Cards {
		if c.ID == id {
			d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: card %s in deck %s", ErrNotFound, id, d.ID)
}

// Card looks up a card by id.
func (d *Deck) Card(id string) (*Flashcard, error) {
	for _, c := range d.Cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: card %s in deck %s", ErrNotFound, id, d.ID)
}

// RecordStudy counts one study event for a card.
func (d *Deck) RecordStudy(cardID string, isCorrect bool) error {
	c, err := d.Card(cardID)
	if err != nil {
		return err
	}
	c.record(isCorrect)
	return nil
}

// Accuracy is the ratio of correct study events to all study events across
// the deck's cards, 0 if nothing has been studied.
func (d *Deck) Accuracy() float64 {
	s := d.Stats()
	return s.Accuracy
}

// Stats aggregates the counters of every card in the deck.
func (d *Deck) Stats() DeckStats {
	s := DeckStats{TotalCards: len(d.Cards)}
	for _, c := range d.Cards {
		s.TotalStudied += c.TimesStudied
		s.TotalCorrect += c.TimesCorrect
	}
	s.TotalIncorrect = s.TotalStudied - s.TotalCorrect
	s.Accuracy = ratio(s.TotalCorrect, s.TotalStudied)
	return s
}

func (d *Deck) clone() *Deck {
	cp := *d
	if d.Cards != nil {
		cp.Cards = make([]*Flashcard, len(d.Cards))
		for i, c := range d.Cards {
			card := *c
			cp.Cards[i] = &card
		}
	}
	return &cp
}
