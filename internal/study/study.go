// Package study applies the results of an interactive study session to a
// deck and to the user's running totals.
package study

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/domain"
	"github.com/conorfennell/brainstack/internal/storage"
)

// Result is the outcome of showing one card.
type Result struct {
	CardID    string `json:"card_id" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// Summary describes a committed session.
type Summary struct {
	DeckID       string  `json:"deck_id"`
	CardsStudied int     `json:"cards_studied"`
	Correct      int     `json:"correct"`
	Incorrect    int     `json:"incorrect"`
	Accuracy     float64 `json:"accuracy"`
}

// Apply records results against deck and user. Every card id is checked
// before the first result is counted, so an unknown id leaves both untouched.
func Apply(deck *domain.Deck, user *domain.User, results []Result) (Summary, error) {
	for _, r := range results {
		if _, err := deck.Card(r.CardID); err != nil {
			return Summary{}, err
		}
	}

	s := Summary{DeckID: deck.ID, CardsStudied: len(results)}
	for _, r := range results {
		if err := deck.RecordStudy(r.CardID, r.IsCorrect); err != nil {
			return Summary{}, err
		}
		if r.IsCorrect {
			s.Correct++
		}
	}
	s.Incorrect = s.CardsStudied - s.Correct
	if s.CardsStudied > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.CardsStudied)
	}
	user.RecordSession(s.CardsStudied, s.Correct)
	return s, nil
}

// Sequence returns the card ids of deck in study order.
func Sequence(deck *domain.Deck) []string {
	ids := make([]string, 0, len(deck.Cards))
	for _, c := range deck.Cards {
		ids = append(ids, c.ID)
	}
	return ids
}

// Engine runs study sessions against a Store.
type Engine struct {
	store *storage.Store
	log   *zap.Logger
}

// NewEngine creates a study engine.
func NewEngine(store *storage.Store, log *zap.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// RunSession applies a batch of results to the deck and the user and commits
// both in one write.
func (e *Engine) RunSession(ctx context.Context, deckID string, results []Result) (Summary, error) {
	for i := range results {
		if err := domain.ValidateStruct(results[i]); err != nil {
			return Summary{}, fmt.Errorf("result %d: %w", i+1, err)
		}
	}

	var summary Summary
	err := e.store.Update(ctx, func(s *domain.State) error {
		deck, err := s.Deck(deckID)
		if err != nil {
			return err
		}
		summary, err = Apply(deck, &s.User, results)
		return err
	})
	if err != nil {
		e.log.Warn("study session rejected", zap.String("deck_id", deckID), zap.Error(err))
		return Summary{}, err
	}

	e.log.Info("study session recorded",
		zap.String("deck_id", deckID),
		zap.Int("cards", summary.CardsStudied),
		zap.Int("correct", summary.Correct),
	)
	return summary, nil
}

// Cards returns the deck's cards in study order.
func (e *Engine) Cards(ctx context.Context, deckID string) ([]*domain.Flashcard, error) {
	var cards []*domain.Flashcard
	err := e.store.View(ctx, func(s *domain.State) error {
		deck, err := s.Deck(deckID)
		if err != nil {
			return err
		}
		cards = make([]*domain.Flashcard, 0, len(deck.Cards))
		for _, id := range Sequence(deck) {
			c, err := deck.Card(id)
			if err != nil {
				return err
			}
			cards = append(cards, c)
		}
		return nil
	})
	return cards, err
}
