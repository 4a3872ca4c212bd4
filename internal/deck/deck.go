// Package deck manages the deck library: decks, their cards and bulk imports.
package deck

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/domain"
	"github.com/conorfennell/brainstack/internal/knol"
	"github.com/conorfennell/brainstack/internal/storage"
)

// Summary is a deck listing entry.
type Summary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CardCount   int              `json:"card_count"`
	Stats       domain.DeckStats `json:"stats"`
}

// ImportResult counts what an import did.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Service is the deck library.
type Service struct {
	store *storage.Store
	log   *zap.Logger
}

// NewService creates a deck service.
func NewService(store *storage.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// CreateDeck adds an empty deck.
func (s *Service) CreateDeck(ctx context.Context, name, description string) (*domain.Deck, error) {
	d, err := domain.NewDeck(name, description)
	if err != nil {
		return nil, err
	}
	err = s.store.Update(ctx, func(st *domain.State) error {
		st.Decks = append(st.Decks, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("deck created", zap.String("deck_id", d.ID), zap.String("name", d.Name))
	return d, nil
}

// ListDecks returns a summary of every deck in creation order.
func (s *Service) ListDecks(ctx context.Context) ([]Summary, error) {
	out := []Summary{}
	err := s.store.View(ctx, func(st *domain.State) error {
		for _, d := range st.Decks {
			out = append(out, Summary{
				ID:          d.ID,
				Name:        d.Name,
				Description: d.Description,
				CardCount:   len(d.Cards),
				Stats:       d.Stats(),
			})
		}
		return nil
	})
	return out, err
}

// GetDeck returns a deck with its cards.
func (s *Service) GetDeck(ctx context.Context, deckID string) (*domain.Deck, error) {
	var d *domain.Deck
	err := s.store.View(ctx, func(st *domain.State) error {
		var err error
		d, err = st.Deck(deckID)
		return err
	})
	return d, err
}

// DeleteDeck removes a deck and its cards. Practice tests built from it stay.
func (s *Service) DeleteDeck(ctx context.Context, deckID string) error {
	err := s.store.Update(ctx, func(st *domain.State) error {
		return st.RemoveDeck(deckID)
	})
	if err != nil {
		return err
	}
	s.log.Info("deck deleted", zap.String("deck_id", deckID))
	return nil
}

// AddCard appends a card to a deck.
func (s *Service) AddCard(ctx context.Context, deckID, front, back string) (*domain.Flashcard, error) {
	var card *domain.Flashcard
	err := s.store.Update(ctx, func(st *domain.State) error {
		d, err := st.Deck(deckID)
		if err != nil {
			return err
		}
		card, err = d.AddCard(front, back)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("card added", zap.String("deck_id", deckID), zap.String("card_id", card.ID))
	return card, nil
}

// RemoveCard deletes a card from the given deck.
func (s *Service) RemoveCard(ctx context.Context, deckID, cardID string) error {
	return s.store.Update(ctx, func(st *domain.State) error {
		d, err := st.Deck(deckID)
		if err != nil {
			return err
		}
		return d.RemoveCard(cardID)
	})
}

// DeleteCard deletes a card from whichever deck holds it.
func (s *Service) DeleteCard(ctx context.Context, cardID string) error {
	return s.store.Update(ctx, func(st *domain.State) error {
		for _, d := range st.Decks {
			if _, err := d.Card(cardID); err == nil {
				return d.RemoveCard(cardID)
			}
		}
		return fmt.Errorf("%w: card %s", domain.ErrNotFound, cardID)
	})
}

// ImportCards appends cards to a deck, skipping any whose content already
// exists in it. Either every new card is stored or none is.
func (s *Service) ImportCards(ctx context.Context, deckID string, cards []domain.CardContent) (ImportResult, error) {
	var res ImportResult
	err := s.store.Update(ctx, func(st *domain.State) error {
		res = ImportResult{}
		d, err := st.Deck(deckID)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(d.Cards)+len(cards))
		for _, c := range d.Cards {
			seen[knol.Hash(c.Content())] = true
		}
		for _, c := range cards {
			h := knol.Hash(c)
			if seen[h] {
				res.Skipped++
				continue
			}
			if _, err := d.AddCard(c.Front, c.Back); err != nil {
				return err
			}
			seen[h] = true
			res.Added++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	s.log.Info("cards imported",
		zap.String("deck_id", deckID),
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
