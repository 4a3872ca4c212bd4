// Package progress derives dashboard statistics from the stored state.
package progress

import (
	"context"

	"github.com/conorfennell/brainstack/internal/domain"
	"github.com/conorfennell/brainstack/internal/storage"
)

// Overall is the installation-wide summary.
type Overall struct {
	TotalCardsStudied  int     `json:"total_cards_studied"`
	OverallAccuracy    float64 `json:"overall_accuracy"`
	TotalStudySessions int     `json:"total_study_sessions"`
	TotalDecks         int     `json:"total_decks"`
	TotalCards         int     `json:"total_cards"`
}

// DeckProgress summarises one studied deck. TotalCards counts study events,
// not the cards in the deck.
type DeckProgress struct {
	DeckID     string  `json:"deck_id"`
	DeckName   string  `json:"deck_name"`
	TotalCards int     `json:"total_cards"`
	Accuracy   float64 `json:"accuracy"`
}

// Report bundles both views taken from one snapshot.
type Report struct {
	Overall Overall        `json:"overall"`
	Decks   []DeckProgress `json:"decks"`
}

// ComputeOverall summarises the user's totals and the deck library.
func ComputeOverall(user domain.User, decks []*domain.Deck) Overall {
	o := Overall{
		TotalCardsStudied:  user.TotalCardsStudied,
		OverallAccuracy:    user.Accuracy(),
		TotalStudySessions: user.TotalStudySessions,
		TotalDecks:         len(decks),
	}
	for _, d := range decks {
		o.TotalCards += len(d.Cards)
	}
	return o
}

// PerDeck lists decks with at least one study event, in deck order.
func PerDeck(decks []*domain.Deck) []DeckProgress {
	out := []DeckProgress{}
	for _, d := range decks {
		s := d.Stats()
		if s.TotalStudied == 0 {
			continue
		}
		out = append(out, DeckProgress{
			DeckID:     d.ID,
			DeckName:   d.Name,
			TotalCards: s.TotalStudied,
			Accuracy:   s.Accuracy,
		})
	}
	return out
}

// Service reads progress from a Store.
type Service struct {
	store *storage.Store
}

// NewService creates a progress service.
func NewService(store *storage.Store) *Service {
	return &Service{store: store}
}

// Report returns the overall and per-deck statistics.
func (s *Service) Report(ctx context.Context) (Report, error) {
	var r Report
	err := s.store.View(ctx, func(st *domain.State) error {
		r = Report{
			Overall: ComputeOverall(st.User, st.Decks),
			Decks:   PerDeck(st.Decks),
		}
		return nil
	})
	return r, err
}
