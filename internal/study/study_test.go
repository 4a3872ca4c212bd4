package study

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/domain"
	"github.com/conorfennell/brainstack/internal/storage"
)

func seed(t *testing.T, cards int) (*storage.Memory, *domain.Deck) {
	t.Helper()
	state := domain.NewState()
	deck, err := domain.NewDeck("Capitals", "")
	require.NoError(t, err)
	for i := 0; i < cards; i++ {
		_, err := deck.AddCard("front", "back")
		require.NoError(t, err)
	}
	state.Decks = append(state.Decks, deck)
	return storage.NewMemoryWith(state), deck
}

func load(t *testing.T, mem *storage.Memory) *domain.State {
	t.Helper()
	state, err := mem.LoadAll(context.Background())
	require.NoError(t, err)
	return state
}

func TestRunSession(t *testing.T) {
	mem, deck := seed(t, 3)
	engine := NewEngine(storage.NewStore(mem), zap.NewNop())
	c0, c1, c2 := deck.Cards[0].ID, deck.Cards[1].ID, deck.Cards[2].ID

	summary, err := engine.RunSession(context.Background(), deck.ID, []Result{
		{CardID: c0, IsCorrect: true},
		{CardID: c1, IsCorrect: false},
		{CardID: c0, IsCorrect: true},
		{CardID: c2, IsCorrect: true},
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{DeckID: deck.ID, CardsStudied: 4, Correct: 3, Incorrect: 1, Accuracy: 0.75}, summary)

	state := load(t, mem)
	got, err := state.Deck(deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Cards[0].TimesStudied)
	assert.Equal(t, 2, got.Cards[0].TimesCorrect)
	assert.Equal(t, 1, got.Cards[1].TimesStudied)
	assert.Equal(t, 0, got.Cards[1].TimesCorrect)
	assert.InDelta(t, 0.75, got.Accuracy(), 1e-9)

	assert.Equal(t, 4, state.User.TotalCardsStudied)
	assert.Equal(t, 3, state.User.TotalCorrect)
	assert.Equal(t, 1, state.User.TotalStudySessions)
}

func TestRunSessionAccuracyOverBatches(t *testing.T) {
	mem, deck := seed(t, 2)
	engine := NewEngine(storage.NewStore(mem), zap.NewNop())
	ctx := context.Background()
	c0, c1 := deck.Cards[0].ID, deck.Cards[1].ID

	_, err := engine.RunSession(ctx, deck.ID, []Result{{CardID: c0, IsCorrect: true}, {CardID: c1, IsCorrect: false}})
	require.NoError(t, err)
	_, err = engine.RunSession(ctx, deck.ID, []Result{{CardID: c1, IsCorrect: true}})
	require.NoError(t, err)

	state := load(t, mem)
	assert.Equal(t, 3, state.User.TotalCardsStudied)
	assert.Equal(t, 2, state.User.TotalCorrect)
	assert.Equal(t, 2, state.User.TotalStudySessions)
	assert.InDelta(t, 2.0/3.0, state.User.Accuracy(), 1e-9)
}

func TestRunSessionEmptyBatch(t *testing.T) {
	mem, deck := seed(t, 1)
	engine := NewEngine(storage.NewStore(mem), zap.NewNop())

	summary, err := engine.RunSession(context.Background(), deck.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.CardsStudied)
	assert.Zero(t, summary.Accuracy)

	state := load(t, mem)
	assert.Equal(t, 1, state.User.TotalStudySessions)
	assert.Zero(t, state.User.TotalCardsStudied)
	assert.Zero(t, state.Decks[0].Cards[0].TimesStudied)
}

func TestRunSessionErrors(t *testing.T) {
	testCases := []struct {
		name    string
		deckID  func(deck *domain.Deck) string
		results func(deck *domain.Deck) []Result
		prepare func(*storage.Memory)
		wantErr error
	}{
		{
			name:    "unknown deck",
			deckID:  func(*domain.Deck) string { return "missing" },
			results: func(*domain.Deck) []Result { return nil },
			wantErr: domain.ErrNotFound,
		},
		{
			name:   "unknown card anywhere in the batch",
			deckID: func(d *domain.Deck) string { return d.ID },
			results: func(d *domain.Deck) []Result {
				return []Result{{CardID: d.Cards[0].ID, IsCorrect: true}, {CardID: "nope", IsCorrect: true}}
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "blank card id",
			deckID:  func(d *domain.Deck) string { return d.ID },
			results: func(*domain.Deck) []Result { return []Result{{CardID: ""}} },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:   "save fails",
			deckID: func(d *domain.Deck) string { return d.ID },
			results: func(d *domain.Deck) []Result {
				return []Result{{CardID: d.Cards[0].ID, IsCorrect: true}}
			},
			prepare: func(m *storage.Memory) { m.FailNextSave(errors.New("disk gone")) },
			wantErr: domain.ErrIO,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mem, deck := seed(t, 2)
			if tc.prepare != nil {
				tc.prepare(mem)
			}
			engine := NewEngine(storage.NewStore(mem), zap.NewNop())

			_, err := engine.RunSession(context.Background(), tc.deckID(deck), tc.results(deck))
			assert.ErrorIs(t, err, tc.wantErr)

			state := load(t, mem)
			assert.Zero(t, state.User.TotalStudySessions)
			assert.Zero(t, state.Decks[0].Cards[0].TimesStudied)
		})
	}
}

func TestCardsInInsertionOrder(t *testing.T) {
	mem, deck := seed(t, 3)
	engine := NewEngine(storage.NewStore(mem), zap.NewNop())

	cards, err := engine.Cards(context.Background(), deck.ID)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, Sequence(deck), []string{cards[0].ID, cards[1].ID, cards[2].ID})

	_, err = engine.Cards(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
