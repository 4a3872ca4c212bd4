package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	testCases := []struct {
		name    string
		deck    string
		wantErr bool
	}{
		{name: "valid name", deck: "Spanish", wantErr: false},
		{name: "empty name", deck: "", wantErr: true},
		{name: "blank name", deck: "   ", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewDeck(tc.deck, "desc")
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, d.ID)
			assert.Equal(t, tc.deck, d.Name)
			assert.Empty(t, d.Cards)
		})
	}
}

func TestDeckAddCard(t *testing.T) {
	testCases := []struct {
		name    string
		front   string
		back    string
		wantErr bool
	}{
		{name: "valid card", front: "hola", back: "hello"},
		{name: "trims whitespace", front: "  adios ", back: " bye\n"},
		{name: "empty front", front: "", back: "hello", wantErr: true},
		{name: "empty back", front: "hola", back: "", wantErr: true},
		{name: "whitespace back", front: "hola", back: "  ", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewDeck("Spanish", "")
			require.NoError(t, err)

			card, err := d.AddCard(tc.front, tc.back)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Empty(t, d.Cards)
				return
			}
			require.NoError(t, err)
			require.Len(t, d.Cards, 1)
			assert.Same(t, card, d.Cards[0])
			assert.Zero(t, card.TimesStudied)
			assert.Zero(t, card.TimesCorrect)
		})
	}
}

func TestDeckRemoveCard(t *testing.T) {
	d, err := NewDeck("Spanish", "")
	require.NoError(t, err)
	a, _ := d.AddCard("uno", "one")
	b, _ := d.AddCard("dos", "two")

	require.NoError(t, d.RemoveCard(a.ID))
	require.Len(t, d.Cards, 1)
	assert.Equal(t, b.ID, d.Cards[0].ID)

	assert.ErrorIs(t, d.RemoveCard(a.ID), ErrNotFound)
}

func TestReAddedCardHasFreshStatistics(t *testing.T) {
	d, err := NewDeck("Spanish", "")
	require.NoError(t, err)
	card, _ := d.AddCard("uno", "one")
	require.NoError(t, d.RecordStudy(card.ID, true))
	require.NoError(t, d.RecordStudy(card.ID, false))

	require.NoError(t, d.RemoveCard(card.ID))
	again, err := d.AddCard("uno", "one")
	require.NoError(t, err)

	assert.NotEqual(t, card.ID, again.ID)
	assert.Zero(t, again.TimesStudied)
	assert.Zero(t, again.TimesCorrect)
	assert.Zero(t, d.Accuracy())
}

func TestDeckRecordStudy(t *testing.T) {
	d, err := NewDeck("Spanish", "")
	require.NoError(t, err)
	card, _ := d.AddCard("uno", "one")

	require.NoError(t, d.RecordStudy(card.ID, true))
	require.NoError(t, d.RecordStudy(card.ID, false))
	require.NoError(t, d.RecordStudy(card.ID, true))

	assert.Equal(t, 3, card.TimesStudied)
	assert.Equal(t, 2, card.TimesCorrect)
	assert.Equal(t, 1, card.TimesIncorrect())
	assert.InDelta(t, 2.0/3.0, card.Accuracy(), 1e-9)

	assert.ErrorIs(t, d.RecordStudy("missing", true), ErrNotFound)
	assert.Equal(t, 3, card.TimesStudied)
}

func TestDeckStats(t *testing.T) {
	testCases := []struct {
		name     string
		results  [][]bool
		expected DeckStats
	}{
		{
			name:     "never studied",
			results:  [][]bool{{}, {}},
			expected: DeckStats{TotalCards: 2},
		},
		{
			name:    "mixed results",
			results: [][]bool{{true, true}, {false, true}},
			expected: DeckStats{
				TotalCards:     2,
				TotalStudied:   4,
				TotalCorrect:   3,
				TotalIncorrect: 1,
				Accuracy:       0.75,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewDeck("Deck", "")
			require.NoError(t, err)
			for i, results := range tc.results {
				card, err := d.AddCard("front", "back")
				require.NoError(t, err, "card %d", i)
				for _, r := range results {
					require.NoError(t, d.RecordStudy(card.ID, r))
				}
			}
			assert.Equal(t, tc.expected, d.Stats())
			assert.Equal(t, tc.expected.Accuracy, d.Accuracy())
		})
	}
}

func TestStateClone(t *testing.T) {
	s := NewState()
	d, err := NewDeck("Spanish", "")
	require.NoError(t, err)
	card, _ := d.AddCard("uno", "one")
	s.Decks = append(s.Decks, d)
	pt, err := NewPracticeTest(d, []GeneratedQuestion{{Question: "uno?", CorrectAnswer: "one"}})
	require.NoError(t, err)
	s.Tests = append(s.Tests, pt)

	cp := s.Clone()
	assert.Equal(t, s, cp)

	require.NoError(t, cp.Decks[0].RecordStudy(card.ID, true))
	_, err = cp.Tests[0].RecordAnswer(pt.Questions[0].ID, "one", true)
	require.NoError(t, err)
	cp.User.RecordSession(1, 1)

	assert.Zero(t, card.TimesStudied)
	assert.False(t, pt.Questions[0].Answered())
	assert.Zero(t, s.User.TotalStudySessions)
}

func TestStateRemoveDeckKeepsTests(t *testing.T) {
	s := NewState()
	d, err := NewDeck("Spanish", "")
	require.NoError(t, err)
	s.Decks = append(s.Decks, d)
	pt, err := NewPracticeTest(d, []GeneratedQuestion{{Question: "q", CorrectAnswer: "a"}})
	require.NoError(t, err)
	s.Tests = append(s.Tests, pt)

	require.NoError(t, s.RemoveDeck(d.ID))
	_, err = s.Deck(d.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Test(pt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spanish", got.DeckName)

	assert.ErrorIs(t, s.RemoveDeck(d.ID), ErrNotFound)
}
