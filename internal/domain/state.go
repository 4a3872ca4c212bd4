package domain

import "fmt"

// State is everything the application persists: the single user, the decks
// with their cards and the practice tests. It is loaded and saved as a unit.
type State struct {
	User  User            `json:"user"`
	Decks []*Deck         `json:"decks"`
	Tests []*PracticeTest `json:"tests"`
}

// NewState returns an empty state with the default user.
func NewState() *State {
	return &State{User: NewUser()}
}

// Deck looks up a deck by id.
func (s *State) Deck(id string) (*Deck, error) {
	for _, d := range s.Decks {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: deck %s", ErrNotFound, id)
}

// RemoveDeck deletes a deck and, with it, all of its cards. Practice tests
// generated from the deck are left alone.
func (s *State) RemoveDeck(id string) error {
	for i, d := range s.Decks {
		if d.ID == id {
			s.Decks = append(s.Decks[:i], s.Decks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: deck %s", ErrNotFound, id)
}

// Test looks up a practice test by id.
func (s *State) Test(id string) (*PracticeTest, error) {
	for _, t := range s.Tests {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: practice test %s", ErrNotFound, id)
}

// RemoveTest deletes a practice test regardless of its completion state.
func (s *State) RemoveTest(id string) error {
	for i, t := range s.Tests {
		if t.ID == id {
			s.Tests = append(s.Tests[:i], s.Tests[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: practice test %s", ErrNotFound, id)
}

// Clone returns a deep copy that shares no pointers with s.
func (s *State) Clone() *State {
	cp := &State{User: s.User}
	if s.Decks != nil {
		cp.Decks = make([]*Deck, len(s.Decks))
		for i, d := range s.Decks {
			cp.Decks[i] = d.clone()
		}
	}
	if s.Tests != nil {
		cp.Tests = make([]*PracticeTest, len(s.Tests))
		for i, t := range s.Tests {
			cp.Tests[i] = t.clone()
		}
	}
	return cp
}
