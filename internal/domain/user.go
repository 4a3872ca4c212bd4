package domain

import "time"

const (
	DefaultUserID   = "default-user"
	DefaultUserName = "Default User"
)

// User holds the installation-wide study totals. There is exactly one.
type User struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	CreatedAt          time.Time `json:"created_at"`
	TotalCardsStudied  int       `json:"total_cards_studied"`
	TotalCorrect       int       `json:"total_correct"`
	TotalStudySessions int       `json:"total_study_sessions"`
}

// NewUser returns the default user with empty totals.
func NewUser() User {
	return User{
		ID:        DefaultUserID,
		Name:      DefaultUserName,
		CreatedAt: time.Now().UTC(),
	}
}

// RecordSession adds one study session covering cards results, correct of
// which were right.
func (u *User) RecordSession(cards, correct int) {
	u.TotalStudySessions++
	u.TotalCardsStudied += cards
	u.TotalCorrect += correct
}

// Accuracy is TotalCorrect/TotalCardsStudied, 0 before any study.
func (u *User) Accuracy() float64 {
	return ratio(u.TotalCorrect, u.TotalCardsStudied)
}
