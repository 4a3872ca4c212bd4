package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TestStatus is the lifecycle position of a practice test.
type TestStatus string

const (
	StatusCreated    TestStatus = "created"
	StatusInProgress TestStatus = "in_progress"
	StatusCompleted  TestStatus = "completed"
)

// GeneratedQuestion is one question/answer pair produced from card content.
type GeneratedQuestion struct {
	Question      string `json:"question" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required"`
}

// Question belongs to exactly one practice test. UserAnswer and IsCorrect
// are nil until the question is answered and are set together.
type Question struct {
	ID            string  `json:"id"`
	Question      string  `json:"question"`
	CorrectAnswer string  `json:"correct_answer"`
	UserAnswer    *string `json:"user_answer"`
	IsCorrect     *bool   `json:"is_correct"`
}

// Answered reports whether an answer has been recorded.
func (q *Question) Answered() bool {
	return q.UserAnswer != nil
}

// PracticeTest is a generated quiz over a deck. It refers to the deck by id
// and keeps a copy of the deck name, since the deck may change or disappear.
type PracticeTest struct {
	ID          string      `json:"id"`
	DeckID      string      `json:"deck_id"`
	DeckName    string      `json:"deck_name"`
	Questions   []*Question `json:"questions"`
	IsCompleted bool        `json:"is_completed"`
	Score       *float64    `json:"score"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at"`
}

// TestProgress counts answered and correct questions of a test.
type TestProgress struct {
	TotalQuestions int     `json:"total_questions"`
	Answered       int     `json:"answered"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Unanswered     int     `json:"unanswered"`
	Score          float64 `json:"score"`
}

// NewPracticeTest builds a test for deck from generated pairs.
func NewPracticeTest(deck *Deck, generated []GeneratedQuestion) (*PracticeTest, error) {
	t := &PracticeTest{
		ID:        uuid.NewString(),
		DeckID:    deck.ID,
		DeckName:  deck.Name,
		CreatedAt: time.Now().UTC(),
		Questions: make([]*Question, 0, len(generated)),
	}
	for i, g := range generated {
		g.Question = strings.TrimSpace(g.Question)
		g.CorrectAnswer = strings.TrimSpace(g.CorrectAnswer)
		if err := ValidateStruct(g); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrGeneration, i+1, err)
		}
		t.Questions = append(t.Questions, &Question{
			ID:            uuid.NewString(),
			Question:      g.Question,
			CorrectAnswer: g.CorrectAnswer,
		})
	}
	return t, nil
}

// Status derives the lifecycle state from the questions and completion flag.
func (t *PracticeTest) Status() TestStatus {
	if t.IsCompleted {
		return StatusCompleted
	}
	for _, q := range t.Questions {
		if q.Answered() {
			return StatusInProgress
		}
	}
	return StatusCreated
}

// Question looks up a question by id.
func (t *PracticeTest) Question(id string) (*Question, error) {
	for _, q := range t.Questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, fmt.Errorf("%w: question %s in test %s", ErrNotFound, id, t.ID)
}

// CheckAnswerable returns the question if an answer may be recorded for it.
// Answers are immutable once set and a completed test accepts none.
func (t *PracticeTest) CheckAnswerable(questionID, answer string) (*Question, error) {
	q, err := t.Question(questionID)
	if err != nil {
		return nil, err
	}
	if t.IsCompleted {
		return nil, fmt.Errorf("%w: test %s is completed", ErrInvalidState, t.ID)
	}
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}
	if q.Answered() {
		return nil, fmt.Errorf("%w: question %s is already answered", ErrInvalidState, q.ID)
	}
	return q, nil
}

// RecordAnswer stores a graded answer after the same checks as CheckAnswerable.
func (t *PracticeTest) RecordAnswer(questionID, answer string, isCorrect bool) (*Question, error) {
	q, err := t.CheckAnswerable(questionID, answer)
	if err != nil {
		return nil, err
	}
	q.UserAnswer = &answer
	q.IsCorrect = &isCorrect
	return q, nil
}

// Complete closes the test and fixes its score. Unanswered questions count
// as incorrect but keep their nil answer.
func (t *PracticeTest) Complete(at time.Time) error {
	if t.IsCompleted {
		return fmt.Errorf("%w: test %s is already completed", ErrInvalidState, t.ID)
	}
	score := t.currentScore()
	t.IsCompleted = true
	t.Score = &score
	t.CompletedAt = &at
	return nil
}

// Progress reports answer counts and the running score.
func (t *PracticeTest) Progress() TestProgress {
	p := TestProgress{TotalQuestions: len(t.Questions)}
	for _, q := range t.Questions {
		if !q.Answered() {
			continue
		}
		p.Answered++
		if *q.IsCorrect {
			p.Correct++
		} else {
			p.Incorrect++
		}
	}
	p.Unanswered = p.TotalQuestions - p.Answered
	if t.Score != nil {
		p.Score = *t.Score
	} else {
		p.Score = t.currentScore()
	}
	return p
}

func (t *PracticeTest) currentScore() float64 {
	if len(t.Questions) == 0 {
		return 0
	}
	correct := 0
	for _, q := range t.Questions {
		if q.IsCorrect != nil && *q.IsCorrect {
			correct++
		}
	}
	return 100 * float64(correct) / float64(len(t.Questions))
}

func (t *PracticeTest) clone() *PracticeTest {
	cp := *t
	if t.Score != nil {
		s := *t.Score
		cp.Score = &s
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	if t.Questions == nil {
		return &cp
	}
	cp.Questions = make([]*Question, len(t.Questions))
	for i, q := range t.Questions {
		qc := *q
		if q.UserAnswer != nil {
			a := *q.UserAnswer
			qc.UserAnswer = &a
		}
		if q.IsCorrect != nil {
			c := *q.IsCorrect
			qc.IsCorrect = &c
		}
		cp.Questions[i] = &qc
	}
	return &cp
}
