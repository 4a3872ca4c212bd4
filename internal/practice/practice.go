// Package practice creates, answers and scores AI-generated practice tests.
package practice

//go:generate mockgen -source=practice.go -destination=mock/practice_mock.go

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/domain"
	"github.com/conorfennell/brainstack/internal/storage"
)

// Generator turns card content into question/answer pairs. Implementations
// should return exactly count pairs; the engine rejects anything else.
type Generator interface {
	GenerateQuestions(ctx context.Context, cards []domain.CardContent, count int) ([]domain.GeneratedQuestion, error)
}

// Grader decides whether a submitted answer matches the expected one.
type Grader interface {
	Judge(correctAnswer, submitted string) bool
}

// Engine drives the practice test lifecycle.
type Engine struct {
	store     *storage.Store
	generator Generator
	grader    Grader
	log       *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithRand fixes the source used to pick cards.
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) { e.rnd = rnd }
}

// WithClock replaces time.Now for completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a practice engine.
func NewEngine(store *storage.Store, generator Generator, grader Grader, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		generator: generator,
		grader:    grader,
		log:       log,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create generates a test of numQuestions questions over the deck. The count
// is clamped to [1, number of cards]. Nothing is stored unless generation
// succeeds with exactly that many well-formed pairs.
func (e *Engine) Create(ctx context.Context, deckID string, numQuestions int) (*domain.PracticeTest, error) {
	var deck *domain.Deck
	err := e.store.View(ctx, func(s *domain.State) error {
		var err error
		deck, err = s.Deck(deckID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(deck.Cards) == 0 {
		return nil, fmt.Errorf("%w: deck %s has no cards", domain.ErrInvalidInput, deckID)
	}

	count := clamp(numQuestions, 1, len(deck.Cards))
	picked := e.pick(deck.Cards, count)
	contents := make([]domain.CardContent, len(picked))
	for i, c := range picked {
		contents[i] = c.Content()
	}

	// The generator may be slow, so it runs outside the store lock.
	generated, err := e.generator.GenerateQuestions(ctx, contents, count)
	if err != nil {
		e.log.Error("question generation failed", zap.String("deck_id", deckID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if len(generated) != count {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", domain.ErrGeneration, count, len(generated))
	}

	var test *domain.PracticeTest
	err = e.store.Update(ctx, func(s *domain.State) error {
		current, err := s.Deck(deckID)
		if err != nil {
			return err
		}
		test, err = domain.NewPracticeTest(current, generated)
		if err != nil {
			return err
		}
		s.Tests = append(s.Tests, test)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("practice test created",
		zap.String("test_id", test.ID),
		zap.String("deck_id", deckID),
		zap.Int("questions", count),
	)
	return test, nil
}

// SubmitAnswer grades and stores the answer to one question. Answers are
// final: a second submission is rejected and the first one kept.
func (e *Engine) SubmitAnswer(ctx context.Context, testID, questionID, answer string) (*domain.Question, error) {
	var answered *domain.Question
	err := e.store.Update(ctx, func(s *domain.State) error {
		test, err := s.Test(testID)
		if err != nil {
			return err
		}
		q, err := test.CheckAnswerable(questionID, answer)
		if err != nil {
			return err
		}
		answered, err = test.RecordAnswer(questionID, answer, e.grader.Judge(q.CorrectAnswer, answer))
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Debug("answer recorded",
		zap.String("test_id", testID),
		zap.String("question_id", questionID),
		zap.Bool("correct", *answered.IsCorrect),
	)
	return answered, nil
}

// Complete closes the test and fixes its score.
func (e *Engine) Complete(ctx context.Context, testID string) (*domain.PracticeTest, error) {
	var test *domain.PracticeTest
	err := e.store.Update(ctx, func(s *domain.State) error {
		var err error
		test, err = s.Test(testID)
		if err != nil {
			return err
		}
		return test.Complete(e.now())
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("practice test completed", zap.String("test_id", testID), zap.Float64("score", *test.Score))
	return test, nil
}

// Delete removes a test in any state. The deck is not touched.
func (e *Engine) Delete(ctx context.Context, testID string) error {
	err := e.store.Update(ctx, func(s *domain.State) error {
		return s.RemoveTest(testID)
	})
	if err != nil {
		return err
	}
	e.log.Info("practice test deleted", zap.String("test_id", testID))
	return nil
}

// Get returns one test.
func (e *Engine) Get(ctx context.Context, testID string) (*domain.PracticeTest, error) {
	var test *domain.PracticeTest
	err := e.store.View(ctx, func(s *domain.State) error {
		var err error
		test, err = s.Test(testID)
		return err
	})
	return test, err
}

// List returns all tests, or only those of deckID when it is not empty.
func (e *Engine) List(ctx context.Context, deckID string) ([]*domain.PracticeTest, error) {
	tests := []*domain.PracticeTest{}
	err := e.store.View(ctx, func(s *domain.State) error {
		for _, t := range s.Tests {
			if deckID == "" || t.DeckID == deckID {
				tests = append(tests, t)
			}
		}
		return nil
	})
	return tests, err
}

// Progress returns the answer counts and running score of a test.
func (e *Engine) Progress(ctx context.Context, testID string) (domain.TestProgress, error) {
	test, err := e.Get(ctx, testID)
	if err != nil {
		return domain.TestProgress{}, err
	}
	return test.Progress(), nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
