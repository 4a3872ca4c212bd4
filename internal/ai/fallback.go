package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/domain"
)

// Generator matches practice.Generator.
type Generator interface {
	GenerateQuestions(ctx context.Context, cards []domain.CardContent, count int) ([]domain.GeneratedQuestion, error)
}

// Fallback builds questions straight from the cards without any model.
type Fallback struct{}

// GenerateQuestions asks for the back of each card, cycling through the cards
// when more questions than cards are requested.
func (Fallback) GenerateQuestions(_ context.Context, cards []domain.CardContent, count int) ([]domain.GeneratedQuestion, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("no cards to generate from")
	}
	out := make([]domain.GeneratedQuestion, count)
	for i := range out {
		c := cards[i%len(cards)]
		out[i] = domain.GeneratedQuestion{
			Question:      fmt.Sprintf("What is the answer to: %s?", c.Front),
			CorrectAnswer: c.Back,
		}
	}
	return out, nil
}

type withFallback struct {
	primary  Generator
	fallback Generator
	log      *zap.Logger
}

// WithFallback returns a generator that uses fallback whenever primary fails.
func WithFallback(primary, fallback Generator, log *zap.Logger) Generator {
	return &withFallback{primary: primary, fallback: fallback, log: log}
}

func (g *withFallback) GenerateQuestions(ctx context.Context, cards []domain.CardContent, count int) ([]domain.GeneratedQuestion, error) {
	out, err := g.primary.GenerateQuestions(ctx, cards, count)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	g.log.Warn("question generation failed, using fallback", zap.Error(err))
	return g.fallback.GenerateQuestions(ctx, cards, count)
}
