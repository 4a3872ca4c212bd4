package practice

import "github.com/conorfennell/brainstack/internal/domain"

// Weight given to a card that has never been studied.
const unstudiedWeight = 0.7

// weight favours cards answered wrongly: 1.0 at 0% accuracy, 0.1 at 100%.
func weight(c *domain.Flashcard) float64 {
	if c.TimesStudied == 0 {
		return unstudiedWeight
	}
	return 1.0 - c.Accuracy()*0.9
}

// pick selects count distinct cards by weighted random draw without
// replacement, in the order they were drawn. Asking for every card returns
// them all in deck order.
func (e *Engine) pick(cards []*domain.Flashcard, count int) []*domain.Flashcard {
	if count >= len(cards) {
		return cards
	}

	remaining := make([]*domain.Flashcard, len(cards))
	copy(remaining, cards)
	selected := make([]*domain.Flashcard, 0, count)

	e.mu.Lock()
	defer e.mu.Unlock()

	for len(selected) < count {
		total := 0.0
		for _, c := range remaining {
			total += weight(c)
		}

		r := e.rnd.Float64() * total
		idx := len(remaining) - 1
		cum := 0.0
		for i, c := range remaining {
			cum += weight(c)
			if r < cum {
				idx = i
				break
			}
		}

		selected = append(selected, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return selected
}
