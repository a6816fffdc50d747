package battle

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/cory-johannsen/mealmax/internal/kitchen"
)

// DefaultProbabilityCap bounds the upset probability so no score gap makes
// the outcome certain.
const DefaultProbabilityCap = 0.99

// Score computes a meal's battle strength:
//
//	price × characters(cuisine) − penalty(difficulty)
//
// with penalties HIGH=1, MED=2, LOW=3.
//
// Postcondition: Deterministic for a given meal; returns an error wrapping
// kitchen.ErrInvalidDifficulty for an unknown tier.
func Score(m kitchen.Meal) (float64, error) {
	penalty, err := m.Difficulty.Penalty()
	if err != nil {
		return 0, fmt.Errorf("scoring meal %q: %w", m.Name, err)
	}
	return m.Price*float64(utf8.RuneCountInString(m.Cuisine)) - penalty, nil
}

// UpsetProbability maps the gap between two scores onto [0, limit]:
//
//	min(1 − exp(−|a − b| / 100), limit)
//
// It is zero for equal scores and rises monotonically with the gap.
//
// Precondition: 0 < limit < 1.
func UpsetProbability(a, b, limit float64) float64 {
	delta := math.Abs(a-b) / 100
	return math.Min(1-math.Exp(-delta), limit)
}
