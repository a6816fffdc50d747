// Package kitchen defines the meal catalog: the Meal record, difficulty
// tiers, validation, leaderboard math and the Store contract that battle
// resolution persists through.
package kitchen

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrMealNotFound      = errors.New("meal not found")
	ErrMealDeleted       = errors.New("meal has been deleted")
	ErrMealExists        = errors.New("meal already exists")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidOutcome    = errors.New("invalid outcome")
	ErrInvalidSortKey    = errors.New("invalid sort key")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPersistence       = errors.New("persistence failure")
)

// Difficulty is the preparation tier of a meal.
type Difficulty string

// Difficulty tiers.
const (
	DifficultyLow  Difficulty = "LOW"
	DifficultyMed  Difficulty = "MED"
	DifficultyHigh Difficulty = "HIGH"
)

// ParseDifficulty converts s into a Difficulty, ignoring case and surrounding space.
//
// Postcondition: Returns a valid Difficulty or an error wrapping ErrInvalidDifficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q must be LOW, MED, or HIGH", ErrInvalidDifficulty, s)
	}
	return d, nil
}

// Valid reports whether d is one of the three known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyLow, DifficultyMed, DifficultyHigh:
		return true
	}
	return false
}

// Penalty is the amount subtracted from a meal's battle score.
// Harder meals are penalized less.
//
// Postcondition: Returns 1, 2 or 3 for HIGH, MED, LOW; otherwise ErrInvalidDifficulty.
func (d Difficulty) Penalty() (float64, error) {
	switch d {
	case DifficultyHigh:
		return 1, nil
	case DifficultyMed:
		return 2, nil
	case DifficultyLow:
		return 3, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDifficulty, string(d))
}

// Outcome is the result of a battle for one meal.
type Outcome string

// Battle outcomes.
const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeLoss
}

// Meal is a catalog entry and a potential battle combatant.
type Meal struct {
	ID         int64
	Name       string
	Cuisine    string
	Price      float64
	Difficulty Difficulty
	Deleted    bool
	Battles    int
	Wins       int
}

// NewMeal holds the caller-supplied fields for creating a meal.
type NewMeal struct {
	Name       string     `yaml:"name"`
	Cuisine    string     `yaml:"cuisine"`
	Price      float64    `yaml:"price"`
	Difficulty Difficulty `yaml:"difficulty"`
}

// Validate checks the creation invariants for a meal.
//
// Postcondition: Returns nil, or an error wrapping ErrInvalidInput,
// ErrInvalidPrice or ErrInvalidDifficulty.
func (n NewMeal) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: meal name must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(n.Cuisine) == "" {
		return fmt.Errorf("%w: cuisine must not be empty", ErrInvalidInput)
	}
	if math.IsNaN(n.Price) || math.IsInf(n.Price, 0) || n.Price <= 0 {
		return fmt.Errorf("%w: %v, price must be a positive number", ErrInvalidPrice, n.Price)
	}
	if !n.Difficulty.Valid() {
		return fmt.Errorf("%w: %q must be LOW, MED, or HIGH", ErrInvalidDifficulty, string(n.Difficulty))
	}
	return nil
}

// Normalize trims surrounding whitespace and upper-cases the difficulty.
func (n NewMeal) Normalize() NewMeal {
	return NewMeal{
		Name:       strings.TrimSpace(n.Name),
		Cuisine:    strings.TrimSpace(n.Cuisine),
		Price:      n.Price,
		Difficulty: Difficulty(strings.ToUpper(strings.TrimSpace(string(n.Difficulty)))),
	}
}
