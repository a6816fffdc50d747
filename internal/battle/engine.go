// Package battle resolves contests between two prepared meals.
package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mealmax/internal/kitchen"
	"github.com/cory-johannsen/mealmax/internal/random"
)

// RosterSize is the number of combatants a battle needs.
const RosterSize = 2

var (
	// ErrRosterFull is returned by Prep when two combatants are already prepped.
	ErrRosterFull = errors.New("combatant list is full, cannot add more combatants")
	// ErrNotEnoughCombatants is returned by Battle when fewer than two combatants are prepped.
	ErrNotEnoughCombatants = errors.New("two combatants must be prepped for a battle")
)

// StatsRecorder persists the outcome of a battle.
// kitchen.Store satisfies it.
type StatsRecorder interface {
	// RecordBattle applies a win to winnerID and a loss to loserID atomically.
	RecordBattle(ctx context.Context, winnerID, loserID int64) error
}

// Result describes one resolved battle.
type Result struct {
	ID     uuid.UUID
	Winner kitchen.Meal
	Loser  kitchen.Meal
	// Scores holds the combatant scores in roster order.
	Scores [RosterSize]float64
	// UpsetProbability is the chance the lower scorer wins.
	UpsetProbability float64
	// Draw is the random value compared against UpsetProbability.
	Draw float64
	// Upset is true when the lower-scoring combatant won.
	Upset bool
}

// Engine owns one roster and resolves battles between its two combatants.
// Methods are serialized by an internal mutex, but an Engine is meant to be
// owned by a single session; independent battles use independent engines.
type Engine struct {
	mu     sync.Mutex
	roster []kitchen.Meal

	rng    random.Source
	stats  StatsRecorder
	limit  float64
	logger *zap.Logger
}

// NewEngine creates an Engine with an empty roster.
// A probabilityCap outside (0, 1) selects DefaultProbabilityCap.
//
// Precondition: rng, stats and logger must be non-nil.
// Postcondition: Returns a non-nil Engine with len(Combatants()) == 0.
func NewEngine(rng random.Source, stats StatsRecorder, probabilityCap float64, logger *zap.Logger) *Engine {
	if probabilityCap <= 0 || probabilityCap >= 1 {
		probabilityCap = DefaultProbabilityCap
	}
	return &Engine{
		roster: make([]kitchen.Meal, 0, RosterSize),
		rng:    rng,
		stats:  stats,
		limit:  probabilityCap,
		logger: logger,
	}
}

// Prep appends m to the roster. Duplicate IDs are not rejected.
//
// Postcondition: On success the roster grows by one. Returns ErrRosterFull
// when the roster already holds two meals, or kitchen.ErrMealDeleted for a
// soft-deleted meal; the roster is unchanged on error.
func (e *Engine) Prep(m kitchen.Meal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.roster) >= RosterSize {
		return ErrRosterFull
	}
	if m.Deleted {
		return fmt.Errorf("prepping %q: %w", m.Name, kitchen.ErrMealDeleted)
	}
	e.roster = append(e.roster, m)
	e.logger.Debug("combatant prepped",
		zap.Int64("meal_id", m.ID),
		zap.String("meal", m.Name),
		zap.Int("roster_size", len(e.roster)),
	)
	return nil
}

// Combatants returns a copy of the roster in insertion order.
func (e *Engine) Combatants() []kitchen.Meal {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]kitchen.Meal, len(e.roster))
	copy(out, e.roster)
	return out
}

// Clear empties the roster. Calling it on an empty roster is a no-op.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.roster = e.roster[:0]
}

// Battle resolves the contest between the two prepped combatants.
//
// The upset probability p is derived from the score gap. One value r is
// drawn from the random source: r < p makes the lower scorer win, otherwise
// the higher scorer wins. Equal scores give p == 0, so the first roster slot
// wins. Stats for both meals are recorded in one call, then the loser leaves
// the roster.
//
// Postcondition: On success len(Combatants()) == 1 and holds the winner.
// On any error the roster is unchanged; ErrNotEnoughCombatants is returned
// when fewer than two meals are prepped.
func (e *Engine) Battle(ctx context.Context) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.roster) < RosterSize {
		return Result{}, ErrNotEnoughCombatants
	}
	start := time.Now()
	a, b := e.roster[0], e.roster[1]

	scoreA, err := Score(a)
	if err != nil {
		return Result{}, err
	}
	scoreB, err := Score(b)
	if err != nil {
		return Result{}, err
	}
	p := UpsetProbability(scoreA, scoreB, e.limit)

	r, err := e.rng.Float64(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("drawing random value: %w", err)
	}

	higher, lower := a, b
	if scoreB > scoreA {
		higher, lower = b, a
	}
	res := Result{
		ID:               uuid.New(),
		Winner:           higher,
		Loser:            lower,
		Scores:           [RosterSize]float64{scoreA, scoreB},
		UpsetProbability: p,
		Draw:             r,
	}
	if r < p {
		res.Winner, res.Loser, res.Upset = lower, higher, true
	}

	if err := e.stats.RecordBattle(ctx, res.Winner.ID, res.Loser.ID); err != nil {
		return Result{}, fmt.Errorf("recording battle %s: %w", res.ID, err)
	}

	res.Winner.Battles++
	res.Winner.Wins++
	res.Loser.Battles++
	e.roster = append(e.roster[:0], res.Winner)

	e.logger.Info("battle resolved",
		zap.String("battle_id", res.ID.String()),
		zap.String("winner", res.Winner.Name),
		zap.String("loser", res.Loser.Name),
		zap.Float64("score_a", scoreA),
		zap.Float64("score_b", scoreB),
		zap.Float64("upset_probability", p),
		zap.Float64("draw", r),
		zap.Bool("upset", res.Upset),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}
