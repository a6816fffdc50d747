package kitchen

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. It backs tests and the -memory dev mode.
// All methods are safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	meals  map[int64]*Meal
	byName map[string]int64
	nextID int64
}

// NewMemoryStore creates an empty MemoryStore. IDs start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		meals:  make(map[int64]*Meal),
		byName: make(map[string]int64),
		nextID: 1,
	}
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, n NewMeal) (Meal, error) {
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return Meal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[n.Name]; taken {
		return Meal{}, fmt.Errorf("%w: %q", ErrMealExists, n.Name)
	}

	m := &Meal{
		ID:         s.nextID,
		Name:       n.Name,
		Cuisine:    n.Cuisine,
		Price:      n.Price,
		Difficulty: n.Difficulty,
	}
	s.nextID++
	s.meals[m.ID] = m
	s.byName[m.Name] = m.ID
	return *m, nil
}

// GetByID implements Store.
func (s *MemoryStore) GetByID(_ context.Context, id int64) (Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, err := s.active(id)
	if err != nil {
		return Meal{}, err
	}
	return *m, nil
}

// GetByName implements Store.
func (s *MemoryStore) GetByName(_ context.Context, name string) (Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return Meal{}, fmt.Errorf("%w: name %q", ErrMealNotFound, name)
	}
	m := s.meals[id]
	if m.Deleted {
		return Meal{}, fmt.Errorf("%w: name %q", ErrMealDeleted, name)
	}
	return *m, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Meal, 0, len(s.meals))
	for _, m := range s.meals {
		if !m.Deleted {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.active(id)
	if err != nil {
		return err
	}
	m.Deleted = true
	return nil
}

// UpdateStats implements Store.
func (s *MemoryStore) UpdateStats(_ context.Context, id int64, outcome Outcome) error {
	if !outcome.Valid() {
		return fmt.Errorf("%w: %q, expected win or loss", ErrInvalidOutcome, string(outcome))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.active(id)
	if err != nil {
		return err
	}
	apply(m, outcome)
	return nil
}

// RecordBattle implements Store. Both meals are checked before either is touched.
func (s *MemoryStore) RecordBattle(_ context.Context, winnerID, loserID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	winner, err := s.active(winnerID)
	if err != nil {
		return err
	}
	loser, err := s.active(loserID)
	if err != nil {
		return err
	}
	apply(winner, OutcomeWin)
	apply(loser, OutcomeLoss)
	return nil
}

// Leaderboard implements Store.
func (s *MemoryStore) Leaderboard(ctx context.Context, key SortKey) ([]LeaderboardEntry, error) {
	meals, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return RankLeaderboard(meals, key)
}

// Clear implements Store. IDs restart at 1.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meals = make(map[int64]*Meal)
	s.byName = make(map[string]int64)
	s.nextID = 1
	return nil
}

// active returns the live record for id. Caller holds s.mu.
func (s *MemoryStore) active(id int64) (*Meal, error) {
	m, ok := s.meals[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrMealNotFound, id)
	}
	if m.Deleted {
		return nil, fmt.Errorf("%w: id %d", ErrMealDeleted, id)
	}
	return m, nil
}

func apply(m *Meal, outcome Outcome) {
	m.Battles++
	if outcome == OutcomeWin {
		m.Wins++
	}
}
