package kitchen

import "context"

// Store is the meal catalog persistence contract.
//
// Lookups never return soft-deleted meals: GetByID and GetByName report
// ErrMealDeleted for them and ErrMealNotFound for unknown keys.
type Store interface {
	// Create validates n and inserts it.
	//
	// Postcondition: Returns the stored Meal with ID set, or an error wrapping
	// ErrInvalidInput, ErrInvalidPrice, ErrInvalidDifficulty or ErrMealExists.
	Create(ctx context.Context, n NewMeal) (Meal, error)
	GetByID(ctx context.Context, id int64) (Meal, error)
	GetByName(ctx context.Context, name string) (Meal, error)
	// List returns active meals ordered by ID.
	List(ctx context.Context) ([]Meal, error)
	// Delete soft-deletes the meal with id.
	Delete(ctx context.Context, id int64) error
	// UpdateStats increments battles, and wins when outcome is OutcomeWin.
	UpdateStats(ctx context.Context, id int64, outcome Outcome) error
	// RecordBattle applies a win to winnerID and a loss to loserID atomically.
	RecordBattle(ctx context.Context, winnerID, loserID int64) error
	Leaderboard(ctx context.Context, key SortKey) ([]LeaderboardEntry, error)
	// Clear removes every meal, deleted or not.
	Clear(ctx context.Context) error
}
