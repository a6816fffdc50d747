package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/mealmax/internal/kitchen"
)

const mealColumns = `id, meal, cuisine, price, difficulty, deleted, battles, wins`

// MealRepository implements kitchen.Store on the meals table.
type MealRepository struct {
	db *pgxpool.Pool
}

var _ kitchen.Store = (*MealRepository)(nil)

// NewMealRepository creates a MealRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMealRepository(db *pgxpool.Pool) *MealRepository {
	return &MealRepository{db: db}
}

// Create implements kitchen.Store.
func (r *MealRepository) Create(ctx context.Context, n kitchen.NewMeal) (kitchen.Meal, error) {
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return kitchen.Meal{}, err
	}

	m, err := scanMeal(r.db.QueryRow(ctx,
		`INSERT INTO meals (meal, cuisine, price, difficulty)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+mealColumns,
		n.Name, n.Cuisine, n.Price, string(n.Difficulty),
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return kitchen.Meal{}, fmt.Errorf("%w: %q", kitchen.ErrMealExists, n.Name)
		}
		return kitchen.Meal{}, persistence("inserting meal", err)
	}
	return m, nil
}

// GetByID implements kitchen.Store.
func (r *MealRepository) GetByID(ctx context.Context, id int64) (kitchen.Meal, error) {
	m, err := scanMeal(r.db.QueryRow(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kitchen.Meal{}, fmt.Errorf("%w: id %d", kitchen.ErrMealNotFound, id)
		}
		return kitchen.Meal{}, persistence("querying meal", err)
	}
	if m.Deleted {
		return kitchen.Meal{}, fmt.Errorf("%w: id %d", kitchen.ErrMealDeleted, id)
	}
	return m, nil
}

// GetByName implements kitchen.Store.
func (r *MealRepository) GetByName(ctx context.Context, name string) (kitchen.Meal, error) {
	m, err := scanMeal(r.db.QueryRow(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE meal = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kitchen.Meal{}, fmt.Errorf("%w: name %q", kitchen.ErrMealNotFound, name)
		}
		return kitchen.Meal{}, persistence("querying meal", err)
	}
	if m.Deleted {
		return kitchen.Meal{}, fmt.Errorf("%w: name %q", kitchen.ErrMealDeleted, name)
	}
	return m, nil
}

// List implements kitchen.Store.
func (r *MealRepository) List(ctx context.Context) ([]kitchen.Meal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE deleted = FALSE ORDER BY id`)
	if err != nil {
		return nil, persistence("listing meals", err)
	}
	defer rows.Close()

	var out []kitchen.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, persistence("scanning meal", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("iterating meals", err)
	}
	return out, nil
}

// Delete implements kitchen.Store. The row is kept with deleted = TRUE.
func (r *MealRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockActive(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE meals SET deleted = TRUE WHERE id = $1`, id); err != nil {
			return persistence("deleting meal", err)
		}
		return nil
	})
}

// UpdateStats implements kitchen.Store.
func (r *MealRepository) UpdateStats(ctx context.Context, id int64, outcome kitchen.Outcome) error {
	if !outcome.Valid() {
		return fmt.Errorf("%w: %q, expected win or loss", kitchen.ErrInvalidOutcome, string(outcome))
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockActive(ctx, tx, id); err != nil {
			return err
		}
		return applyOutcome(ctx, tx, id, outcome)
	})
}

// RecordBattle implements kitchen.Store. Rows are locked in ID order so
// concurrent battles over the same pair cannot deadlock.
func (r *MealRepository) RecordBattle(ctx context.Context, winnerID, loserID int64) error {
	first, second := winnerID, loserID
	if second < first {
		first, second = second, first
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockActive(ctx, tx, first); err != nil {
			return err
		}
		if second != first {
			if err := lockActive(ctx, tx, second); err != nil {
				return err
			}
		}
		if err := applyOutcome(ctx, tx, winnerID, kitchen.OutcomeWin); err != nil {
			return err
		}
		return applyOutcome(ctx, tx, loserID, kitchen.OutcomeLoss)
	})
}

// Leaderboard implements kitchen.Store.
func (r *MealRepository) Leaderboard(ctx context.Context, key kitchen.SortKey) ([]kitchen.LeaderboardEntry, error) {
	var order string
	switch key {
	case kitchen.SortByWins:
		order = `wins DESC, win_ratio DESC, id ASC`
	case kitchen.SortByWinPct:
		order = `win_ratio DESC, wins DESC, id ASC`
	default:
		return nil, fmt.Errorf("%w: %q", kitchen.ErrInvalidSortKey, string(key))
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+mealColumns+`, (wins * 1.0 / battles)::float8 AS win_ratio
		 FROM meals
		 WHERE deleted = FALSE AND battles > 0
		 ORDER BY `+order)
	if err != nil {
		return nil, persistence("querying leaderboard", err)
	}
	defer rows.Close()

	var out []kitchen.LeaderboardEntry
	for rows.Next() {
		var (
			e          kitchen.LeaderboardEntry
			difficulty string
			ratio      float64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Cuisine, &e.Price, &difficulty,
			&e.Deleted, &e.Battles, &e.Wins, &ratio); err != nil {
			return nil, persistence("scanning leaderboard row", err)
		}
		e.Difficulty = kitchen.Difficulty(difficulty)
		e.WinPct = kitchen.WinPercentage(ratio)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("iterating leaderboard", err)
	}
	return out, nil
}

// Clear implements kitchen.Store. Identity values restart at 1.
func (r *MealRepository) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `TRUNCATE TABLE meals RESTART IDENTITY`); err != nil {
		return persistence("clearing meals", err)
	}
	return nil
}

// lockActive locks the row for id and verifies it exists and is not deleted.
func lockActive(ctx context.Context, tx pgx.Tx, id int64) error {
	var deleted bool
	err := tx.QueryRow(ctx, `SELECT deleted FROM meals WHERE id = $1 FOR UPDATE`, id).Scan(&deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: id %d", kitchen.ErrMealNotFound, id)
		}
		return persistence("locking meal", err)
	}
	if deleted {
		return fmt.Errorf("%w: id %d", kitchen.ErrMealDeleted, id)
	}
	return nil
}

func applyOutcome(ctx context.Context, tx pgx.Tx, id int64, outcome kitchen.Outcome) error {
	query := `UPDATE meals SET battles = battles + 1 WHERE id = $1`
	if outcome == kitchen.OutcomeWin {
		query = `UPDATE meals SET battles = battles + 1, wins = wins + 1 WHERE id = $1`
	}
	if _, err := tx.Exec(ctx, query, id); err != nil {
		return persistence("updating meal stats", err)
	}
	return nil
}

func scanMeal(row pgx.Row) (kitchen.Meal, error) {
	var (
		m          kitchen.Meal
		difficulty string
	)
	err := row.Scan(&m.ID, &m.Name, &m.Cuisine, &m.Price, &difficulty, &m.Deleted, &m.Battles, &m.Wins)
	m.Difficulty = kitchen.Difficulty(difficulty)
	return m, err
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", kitchen.ErrPersistence, op, err)
}

// isDuplicateKeyError reports whether err is a unique constraint violation (SQLSTATE 23505).
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
