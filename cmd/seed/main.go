// Package main loads a meal catalog YAML file into the database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/mealmax/internal/config"
	"github.com/cory-johannsen/mealmax/internal/kitchen"
	"github.com/cory-johannsen/mealmax/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	catalogPath := flag.String("catalog", "content/meals.yaml", "path to meal catalog YAML")
	reset := flag.Bool("reset", false, "remove every meal before seeding")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	meals, err := kitchen.LoadCatalog(*catalogPath)
	if err != nil {
		log.Fatalf("loading catalog: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewMealRepository(pool.DB())
	if *reset {
		if err := repo.Clear(ctx); err != nil {
			log.Fatalf("clearing meals: %v", err)
		}
	}

	created, skipped, err := seed(ctx, repo, meals)
	if err != nil {
		log.Fatalf("seeding: %v", err)
	}
	fmt.Fprintf(os.Stdout, "seeded %d meal(s), skipped %d existing [%s]\n", created, skipped, time.Since(start))
}

// seed creates each meal, counting names that already exist as skipped.
func seed(ctx context.Context, store kitchen.Store, meals []kitchen.NewMeal) (created, skipped int, err error) {
	for _, n := range meals {
		_, err := store.Create(ctx, n)
		switch {
		case err == nil:
			created++
		case errors.Is(err, kitchen.ErrMealExists):
			skipped++
		default:
			return created, skipped, fmt.Errorf("creating %q: %w", n.Name, err)
		}
	}
	return created, skipped, nil
}
