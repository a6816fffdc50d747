// Package main prints the meal leaderboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cory-johannsen/mealmax/internal/config"
	"github.com/cory-johannsen/mealmax/internal/kitchen"
	"github.com/cory-johannsen/mealmax/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sortBy := flag.String("sort", "wins", "sort key: wins or win_pct")
	flag.Parse()

	key, err := kitchen.ParseSortKey(*sortBy)
	if err != nil {
		log.Fatalf("parsing sort key: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	entries, err := postgres.NewMealRepository(pool.DB()).Leaderboard(ctx, key)
	if err != nil {
		log.Fatalf("reading leaderboard: %v", err)
	}
	if err := printLeaderboard(os.Stdout, entries); err != nil {
		log.Fatalf("writing leaderboard: %v", err)
	}
}

func printLeaderboard(w io.Writer, entries []kitchen.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no battles recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tMEAL\tCUISINE\tWINS\tBATTLES\tWIN%")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%d\t%.1f\n",
			i+1, e.ID, e.Name, e.Cuisine, e.Wins, e.Battles, e.WinPct)
	}
	return tw.Flush()
}
