package kitchen

import (
	"fmt"
	"math"
	"sort"
)

// SortKey selects the leaderboard ordering.
type SortKey string

// Leaderboard sort keys.
const (
	SortByWins   SortKey = "wins"
	SortByWinPct SortKey = "win_pct"
)

// ParseSortKey validates s as a leaderboard sort key. An empty string selects SortByWins.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortByWins:
		return SortByWins, nil
	case SortByWinPct:
		return SortByWinPct, nil
	}
	return "", fmt.Errorf("%w: %q must be wins or win_pct", ErrInvalidSortKey, s)
}

// LeaderboardEntry is a meal ranked by battle performance.
type LeaderboardEntry struct {
	Meal
	// WinPct is wins/battles as a percentage rounded to one decimal place.
	WinPct float64
}

// WinPercentage converts a win ratio into a percentage with one decimal place.
// 0.8 becomes 80.0 and 0.6667 becomes 66.7.
func WinPercentage(ratio float64) float64 {
	return math.Round(ratio*1000) / 10
}

// RankLeaderboard filters meals to active ones with at least one battle,
// computes WinPct, and sorts descending by key. Ties fall back to the other
// metric and then ascending ID so the order is stable.
//
// Postcondition: Returns a new slice; meals is not modified.
func RankLeaderboard(meals []Meal, key SortKey) ([]LeaderboardEntry, error) {
	if key != SortByWins && key != SortByWinPct {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, string(key))
	}

	entries := make([]LeaderboardEntry, 0, len(meals))
	for _, m := range meals {
		if m.Deleted || m.Battles <= 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Meal:   m,
			WinPct: WinPercentage(float64(m.Wins) / float64(m.Battles)),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		ra, rb := float64(a.Wins)/float64(a.Battles), float64(b.Wins)/float64(b.Battles)
		switch key {
		case SortByWinPct:
			if ra != rb {
				return ra > rb
			}
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
		default:
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
			if ra != rb {
				return ra > rb
			}
		}
		return a.ID < b.ID
	})
	return entries, nil
}
