package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mealmax/internal/kitchen"
)

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	err := printLeaderboard(&buf, []kitchen.LeaderboardEntry{
		{Meal: kitchen.Meal{ID: 2, Name: "pasta", Cuisine: "italian", Wins: 3, Battles: 4}, WinPct: 75},
		{Meal: kitchen.Meal{ID: 1, Name: "popcorn", Cuisine: "american", Wins: 1, Battles: 3}, WinPct: 33.3},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "RANK")
	assert.Regexp(t, `^1\s+2\s+pasta\s+italian\s+3\s+4\s+75\.0$`, lines[1])
	assert.Regexp(t, `^2\s+1\s+popcorn\s+american\s+1\s+3\s+33\.3$`, lines[2])
}

func TestPrintLeaderboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printLeaderboard(&buf, nil))
	assert.Equal(t, "no battles recorded\n", buf.String())
}
