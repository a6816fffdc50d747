package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/mealmax/internal/battle"
	"github.com/cory-johannsen/mealmax/internal/command"
	"github.com/cory-johannsen/mealmax/internal/frontend/telnet"
	"github.com/cory-johannsen/mealmax/internal/kitchen"
)

const (
	colID      = 5
	colName    = 20
	colCuisine = 14
	colPrice   = 9
	colTier    = 6
)

// RenderMealTable formats meals as an aligned, colored table.
func RenderMealTable(meals []kitchen.Meal) []string {
	if len(meals) == 0 {
		return []string{telnet.Colorize(telnet.Dim, "The catalog is empty.")}
	}
	lines := []string{telnet.Colorize(telnet.Bold, mealHeader())}
	for _, m := range meals {
		lines = append(lines, mealRow(m))
	}
	return lines
}

// RenderMeal formats a single meal with its record.
func RenderMeal(m kitchen.Meal) []string {
	return []string{
		telnet.Colorf(telnet.BrightYellow, "#%d %s", m.ID, m.Name),
		fmt.Sprintf("  cuisine:    %s", m.Cuisine),
		fmt.Sprintf("  price:      $%.2f", m.Price),
		fmt.Sprintf("  difficulty: %s", m.Difficulty),
		fmt.Sprintf("  record:     %d wins / %d battles", m.Wins, m.Battles),
	}
}

// RenderRoster lists the prepped combatants with their battle scores.
func RenderRoster(meals []kitchen.Meal) []string {
	if len(meals) == 0 {
		return []string{telnet.Colorize(telnet.Dim, "No combatants prepped.")}
	}
	lines := []string{telnet.Colorf(telnet.Bold, "Combatants (%d/%d):", len(meals), battle.RosterSize)}
	for i, m := range meals {
		score, err := battle.Score(m)
		scoreText := fmt.Sprintf("%.3f", score)
		if err != nil {
			scoreText = telnet.Colorize(telnet.Red, "unscorable")
		}
		lines = append(lines, fmt.Sprintf("  %d. %s %s score %s",
			i+1,
			telnet.PadRight(telnet.Colorize(telnet.Cyan, m.Name), colName),
			telnet.PadRight("("+m.Cuisine+")", colCuisine),
			scoreText,
		))
	}
	return lines
}

// RenderResult describes a resolved battle.
func RenderResult(res battle.Result) []string {
	lines := []string{
		telnet.Colorf(telnet.BrightYellow, "%s defeats %s!", res.Winner.Name, res.Loser.Name),
		fmt.Sprintf("  scores %.3f vs %.3f, upset chance %.1f%%, draw %.2f",
			res.Scores[0], res.Scores[1], res.UpsetProbability*100, res.Draw),
	}
	if res.Upset {
		lines = append(lines, telnet.Colorize(telnet.Magenta, "  An upset! The underdog takes it."))
	}
	lines = append(lines, telnet.Colorf(telnet.Dim, "  %s stays in the arena. battle %s", res.Winner.Name, res.ID))
	return lines
}

// RenderLeaderboard formats ranked entries.
func RenderLeaderboard(entries []kitchen.LeaderboardEntry, key kitchen.SortKey) []string {
	if len(entries) == 0 {
		return []string{telnet.Colorize(telnet.Dim, "No battles have been fought yet.")}
	}
	lines := []string{
		telnet.Colorf(telnet.Bold, "Leaderboard by %s", key),
		telnet.Colorize(telnet.Bold, fmt.Sprintf("%-4s %s %6s %8s %7s",
			"rank", telnet.PadRight("meal", colName), "wins", "battles", "win%")),
	}
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%-4d %s %6d %8d %6.1f%%",
			i+1, telnet.PadRight(e.Name, colName), e.Wins, e.Battles, e.WinPct))
	}
	return lines
}

// RenderHelp lists commands grouped by category.
func RenderHelp(reg *command.Registry) []string {
	lines := []string{telnet.Colorize(telnet.BrightWhite, "Available commands:")}
	byCat := reg.CommandsByCategory()
	for _, cat := range []string{command.CategoryCatalog, command.CategoryArena, command.CategorySystem} {
		cmds := byCat[cat]
		if len(cmds) == 0 {
			continue
		}
		lines = append(lines, telnet.Colorize(telnet.Yellow, strings.ToUpper(cat[:1])+cat[1:]))
		for _, c := range cmds {
			usage := c.Usage
			if len(c.Aliases) > 0 {
				usage += " (" + strings.Join(c.Aliases, ", ") + ")"
			}
			lines = append(lines, "  "+telnet.PadRight(telnet.Colorize(telnet.Green, usage), 50)+c.Help)
		}
	}
	return lines
}

func mealHeader() string {
	return fmt.Sprintf("%s %s %s %s %s %s",
		telnet.PadRight("id", colID),
		telnet.PadRight("meal", colName),
		telnet.PadRight("cuisine", colCuisine),
		telnet.PadRight("price", colPrice),
		telnet.PadRight("tier", colTier),
		"record")
}

func mealRow(m kitchen.Meal) string {
	return fmt.Sprintf("%s %s %s %s %s %d/%d",
		telnet.PadRight(fmt.Sprintf("%d", m.ID), colID),
		telnet.PadRight(telnet.Colorize(telnet.Cyan, m.Name), colName),
		telnet.PadRight(m.Cuisine, colCuisine),
		telnet.PadRight(fmt.Sprintf("$%.2f", m.Price), colPrice),
		telnet.PadRight(string(m.Difficulty), colTier),
		m.Wins, m.Battles)
}
