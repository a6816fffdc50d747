package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalAndAlias(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input   string
		name    string
		handler string
	}{
		{"help", "help", HandlerHelp},
		{"?", "help", HandlerHelp},
		{"meals", "meals", HandlerMeals},
		{"ls", "meals", HandlerMeals},
		{"meal", "meal", HandlerMeal},
		{"create", "create", HandlerCreate},
		{"delete", "delete", HandlerDelete},
		{"prep", "prep", HandlerPrep},
		{"combatants", "combatants", HandlerCombatants},
		{"roster", "combatants", HandlerCombatants},
		{"clear", "clear", HandlerClear},
		{"battle", "battle", HandlerBattle},
		{"fight", "battle", HandlerBattle},
		{"leaderboard", "leaderboard", HandlerLeaderboard},
		{"lb", "leaderboard", HandlerLeaderboard},
		{"quit", "quit", HandlerQuit},
		{"exit", "quit", HandlerQuit},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, ok := r.Resolve(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.name, cmd.Name)
			assert.Equal(t, tt.handler, cmd.Handler)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, ok := DefaultRegistry().Resolve("teleport")
	assert.False(t, ok)
}

func TestNewRegistry_Collisions(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "a"}, {Name: "a"}})
	assert.ErrorContains(t, err, "duplicate command name")

	_, err = NewRegistry([]Command{{Name: "a", Aliases: []string{"x"}}, {Name: "b", Aliases: []string{"x"}}})
	assert.ErrorContains(t, err, "duplicate alias")

	_, err = NewRegistry([]Command{{Name: "a"}, {Name: "b", Aliases: []string{"a"}}})
	assert.ErrorContains(t, err, "conflicts with command name")

	_, err = NewRegistry([]Command{{Name: "a", Aliases: []string{"b"}}, {Name: "b"}})
	assert.ErrorContains(t, err, "conflicts with an existing alias")

	_, err = NewRegistry([]Command{{Name: ""}})
	assert.ErrorContains(t, err, "empty name")
}

func TestCommands_SortedByCategoryThenName(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	for i := 1; i < len(cmds); i++ {
		prev, cur := cmds[i-1], cmds[i]
		if prev.Category == cur.Category {
			assert.Less(t, prev.Name, cur.Name)
		} else {
			assert.Less(t, prev.Category, cur.Category)
		}
	}
}

func TestCommandsByCategory(t *testing.T) {
	cats := DefaultRegistry().CommandsByCategory()
	assert.Len(t, cats[CategoryArena], 4)
	assert.Len(t, cats[CategorySystem], 2)
	assert.Len(t, cats[CategoryCatalog], 5)
}

func TestBuiltinCommands_UsageStartsWithName(t *testing.T) {
	for _, cmd := range BuiltinCommands() {
		assert.Regexp(t, "^"+cmd.Name+"( |$)", cmd.Usage)
	}
}

func TestPropertyResolve_EveryAliasMapsToItsCommand(t *testing.T) {
	r := DefaultRegistry()
	cmds := BuiltinCommands()
	rapid.Check(t, func(rt *rapid.T) {
		cmd := rapid.SampledFrom(cmds).Draw(rt, "cmd")
		for _, alias := range cmd.Aliases {
			got, ok := r.Resolve(alias)
			if !ok || got.Name != cmd.Name {
				rt.Fatalf("alias %q resolved to %v", alias, got)
			}
		}
	})
}
