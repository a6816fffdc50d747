// Package command provides the arena console command table and line parser.
package command

// Categories for organizing commands.
const (
	CategoryCatalog = "catalog"
	CategoryArena   = "arena"
	CategorySystem  = "system"
)

// Handler identifiers mapping commands to arena console actions.
const (
	HandlerHelp        = "help"
	HandlerMeals       = "meals"
	HandlerMeal        = "meal"
	HandlerCreate      = "create"
	HandlerDelete      = "delete"
	HandlerPrep        = "prep"
	HandlerCombatants  = "combatants"
	HandlerClear       = "clear"
	HandlerBattle      = "battle"
	HandlerLeaderboard = "leaderboard"
	HandlerQuit        = "quit"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "meal <id|name>".
	Usage string
	// Help is the short help text displayed to users.
	Help string
	// Category groups the command (catalog, arena, system).
	Category string
	// Handler maps to the arena console action.
	Handler string
	// MinArgs is the minimum number of arguments the command accepts.
	MinArgs int
}

// BuiltinCommands returns all built-in arena console commands.
func BuiltinCommands() []Command {
	return []Command{
		// Catalog commands
		{Name: "meals", Aliases: []string{"ls"}, Usage: "meals", Help: "List active meals", Category: CategoryCatalog, Handler: HandlerMeals},
		{Name: "meal", Usage: "meal <id|name>", Help: "Show one meal", Category: CategoryCatalog, Handler: HandlerMeal, MinArgs: 1},
		{Name: "create", Usage: "create <name> <cuisine> <price> <LOW|MED|HIGH>", Help: "Add a meal to the catalog", Category: CategoryCatalog, Handler: HandlerCreate, MinArgs: 4},
		{Name: "delete", Usage: "delete <id>", Help: "Remove a meal from the catalog", Category: CategoryCatalog, Handler: HandlerDelete, MinArgs: 1},
		{Name: "leaderboard", Aliases: []string{"lb"}, Usage: "leaderboard [wins|win_pct]", Help: "Rank meals by wins or win percentage", Category: CategoryCatalog, Handler: HandlerLeaderboard},

		// Arena commands
		{Name: "prep", Usage: "prep <id|name>", Help: "Prepare a meal for battle", Category: CategoryArena, Handler: HandlerPrep, MinArgs: 1},
		{Name: "combatants", Aliases: []string{"roster"}, Usage: "combatants", Help: "Show prepared combatants and their scores", Category: CategoryArena, Handler: HandlerCombatants},
		{Name: "clear", Usage: "clear", Help: "Remove all prepared combatants", Category: CategoryArena, Handler: HandlerClear},
		{Name: "battle", Aliases: []string{"fight"}, Usage: "battle", Help: "Resolve a battle between the two combatants", Category: CategoryArena, Handler: HandlerBattle},

		// System commands
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Usage: "quit", Help: "Disconnect from the arena", Category: CategorySystem, Handler: HandlerQuit},
	}
}
