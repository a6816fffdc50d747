// Package handlers provides the arena console session handler.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mealmax/internal/battle"
	"github.com/cory-johannsen/mealmax/internal/command"
	"github.com/cory-johannsen/mealmax/internal/frontend/telnet"
	"github.com/cory-johannsen/mealmax/internal/kitchen"
	"github.com/cory-johannsen/mealmax/internal/random"
)

const welcomeBanner = telnet.Bold + telnet.BrightYellow + `
  M E A L M A X   A R E N A` + telnet.Reset + `

  Prep two meals, then let them battle.
  Type ` + telnet.Green + `help` + telnet.Reset + ` for commands, ` + telnet.Green + `quit` + telnet.Reset + ` to leave.
`

// errQuit ends the session loop without error.
var errQuit = errors.New("quit")

// ArenaHandler implements telnet.SessionHandler. Every session gets its own
// battle engine, so concurrent users prep and fight independently while
// sharing the meal catalog.
type ArenaHandler struct {
	store          kitchen.Store
	rng            random.Source
	probabilityCap float64
	registry       *command.Registry
	logger         *zap.Logger
}

// NewArenaHandler creates an ArenaHandler over the given catalog and random source.
//
// Precondition: store, rng and logger must be non-nil.
// Postcondition: Returns an ArenaHandler ready to handle sessions.
func NewArenaHandler(store kitchen.Store, rng random.Source, probabilityCap float64, logger *zap.Logger) *ArenaHandler {
	return &ArenaHandler{
		store:          store,
		rng:            rng,
		probabilityCap: probabilityCap,
		registry:       command.DefaultRegistry(),
		logger:         logger,
	}
}

// session is the per-connection state.
type session struct {
	conn   *telnet.Conn
	engine *battle.Engine
	logger *zap.Logger
}

// HandleSession implements telnet.SessionHandler. It shows the banner and
// runs the command loop until the user quits or the connection ends.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended abnormally.
func (h *ArenaHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	logger := h.logger
	if id, ok := telnet.SessionID(ctx); ok {
		logger = logger.With(zap.String("session_id", id.String()))
	}
	s := &session{
		conn:   conn,
		engine: battle.NewEngine(h.rng, h.store, h.probabilityCap, logger),
		logger: logger,
	}

	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Arena closing. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "arena> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if errors.Is(err, telnet.ErrLineTooLong) {
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Input too long (max %d characters).", telnet.MaxLineLength))
			continue
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if err := h.dispatch(ctx, s, line); err != nil {
			if errors.Is(err, errQuit) {
				logger.Info("client quit", zap.Duration("session_duration", time.Since(start)))
				return nil
			}
			return err
		}
	}
}

// dispatch parses one input line and runs the matching command. Errors from
// the catalog or engine are reported to the user; only write failures and
// quit are returned.
func (h *ArenaHandler) dispatch(ctx context.Context, s *session, line string) error {
	parsed, err := command.Parse(line)
	if err != nil {
		return s.conn.WriteLine(telnet.Colorize(telnet.Red, "Unterminated quote in input."))
	}
	if parsed.Command == "" {
		return nil
	}

	cmd, ok := h.registry.Resolve(parsed.Command)
	if !ok {
		return s.conn.WriteLine(telnet.Colorf(telnet.Red,
			"Unknown command: %s. Type 'help' for available commands.", parsed.Command))
	}
	if len(parsed.Args) < cmd.MinArgs {
		return s.conn.WriteLine(telnet.Colorf(telnet.Red, "Usage: %s", cmd.Usage))
	}

	args := parsed.Args
	switch cmd.Handler {
	case command.HandlerHelp:
		return s.conn.WriteLines(RenderHelp(h.registry)...)
	case command.HandlerQuit:
		_ = s.conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
		return errQuit
	case command.HandlerMeals:
		return h.handleMeals(ctx, s)
	case command.HandlerMeal:
		return h.handleMeal(ctx, s, args[0])
	case command.HandlerCreate:
		return h.handleCreate(ctx, s, args)
	case command.HandlerDelete:
		return h.handleDelete(ctx, s, args[0])
	case command.HandlerPrep:
		return h.handlePrep(ctx, s, args[0])
	case command.HandlerCombatants:
		return s.conn.WriteLines(RenderRoster(s.engine.Combatants())...)
	case command.HandlerClear:
		s.engine.Clear()
		return s.conn.WriteLine(telnet.Colorize(telnet.Green, "Combatants cleared."))
	case command.HandlerBattle:
		return h.handleBattle(ctx, s)
	case command.HandlerLeaderboard:
		key := ""
		if len(args) > 0 {
			key = args[0]
		}
		return h.handleLeaderboard(ctx, s, key)
	}
	return s.conn.WriteLine(telnet.Colorf(telnet.Red, "Command %s is not available.", cmd.Name))
}

func (h *ArenaHandler) handleMeals(ctx context.Context, s *session) error {
	meals, err := h.store.List(ctx)
	if err != nil {
		return h.reportError(s, "listing meals", err)
	}
	return s.conn.WriteLines(RenderMealTable(meals)...)
}

func (h *ArenaHandler) handleMeal(ctx context.Context, s *session, ref string) error {
	m, err := h.lookup(ctx, ref)
	if err != nil {
		return h.reportError(s, "looking up meal", err)
	}
	return s.conn.WriteLines(RenderMeal(m)...)
}

func (h *ArenaHandler) handleCreate(ctx context.Context, s *session, args []string) error {
	price, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return h.reportError(s, "creating meal", fmt.Errorf("%w: %q is not a number", kitchen.ErrInvalidPrice, args[2]))
	}
	m, err := h.store.Create(ctx, kitchen.NewMeal{
		Name:       args[0],
		Cuisine:    args[1],
		Price:      price,
		Difficulty: kitchen.Difficulty(args[3]),
	})
	if err != nil {
		return h.reportError(s, "creating meal", err)
	}
	s.logger.Info("meal created", zap.Int64("meal_id", m.ID), zap.String("meal", m.Name))
	return s.conn.WriteLine(telnet.Colorf(telnet.Green, "Created meal #%d %s.", m.ID, m.Name))
}

func (h *ArenaHandler) handleDelete(ctx context.Context, s *session, ref string) error {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return h.reportError(s, "deleting meal", fmt.Errorf("%w: meal id %q must be an integer", kitchen.ErrInvalidInput, ref))
	}
	if err := h.store.Delete(ctx, id); err != nil {
		return h.reportError(s, "deleting meal", err)
	}
	s.logger.Info("meal deleted", zap.Int64("meal_id", id))
	return s.conn.WriteLine(telnet.Colorf(telnet.Green, "Deleted meal #%d.", id))
}

func (h *ArenaHandler) handlePrep(ctx context.Context, s *session, ref string) error {
	m, err := h.lookup(ctx, ref)
	if err != nil {
		return h.reportError(s, "prepping meal", err)
	}
	if err := s.engine.Prep(m); err != nil {
		return h.reportError(s, "prepping meal", err)
	}
	return s.conn.WriteLine(telnet.Colorf(telnet.Green, "%s is prepped (%d/%d).",
		m.Name, len(s.engine.Combatants()), battle.RosterSize))
}

func (h *ArenaHandler) handleBattle(ctx context.Context, s *session) error {
	res, err := s.engine.Battle(ctx)
	if err != nil {
		return h.reportError(s, "resolving battle", err)
	}
	return s.conn.WriteLines(RenderResult(res)...)
}

func (h *ArenaHandler) handleLeaderboard(ctx context.Context, s *session, raw string) error {
	key, err := kitchen.ParseSortKey(raw)
	if err != nil {
		return h.reportError(s, "reading leaderboard", err)
	}
	entries, err := h.store.Leaderboard(ctx, key)
	if err != nil {
		return h.reportError(s, "reading leaderboard", err)
	}
	return s.conn.WriteLines(RenderLeaderboard(entries, key)...)
}

// lookup resolves a meal by numeric id, falling back to name.
func (h *ArenaHandler) lookup(ctx context.Context, ref string) (kitchen.Meal, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		m, err := h.store.GetByID(ctx, id)
		if !errors.Is(err, kitchen.ErrMealNotFound) {
			return m, err
		}
	}
	return h.store.GetByName(ctx, ref)
}

// reportError writes a message for err to the user and logs unexpected failures.
// The session always continues.
func (h *ArenaHandler) reportError(s *session, op string, err error) error {
	msg, internal := UserMessage(err)
	if internal {
		s.logger.Error(op, zap.Error(err))
	} else {
		s.logger.Debug(op, zap.Error(err))
	}
	return s.conn.WriteLine(telnet.Colorize(telnet.Red, msg))
}

// UserMessage maps an error to the text shown at the console. internal is
// true for failures the user cannot fix.
func UserMessage(err error) (msg string, internal bool) {
	switch {
	case errors.Is(err, kitchen.ErrMealNotFound):
		return "No such meal.", false
	case errors.Is(err, kitchen.ErrMealDeleted):
		return "That meal has been deleted.", false
	case errors.Is(err, kitchen.ErrMealExists):
		return "A meal with that name already exists.", false
	case errors.Is(err, kitchen.ErrInvalidPrice):
		return "Price must be a positive number.", false
	case errors.Is(err, kitchen.ErrInvalidDifficulty):
		return "Difficulty must be LOW, MED, or HIGH.", false
	case errors.Is(err, kitchen.ErrInvalidSortKey):
		return "Sort the leaderboard by wins or win_pct.", false
	case errors.Is(err, kitchen.ErrInvalidInput):
		return "Invalid input: " + err.Error(), false
	case errors.Is(err, battle.ErrRosterFull):
		return "Two combatants are already prepped. Battle or clear first.", false
	case errors.Is(err, battle.ErrNotEnoughCombatants):
		return "Two combatants must be prepped for a battle.", false
	case errors.Is(err, random.ErrTimeout):
		return "The random number service timed out. Try the battle again.", true
	case errors.Is(err, random.ErrMalformed):
		return "The random number service sent an invalid value.", true
	case errors.Is(err, random.ErrUnavailable):
		return "The random number service is unavailable.", true
	case errors.Is(err, kitchen.ErrPersistence):
		return "The meal database is unavailable. Nothing was changed.", true
	}
	return "An internal error occurred. Please try again.", true
}
