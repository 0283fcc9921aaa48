package ai

import (
	"context"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/internal/game/combat"
	"github.com/cory-johannsen/brawl/internal/scripting"
)

// ChooseHook is the Lua global a house policy defines:
//
//	function choose_move(state) ... return index_or_move_name end
//
// state has fields mode, round, moves (1-based array of move names), self and
// opponent (health, static_health, streak, invincible, stunned, spawn_health,
// gems, goals, power_ups, brawler, level).
const ChooseHook = "choose_move"

// ScriptedChooser asks a Lua policy for the house move and falls back to a
// uniform random choice when the policy is missing, errors, or answers with
// something that is not a legal move.
type ScriptedChooser struct {
	scripts  *scripting.Manager
	policy   string
	fallback *RandomChooser
	logger   *zap.Logger
}

// NewScriptedChooser creates a ScriptedChooser for policy.
//
// Precondition: scripts and fallback must be non-nil. A nil logger disables logging.
func NewScriptedChooser(scripts *scripting.Manager, policy string, fallback *RandomChooser, logger *zap.Logger) *ScriptedChooser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptedChooser{scripts: scripts, policy: policy, fallback: fallback, logger: logger}
}

// Choose implements combat.Chooser.
func (c *ScriptedChooser) Choose(ctx context.Context, req combat.ChoiceRequest) combat.Reply {
	if req.Kind != combat.RequestMove {
		return c.fallback.Choose(ctx, req)
	}
	ret, err := c.scripts.CallHook(ctx, c.policy, ChooseHook, stateTable(req))
	if err != nil {
		c.logger.Warn("house policy call failed", zap.String("policy", c.policy), zap.Error(err))
		return c.fallback.Choose(ctx, req)
	}
	if idx, ok := moveIndex(ret, req.Moves); ok {
		return combat.Choice(idx)
	}
	if ret != lua.LNil {
		c.logger.Debug("house policy returned an illegal move",
			zap.String("policy", c.policy),
			zap.String("value", ret.String()),
		)
	}
	return c.fallback.Choose(ctx, req)
}

// moveIndex resolves a 1-based index or a move name against moves.
func moveIndex(v lua.LValue, moves []combat.Move) (int, bool) {
	switch x := v.(type) {
	case lua.LNumber:
		i := int(x) - 1
		if float64(i+1) != float64(x) || i < 0 || i >= len(moves) {
			return 0, false
		}
		return i, true
	case lua.LString:
		for i, mv := range moves {
			if mv.String() == string(x) {
				return i, true
			}
		}
	}
	return 0, false
}

func stateTable(req combat.ChoiceRequest) map[string]any {
	moves := make([]string, len(req.Moves))
	for i, mv := range req.Moves {
		moves[i] = mv.String()
	}
	return map[string]any{
		"mode":     string(req.Mode),
		"round":    req.Round,
		"moves":    moves,
		"self":     snapshotTable(req.Self),
		"opponent": snapshotTable(req.Opponent),
	}
}

func snapshotTable(s combat.Snapshot) map[string]any {
	return map[string]any{
		"brawler":       s.BrawlerID,
		"level":         s.Level,
		"health":        s.Health,
		"static_health": s.StaticHealth,
		"streak":        s.Streak,
		"invincible":    s.Invincible,
		"stunned":       s.Stunned,
		"respawning":    s.Respawning,
		"spawn_health":  s.SpawnHealth,
		"gems":          s.Gems,
		"goals":         s.Goals,
		"power_ups":     s.PowerUps,
	}
}
