package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/internal/game/dice"
)

// RegisterModules installs the engine.log and engine.dice tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: the engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, policy string) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L, policy))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState, policy string) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		fn := fn
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("policy", policy))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		expr, err := dice.Parse(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %v", err)
			return 0
		}
		res := m.roller.Roll(expr)
		t := L.NewTable()
		rolls := L.NewTable()
		for _, d := range res.Dice {
			rolls.Append(lua.LNumber(d))
		}
		L.SetField(t, "dice", rolls)
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		L.SetField(t, "total", lua.LNumber(res.Total()))
		L.Push(t)
		return 1
	}))
	L.SetField(mod, "chance", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(m.roller.Percent("script chance", L.CheckInt(1))))
		return 1
	}))
	L.SetField(mod, "range", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.roller.IntRange("script range", L.CheckInt(1), L.CheckInt(2))))
		return 1
	}))
	return mod
}

// ToLValue converts a Go value into a Lua value. Maps become tables keyed by
// string; slices become 1-based arrays.
//
// Postcondition: unsupported types yield an error.
func ToLValue(L *lua.LState, v any) (lua.LValue, error) {
	switch x := v.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return x, nil
	case bool:
		return lua.LBool(x), nil
	case int:
		return lua.LNumber(x), nil
	case int64:
		return lua.LNumber(x), nil
	case float64:
		return lua.LNumber(x), nil
	case string:
		return lua.LString(x), nil
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t, nil
	case []any:
		t := L.NewTable()
		for _, e := range x {
			lv, err := ToLValue(L, e)
			if err != nil {
				return lua.LNil, err
			}
			t.Append(lv)
		}
		return t, nil
	case map[string]any:
		t := L.NewTable()
		for k, e := range x {
			lv, err := ToLValue(L, e)
			if err != nil {
				return lua.LNil, fmt.Errorf("field %q: %w", k, err)
			}
			L.SetField(t, k, lv)
		}
		return t, nil
	default:
		return lua.LNil, fmt.Errorf("scripting: unsupported value type %T", v)
	}
}
