package scripting_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/brawl/internal/game/dice"
	"github.com/cory-johannsen/brawl/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(1), logger)
	return scripting.NewManager(roller, logger), logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func hasLevel(logs *observer.ObservedLogs, level zapcore.Level) bool {
	for _, e := range logs.All() {
		if e.Level == level {
			return true
		}
	}
	return false
}

func TestManager_LoadPolicy_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function add(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadPolicy("house", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "house", "add", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
	assert.Equal(t, []string{"house"}, mgr.Policies())
}

func TestManager_CallHook_TableArgument(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "state.lua", `
		function pick(state)
			if state.self.health < 50 then
				return state.moves[3]
			end
			return state.moves[1]
		end
	`)
	require.NoError(t, mgr.LoadPolicy("house", dir, 0))
	state := map[string]any{
		"moves": []string{"attack", "objective", "dodge"},
		"self":  map[string]any{"health": 40},
	}
	ret, err := mgr.CallHook(context.Background(), "house", "pick", state)
	require.NoError(t, err)
	assert.Equal(t, lua.LString("dodge"), ret)
}

func TestManager_CallHook_UnsupportedArgument(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "id.lua", `function id(x) return x end`)
	require.NoError(t, mgr.LoadPolicy("house", dir, 0))
	_, err := mgr.CallHook(context.Background(), "house", "id", struct{}{})
	assert.Error(t, err)
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.LoadPolicy("house", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "house", "nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_UnknownPolicy_LogsInfo(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook(context.Background(), "nobody", "some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.InfoLevel))
}

func TestManager_CallHook_RuntimeError_WarnLog(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.LoadPolicy("house", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "house", "bad_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zapcore.WarnLevel))
}

func TestManager_CallHook_RunawayHookIsStoppedAndVMSurvives(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `
		function spin() while true do end end
		function ok() return 1 end
	`)
	require.NoError(t, mgr.LoadPolicy("house", dir, 500))
	ret, err := mgr.CallHook(context.Background(), "house", "spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)

	ret, err = mgr.CallHook(context.Background(), "house", "ok")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(1), ret)
}

func TestManager_LoadPolicy_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadPolicy("empty", t.TempDir(), 0))
	ret, err := mgr.CallHook(context.Background(), "empty", "anything")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_LoadPolicy_Errors(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	assert.Error(t, mgr.LoadPolicy("bad", dir, 0))
	assert.Error(t, mgr.LoadPolicy("missing", filepath.Join(t.TempDir(), "nope"), 0))
	assert.Error(t, mgr.LoadPolicy("", t.TempDir(), 0))
	assert.Empty(t, mgr.Policies())
}

func TestManager_LoadPolicy_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, mgr.LoadPolicy("ordered", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "ordered", "get_val")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(10), ret)
}

func TestManager_LoadPolicyFS_ReplacesExisting(t *testing.T) {
	mgr, _ := newTestManager(t)
	v1 := fstest.MapFS{"p/one.lua": {Data: []byte(`function v() return 1 end`)}}
	v2 := fstest.MapFS{"p/two.lua": {Data: []byte(`function v() return 2 end`)}}
	require.NoError(t, mgr.LoadPolicyFS("house", v1, "p", 0))
	require.NoError(t, mgr.LoadPolicyFS("house", v2, "p", 0))
	ret, err := mgr.CallHook(context.Background(), "house", "v")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestProperty_CallHookMissingPolicyNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		policy := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "policy")
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		ret, err := mgr.CallHook(context.Background(), policy, hook)
		if err != nil || ret != lua.LNil {
			rt.Fatalf("got %v, %v", ret, err)
		}
	})
}

func TestManager_CallHookConcurrentSamePolicy(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function concurrent_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadPolicy("conc", dir, 0))

	const goroutines = 10
	const callsEach = 5
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				ret, err := mgr.CallHook(context.Background(), "conc", "concurrent_hook", 1, 2)
				assert.NoError(t, err)
				assert.Equal(t, lua.LNumber(3), ret)
			}
		}()
	}
	wg.Wait()
}

func TestNewManager_PanicsOnNilArguments(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	assert.Panics(t, func() { scripting.NewManager(nil, zap.NewNop()) })
	assert.Panics(t, func() { scripting.NewManager(roller, nil) })
}

func TestManager_Close_ReleasesPolicies(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "init.lua", `function get_x() return 1 end`)
	require.NoError(t, mgr.LoadPolicy("closing", dir, 0))
	mgr.Close()
	ret, err := mgr.CallHook(context.Background(), "closing", "get_x")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Empty(t, mgr.Policies())
}
