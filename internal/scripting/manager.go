package scripting

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/internal/game/dice"
)

// policyVM is one loaded policy. An LState is single-threaded, so every call
// holds mu.
type policyVM struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	closed bool
}

// Manager owns one sandboxed LState per named policy and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same policy are
// serialized; different policies run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*policyVM
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no policies loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting: NewManager requires a non-nil roller")
	}
	if logger == nil {
		panic("scripting: NewManager requires a non-nil logger")
	}
	return &Manager{
		vms:    make(map[string]*policyVM),
		roller: roller,
		logger: logger,
	}
}

// LoadPolicy loads every *.lua file in scriptDir, in lexicographic order, into
// a fresh VM registered as name. A previously loaded policy of the same name
// is replaced.
//
// Precondition: name must be non-empty.
func (m *Manager) LoadPolicy(name, scriptDir string, instLimit int) error {
	return m.LoadPolicyFS(name, os.DirFS(scriptDir), ".", instLimit)
}

// LoadPolicyFS is LoadPolicy reading from dir within fsys.
func (m *Manager) LoadPolicyFS(name string, fsys fs.FS, dir string, instLimit int) error {
	if name == "" {
		return fmt.Errorf("scripting: policy name must not be empty")
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", dir, name, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".lua" {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	L := NewSandboxedState()
	m.RegisterModules(L, name)
	for _, f := range files {
		src, err := fs.ReadFile(fsys, f)
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: reading %q for %q: %w", f, name, err)
		}
		err = Limit(context.Background(), L, instLimit, func() error {
			return L.DoString(string(src))
		})
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", f, name, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[name]; ok {
		old.close()
	}
	m.vms[name] = &policyVM{L: L, limit: instLimit}
	m.mu.Unlock()
	m.logger.Info("scripting: policy loaded",
		zap.String("policy", name),
		zap.Int("files", len(files)),
	)
	return nil
}

// Policies returns the loaded policy names in sorted order.
func (m *Manager) Policies() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.vms))
	for n := range m.vms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CallHook calls the named Lua global function in the policy's VM with args
// converted by ToLValue. Returns (LNil, nil) if the policy or hook does not
// exist. Lua runtime errors, including an exhausted instruction budget or a
// done ctx, are logged at Warn level and yield (LNil, nil).
//
// Postcondition: Returns the first return value of the hook, or LNil. A
// non-nil error means args could not be converted.
func (m *Manager) CallHook(ctx context.Context, policy, hook string, args ...any) (lua.LValue, error) {
	m.mu.RLock()
	vm := m.vms[policy]
	m.mu.RUnlock()
	if vm == nil {
		m.logger.Info("scripting: no VM for policy",
			zap.String("policy", policy),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return lua.LNil, nil
	}
	L := vm.L
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		lv, err := ToLValue(L, a)
		if err != nil {
			return lua.LNil, fmt.Errorf("scripting: %s argument %d: %w", hook, i+1, err)
		}
		largs[i] = lv
	}

	err := Limit(ctx, L, vm.limit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("policy", policy),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM. Subsequent calls find no policy.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, vm := range m.vms {
		vm.close()
		delete(m.vms, name)
	}
}

func (vm *policyVM) close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if !vm.closed {
		vm.closed = true
		vm.L.Close()
	}
}
