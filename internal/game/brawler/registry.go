package brawler

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/brawl/content"
)

// ErrUnknownBrawler is returned when a brawler ID is not in the roster.
var ErrUnknownBrawler = errors.New("unknown brawler")

// Registry holds the roster keyed by ID. It is read-only after loading and
// safe for concurrent reads.
type Registry struct {
	defs map[string]*Definition
	ids  []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register validates def and adds it to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error if def is invalid or its ID is already registered.
func (r *Registry) Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, exists := r.defs[def.ID]; exists {
		return fmt.Errorf("brawler %q: duplicate id", def.ID)
	}
	r.defs[def.ID] = def
	r.ids = append(r.ids, def.ID)
	sort.Strings(r.ids)
	return nil
}

// Get returns the Definition for id.
//
// Postcondition: Returns ErrUnknownBrawler (wrapped) when id is not registered.
func (r *Registry) Get(id string) (*Definition, error) {
	d, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBrawler, id)
	}
	return d, nil
}

// IDs returns the sorted roster IDs.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the roster size.
func (r *Registry) Len() int { return len(r.defs) }

// LoadFS reads every *.yaml file in dir of fsys as one Definition.
//
// Precondition: dir must be a readable directory of fsys.
// Postcondition: Returns a populated Registry, or an error naming the first
// file that fails to parse or validate.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading brawler dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("loading %q: %w", p, err)
		}
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("brawler dir %q contains no definitions", dir)
	}
	return reg, nil
}

// LoadDirectory reads a roster from a directory on disk.
func LoadDirectory(dir string) (*Registry, error) {
	return LoadFS(os.DirFS(dir), ".")
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the roster embedded in the binary, loaded once per process.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = LoadFS(content.Brawlers, "brawlers")
	})
	return defaultReg, defaultErr
}
