// SPDX-License-Identifier: MPL-2.0

package overrides

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/alfine/alfine/pkg/coord"
	"github.com/alfine/alfine/pkg/ivymod"
)

// ErrNoDirectory is returned by Install when the store has no directory.
var ErrNoDirectory = errors.New("override store has no directory")

type (
	// Store holds local module overrides keyed by coordinate.
	// It is safe for concurrent use.
	Store struct {
		mu      sync.RWMutex
		modules map[coord.Coordinate]*ivymod.Module
		dir     string
	}

	// Option configures a Store.
	Option func(*Store)
)

// WithDir backs the store with an on-disk resolver directory.
func WithDir(dir string) Option {
	return func(s *Store) {
		s.dir = dir
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{modules: make(map[coord.Coordinate]*ivymod.Module)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the on-disk resolver directory, or "" for a memory-only store.
func (s *Store) Dir() string { return s.dir }

// Put adds m to the store, replacing any earlier override for its coordinate.
func (s *Store) Put(m *ivymod.Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[m.ID()] = m
}

// Lookup returns the override for id. Overrides added with Put win; otherwise
// a descriptor previously installed in the store directory is loaded, and
// cached for later lookups.
func (s *Store) Lookup(id coord.Coordinate) (*ivymod.Module, bool, error) {
	s.mu.RLock()
	m, ok := s.modules[id]
	s.mu.RUnlock()
	if ok {
		return m, true, nil
	}
	if s.dir == "" {
		return nil, false, nil
	}

	path := s.DescriptorPath(id)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	m, err := ivymod.LoadDescriptorFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load installed override %s: %w", id, err)
	}
	if m.ID() != id {
		return nil, false, &ivymod.MalformedModuleError{
			Module: id,
			Source: path,
			Reason: fmt.Sprintf("descriptor declares %s", m.ID()),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.modules[id]; ok {
		return existing, true, nil
	}
	s.modules[id] = m
	return m, true, nil
}

// Has reports whether an override for id has been added with Put or Install.
func (s *Store) Has(id coord.Coordinate) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.modules[id]
	return ok
}

// Len returns the number of in-memory overrides.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.modules)
}

// Coordinates returns the coordinates of in-memory overrides, sorted.
func (s *Store) Coordinates() []coord.Coordinate {
	s.mu.RLock()
	out := make([]coord.Coordinate, 0, len(s.modules))
	for id := range s.modules {
		out = append(out, id)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, coord.Compare)
	return out
}

// DescriptorPath returns where Install writes the descriptor for id.
func (s *Store) DescriptorPath(id coord.Coordinate) string {
	return filepath.Join(s.moduleDir(id), "ivy-"+string(id.Revision)+".xml")
}

func (s *Store) moduleDir(id coord.Coordinate) string {
	return filepath.Join(s.dir, string(id.Organization), string(id.Name))
}

// Install adds m to the store and writes its descriptor to the store
// directory. The directory of m's organization and name is cleared first, so
// it holds exactly one installed revision.
func (s *Store) Install(m *ivymod.Module) error {
	if s.dir == "" {
		return ErrNoDirectory
	}

	var buf bytes.Buffer
	if err := ivymod.EncodeDescriptor(&buf, m); err != nil {
		return err
	}

	dir := s.moduleDir(m.ID())
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := s.DescriptorPath(m.ID())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.Put(m)
	return nil
}
