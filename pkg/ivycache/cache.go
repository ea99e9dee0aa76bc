// SPDX-License-Identifier: MPL-2.0

package ivycache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/alfine/alfine/pkg/buildorder"
	"github.com/alfine/alfine/pkg/coord"
	"github.com/alfine/alfine/pkg/ivymod"
	"github.com/alfine/alfine/pkg/overrides"
)

type (
	// Cache memoizes resolved modules and classpaths for one build invocation.
	// It is safe for concurrent use.
	Cache struct {
		oracle        Oracle
		store         *overrides.Store
		logger        *log.Logger
		localBuildDir string

		mu      sync.Mutex
		modules map[string]*ivymod.Module
		// closed marks modules whose whole dependency closure is memoized.
		closed map[string]bool

		classpaths *gocache.Cache
		flights    singleflight.Group
	}

	// Option configures a Cache.
	Option func(*Cache)
)

// WithOracle sets the resolution oracle. Without one the cache is in-memory.
func WithOracle(o Oracle) Option {
	return func(c *Cache) {
		c.oracle = o
	}
}

// WithOverrides sets the local override store consulted before the oracle.
func WithOverrides(s *overrides.Store) Option {
	return func(c *Cache) {
		c.store = s
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// WithLocalBuildDir sets the directory whose artifacts replace oracle
// provided artifacts of the same file name in classpaths.
func WithLocalBuildDir(dir string) Option {
	return func(c *Cache) {
		c.localBuildDir = dir
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		logger:     discardLogger(),
		modules:    make(map[string]*ivymod.Module),
		closed:     make(map[string]bool),
		classpaths: gocache.New(gocache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InMemory reports whether the cache has no oracle.
func (c *Cache) InMemory() bool { return c.oracle == nil }

// Overrides returns the override store, or nil.
func (c *Cache) Overrides() *overrides.Store { return c.store }

// Lookup returns the memoized module for id without resolving it.
func (c *Cache) Lookup(id coord.Coordinate) (*ivymod.Module, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.modules[id.String()]
	return m, ok
}

// Modules returns the coordinates of every memoized module, sorted.
func (c *Cache) Modules() []coord.Coordinate {
	c.mu.Lock()
	out := make([]coord.Coordinate, 0, len(c.modules))
	for _, m := range c.modules {
		out = append(out, m.ID())
	}
	c.mu.Unlock()
	slices.SortFunc(out, coord.Compare)
	return out
}

// Register memoizes a module built in-process so that it takes precedence
// over the override store and the oracle. Registering an equal definition
// again is a no-op. A different definition fails with
// DuplicateModuleDefinitionError unless override is set, in which case it
// replaces the memoized one.
func (c *Cache) Register(m *ivymod.Module, override bool) error {
	key := m.ID().String()

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.modules[key]
	if ok && !override {
		if existing.Equal(m) {
			return nil
		}
		return &DuplicateModuleDefinitionError{
			Module:         m.ID(),
			ExistingSource: existing.Source(),
			NewSource:      m.Source(),
		}
	}
	if err := m.Claim(c); err != nil {
		return err
	}
	c.modules[key] = m
	delete(c.closed, key)
	c.logger.Debug("registered module", "module", key, "override", override && ok)
	return nil
}

// Resolve returns the module for id, loading it on first use, and makes sure
// every module reachable through declared dependencies is memoized as well.
// A failing dependency is reported as a *buildorder.UnresolvedDependencyError
// carrying the path that led to it.
func (c *Cache) Resolve(ctx context.Context, id coord.Coordinate) (*ivymod.Module, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	key := id.String()
	c.mu.Lock()
	m, ok := c.modules[key]
	closed := c.closed[key]
	c.mu.Unlock()
	if ok && closed {
		c.logger.Debug("module cache hit", "module", key)
		return m, nil
	}

	root, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	visited := map[coord.Coordinate]bool{id: true}
	if err := c.descend(ctx, root, []coord.Coordinate{id}, visited); err != nil {
		return nil, err
	}

	c.mu.Lock()
	for v := range visited {
		c.closed[v.String()] = true
	}
	c.mu.Unlock()
	return root, nil
}

func (c *Cache) descend(ctx context.Context, m *ivymod.Module, path []coord.Coordinate, visited map[coord.Coordinate]bool) error {
	for _, target := range m.DependencyTargets() {
		if visited[target] {
			continue
		}
		visited[target] = true

		dep, err := c.load(ctx, target)
		if err != nil {
			return &buildorder.UnresolvedDependencyError{Dependency: target, Trace: slices.Clone(path), Err: err}
		}
		if c.isClosed(target) {
			continue
		}
		if err := c.descend(ctx, dep, append(path, target), visited); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) isClosed(id coord.Coordinate) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed[id.String()]
}

// load returns the memoized module for id or obtains it from the override
// store or the oracle. Concurrent loads of one coordinate share a single
// oracle invocation.
func (c *Cache) load(ctx context.Context, id coord.Coordinate) (*ivymod.Module, error) {
	key := id.String()
	if m, ok := c.Lookup(id); ok {
		return m, nil
	}

	v, err, _ := c.flights.Do("module:"+key, func() (any, error) {
		if m, ok := c.Lookup(id); ok {
			return m, nil
		}

		m, err := c.fetch(ctx, id)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.modules[key]; ok {
			return existing, nil
		}
		if m, err = c.own(m); err != nil {
			return nil, err
		}
		c.modules[key] = m
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ivymod.Module), nil
}

// own claims m for this cache. A module already owned by another cache, as
// happens when caches share an override store, is rebuilt and the copy is
// claimed instead.
func (c *Cache) own(m *ivymod.Module) (*ivymod.Module, error) {
	err := m.Claim(c)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ivymod.ErrAlreadyRegistered) {
		return nil, err
	}
	cp, err := ivymod.BlueprintFrom(m).Build()
	if err != nil {
		return nil, err
	}
	if err := cp.Claim(c); err != nil {
		return nil, err
	}
	return cp, nil
}

func (c *Cache) fetch(ctx context.Context, id coord.Coordinate) (*ivymod.Module, error) {
	if c.store != nil {
		m, ok, err := c.store.Lookup(id)
		if err != nil {
			return nil, err
		}
		if ok {
			c.logger.Debug("using local override", "module", id.String())
			return m, nil
		}
	}

	if c.oracle == nil {
		return nil, fmt.Errorf("cannot resolve module %s: %w; declare all modules before resolving dependencies", id, ErrInMemoryCache)
	}

	c.logger.Debug("fetching module metadata", "module", id.String())
	path, err := c.oracle.FetchMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := ivymod.LoadDescriptorFile(path)
	if err != nil {
		return nil, err
	}
	if m.ID() != id {
		return nil, &ivymod.MalformedModuleError{
			Module: id,
			Source: path,
			Reason: fmt.Sprintf("descriptor declares %s", m.ID()),
		}
	}
	return m, nil
}

// LocationOf returns the directory holding the oracle's metadata and
// artifacts for id, fetching the metadata if needed.
func (c *Cache) LocationOf(ctx context.Context, id coord.Coordinate) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}
	if c.oracle == nil {
		return "", fmt.Errorf("cannot locate module %s: %w", id, ErrInMemoryCache)
	}
	v, err, _ := c.flights.Do("location:"+id.String(), func() (any, error) {
		return c.oracle.FetchMetadata(ctx, id)
	})
	if err != nil {
		return "", err
	}
	return filepath.Dir(v.(string)), nil
}

// ComputeBuildOrder resolves root and returns its build order.
func (c *Cache) ComputeBuildOrder(ctx context.Context, root coord.Coordinate, opts ...buildorder.Option) (*buildorder.Result, error) {
	return buildorder.Compute(ctx, c, root, opts...)
}
