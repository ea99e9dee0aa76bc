// SPDX-License-Identifier: MPL-2.0

package buildorder

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/alfine/alfine/pkg/coord"
	"github.com/alfine/alfine/pkg/ivymod"
)

const (
	// Unvisited coordinates have not been reached yet.
	Unvisited State = iota
	// Entered coordinates are on the active traversal path.
	Entered
	// Left coordinates have been appended to the build order.
	Left
)

const traceIndent = "  "

type (
	// State is the traversal state of a coordinate.
	State int

	// Resolver loads a module by coordinate. The resolution cache satisfies it.
	Resolver interface {
		Resolve(ctx context.Context, id coord.Coordinate) (*ivymod.Module, error)
	}

	// Edge is a dependency edge From -> To.
	Edge struct {
		From coord.Coordinate
		To   coord.Coordinate
	}

	// Option configures a Visitor.
	Option func(*Visitor)

	// Visitor performs one traversal. It is not safe for concurrent use and
	// should not be reused for an unrelated root.
	Visitor struct {
		resolver Resolver
		trace    io.Writer
		strict   bool

		state       map[coord.Coordinate]State
		order       []coord.Coordinate
		path        []coord.Coordinate
		visitedFrom map[coord.Coordinate][][]coord.Coordinate
		deps        map[coord.Coordinate][]coord.Coordinate
		backEdges   []Edge
	}
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case Entered:
		return "entered"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// WithTrace writes every enter and skip event to w, indented by depth.
func WithTrace(w io.Writer) Option {
	return func(v *Visitor) {
		v.trace = w
	}
}

// WithStrict makes a dependency cycle fail the traversal with a CycleError.
func WithStrict(strict bool) Option {
	return func(v *Visitor) {
		v.strict = strict
	}
}

// NewVisitor creates a visitor that loads modules through r.
func NewVisitor(r Resolver, opts ...Option) *Visitor {
	v := &Visitor{
		resolver:    r,
		state:       make(map[coord.Coordinate]State),
		visitedFrom: make(map[coord.Coordinate][][]coord.Coordinate),
		deps:        make(map[coord.Coordinate][]coord.Coordinate),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Compute resolves root and returns its build order.
func Compute(ctx context.Context, r Resolver, root coord.Coordinate, opts ...Option) (*Result, error) {
	v := NewVisitor(r, opts...)
	if err := v.Visit(ctx, root); err != nil {
		return nil, err
	}
	return v.Result(root), nil
}

// State returns the traversal state of id.
func (v *Visitor) State(id coord.Coordinate) State { return v.state[id] }

// Visit traverses the graph reachable from root. Coordinates already left by
// an earlier Visit call are skipped, so visiting several roots yields one
// combined order.
func (v *Visitor) Visit(ctx context.Context, root coord.Coordinate) error {
	m, err := v.resolver.Resolve(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	return v.visit(ctx, m)
}

func (v *Visitor) visit(ctx context.Context, m *ivymod.Module) error {
	id := m.ID()
	v.visitedFrom[id] = append(v.visitedFrom[id], slices.Clone(v.path))

	switch v.state[id] {
	case Left:
		v.tracef(len(v.path)-1, "^ %s", id)
		return nil
	case Entered:
		from := v.path[len(v.path)-1]
		v.backEdges = append(v.backEdges, Edge{From: from, To: id})
		v.tracef(len(v.path)-1, "^ %s (cycle)", id)
		if v.strict {
			start := slices.Index(v.path, id)
			return &CycleError{Cycle: append(slices.Clone(v.path[start:]), id)}
		}
		return nil
	}

	v.tracef(len(v.path), "%s", id)
	v.state[id] = Entered
	v.path = append(v.path, id)

	targets := m.DependencyTargets()
	v.deps[id] = targets
	for _, target := range targets {
		dep, err := v.resolver.Resolve(ctx, target)
		if err != nil {
			return &UnresolvedDependencyError{Dependency: target, Trace: slices.Clone(v.path), Err: err}
		}
		if err := v.visit(ctx, dep); err != nil {
			return err
		}
	}

	v.path = v.path[:len(v.path)-1]
	v.state[id] = Left
	v.order = append(v.order, id)
	return nil
}

func (v *Visitor) tracef(depth int, format string, args ...any) {
	if v.trace == nil {
		return
	}
	// Trace output is diagnostic; write errors are ignored.
	_, _ = fmt.Fprintf(v.trace, strings.Repeat(traceIndent, max(depth, 0))+format+"\n", args...)
}

// Result snapshots the traversal for the given root.
func (v *Visitor) Result(root coord.Coordinate) *Result {
	visitedFrom := make(map[coord.Coordinate][][]coord.Coordinate, len(v.visitedFrom))
	for id, paths := range v.visitedFrom {
		cp := make([][]coord.Coordinate, len(paths))
		for i, p := range paths {
			cp[i] = slices.Clone(p)
		}
		visitedFrom[id] = cp
	}
	deps := make(map[coord.Coordinate][]coord.Coordinate, len(v.deps))
	for id, targets := range v.deps {
		deps[id] = slices.Clone(targets)
	}
	return &Result{
		Root:        root,
		Order:       slices.Clone(v.order),
		VisitedFrom: visitedFrom,
		BackEdges:   slices.Clone(v.backEdges),
		deps:        deps,
	}
}
