// SPDX-License-Identifier: MPL-2.0

package buildorder

import (
	"fmt"
	"maps"
	"slices"

	"github.com/alfine/alfine/internal/dag"
	"github.com/alfine/alfine/pkg/coord"
)

// Result is the outcome of a traversal. It is not modified after creation.
type Result struct {
	Root coord.Coordinate
	// Order lists every reachable coordinate once, dependencies first.
	Order []coord.Coordinate
	// VisitedFrom maps each coordinate to the active paths it was reached by,
	// one entry per arrival.
	VisitedFrom map[coord.Coordinate][][]coord.Coordinate
	// BackEdges lists the edges that closed a cycle and were not followed.
	BackEdges []Edge

	deps map[coord.Coordinate][]coord.Coordinate
}

// Visited returns every visited coordinate sorted by canonical form.
func (r *Result) Visited() []coord.Coordinate {
	out := slices.Collect(maps.Keys(r.VisitedFrom))
	slices.SortFunc(out, coord.Compare)
	return out
}

// Index returns the position of id in Order, or -1.
func (r *Result) Index(id coord.Coordinate) int {
	return slices.Index(r.Order, id)
}

// Dependencies returns the declared dependency targets of id as traversed.
func (r *Result) Dependencies(id coord.Coordinate) []coord.Coordinate {
	return slices.Clone(r.deps[id])
}

// HasCycles reports whether any back-edge was recorded.
func (r *Result) HasCycles() bool { return len(r.BackEdges) > 0 }

// Waves groups Order into levels: every module sits in a later wave than all
// of its dependencies, so the modules of one wave can be processed in parallel
// once the previous waves are done. Back-edges are ignored.
func (r *Result) Waves() ([][]coord.Coordinate, error) {
	g := dag.New()
	for _, id := range r.Order {
		g.AddNode(id.String())
	}
	for _, id := range r.Order {
		for _, dep := range r.deps[id] {
			if slices.Contains(r.BackEdges, Edge{From: id, To: dep}) {
				continue
			}
			g.AddEdge(dep.String(), id.String())
		}
	}

	levels, err := g.Levels()
	if err != nil {
		return nil, fmt.Errorf("build order of %s: %w", r.Root, err)
	}

	byName := make(map[string]coord.Coordinate, len(r.Order))
	for _, id := range r.Order {
		byName[id.String()] = id
	}
	waves := make([][]coord.Coordinate, len(levels))
	for i, level := range levels {
		for _, name := range level {
			waves[i] = append(waves[i], byName[name])
		}
	}
	return waves, nil
}
