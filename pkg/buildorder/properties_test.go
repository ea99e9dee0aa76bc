// SPDX-License-Identifier: MPL-2.0

package buildorder

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/alfine/alfine/pkg/coord"
	"github.com/alfine/alfine/pkg/ivymod"
)

// randomGraph draws a graph over n coordinates that may contain cycles and
// self-loops.
func randomGraph(t *rapid.T) (*graphResolver, []coord.Coordinate) {
	n := rapid.IntRange(1, 20).Draw(t, "nodes")
	ids := make([]coord.Coordinate, n)
	for i := range n {
		ids[i] = coord.MustNew("prop", fmt.Sprintf("m%d", i), "1")
	}

	r := &graphResolver{
		modules: make(map[coord.Coordinate]*ivymod.Module, n),
		calls:   make(map[coord.Coordinate]int),
	}
	for i, id := range ids {
		targets := rapid.SliceOfN(rapid.IntRange(0, n-1), 0, 4).Draw(t, fmt.Sprintf("deps of %d", i))
		bp := ivymod.NewBlueprint(id)
		for _, j := range targets {
			bp.Dep(ids[j], "")
		}
		r.modules[id] = bp.MustBuild()
	}
	return r, ids
}

func reachable(r *graphResolver, root coord.Coordinate) map[coord.Coordinate]bool {
	seen := map[coord.Coordinate]bool{root: true}
	stack := []coord.Coordinate{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range r.modules[id].DependencyTargets() {
			if !seen[dep] {
				seen[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return seen
}

func TestCompute_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		r, ids := randomGraph(t)
		root := ids[rapid.IntRange(0, len(ids)-1).Draw(t, "root")]

		res, err := Compute(context.Background(), r, root)
		if err != nil {
			t.Fatalf("Compute() error: %v", err)
		}

		// No duplicates, and exactly the reachable set.
		want := reachable(r, root)
		seen := make(map[coord.Coordinate]bool)
		for _, id := range res.Order {
			if seen[id] {
				t.Fatalf("%s appears twice in %v", id, coord.Strings(res.Order))
			}
			seen[id] = true
			if !want[id] {
				t.Fatalf("%s is not reachable from %s", id, root)
			}
		}
		if len(seen) != len(want) {
			t.Fatalf("order has %d coordinates, %d are reachable", len(seen), len(want))
		}
		if res.Order[len(res.Order)-1] != root {
			t.Fatalf("root %s is not last in %v", root, coord.Strings(res.Order))
		}

		// Every edge that is not a recorded back-edge points backwards in the order.
		for _, id := range res.Order {
			for _, dep := range r.modules[id].DependencyTargets() {
				if slices.Contains(res.BackEdges, Edge{From: id, To: dep}) {
					continue
				}
				if res.Index(dep) >= res.Index(id) {
					t.Fatalf("edge %s -> %s violates order %v", id, dep, coord.Strings(res.Order))
				}
			}
		}

		// Idempotent on the same resolver.
		again, err := Compute(context.Background(), r, root)
		if err != nil {
			t.Fatalf("second Compute() error: %v", err)
		}
		if !slices.Equal(res.Order, again.Order) {
			t.Fatalf("orders differ: %v vs %v", coord.Strings(res.Order), coord.Strings(again.Order))
		}

		// Waves agree with the order.
		waves, err := res.Waves()
		if err != nil {
			t.Fatalf("Waves() error: %v", err)
		}
		total := 0
		for _, w := range waves {
			total += len(w)
		}
		if total != len(res.Order) {
			t.Fatalf("waves hold %d coordinates, order has %d", total, len(res.Order))
		}

		// Strict mode fails exactly when the lenient run found a cycle.
		_, strictErr := Compute(context.Background(), r, root, WithStrict(true))
		if (strictErr != nil) != res.HasCycles() {
			t.Fatalf("strict error = %v, lenient back-edges = %v", strictErr, res.BackEdges)
		}
	})
}
