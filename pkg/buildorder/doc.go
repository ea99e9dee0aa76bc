// SPDX-License-Identifier: MPL-2.0

// Package buildorder computes the order in which modules must be built.
//
// A depth-first traversal starting at a root coordinate loads every reachable
// module through a [Resolver] and appends each module after all of its
// dependencies (post-order). Each coordinate is in one of three states during
// a traversal: unvisited, entered (on the active path) or left (appended).
// Reaching an entered coordinate again is a dependency cycle. Cycles are
// tolerated by default: the branch is cut and the back-edge recorded. With
// [WithStrict] a cycle fails the traversal instead.
package buildorder
