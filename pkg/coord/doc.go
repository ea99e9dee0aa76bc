// SPDX-License-Identifier: MPL-2.0

// Package coord defines the module coordinate: the (organization, name, revision)
// triple that identifies a module everywhere else in alfine.
//
// Coordinates are immutable values. Equality is by triple, so a [Coordinate] can be
// used directly as a map key. The canonical string form is
// "organization:name:revision" (see [Coordinate.String] and [Parse]).
package coord
