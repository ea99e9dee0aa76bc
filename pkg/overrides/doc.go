// SPDX-License-Identifier: MPL-2.0

// Package overrides is the local override store: module definitions supplied
// by the caller that take precedence over what the resolution oracle reports.
//
// Overrides live in memory and, when the store has a directory, also on disk
// as ivy.xml descriptors laid out the way an Ivy filesystem resolver expects
// (<dir>/<org>/<name>/ivy-<rev>.xml). Listing that directory first in the
// oracle's resolver chain makes the oracle see the same definitions.
//
// Overrides can be declared in a CUE file and loaded with [LoadFile].
package overrides
