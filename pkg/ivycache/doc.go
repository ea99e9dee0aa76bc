// SPDX-License-Identifier: MPL-2.0

// Package ivycache is the resolution cache: the registry of resolved modules
// and memoized classpaths for one build invocation.
//
// Metadata comes from, in order: modules already memoized (including those
// added with [Cache.Register]), the local override store, and finally the
// resolution [Oracle]. Each coordinate and each (coordinate, configurations)
// classpath query reaches the oracle at most once per Cache, also under
// concurrent use.
//
// [ExecOracle] drives an Ivy-compatible command-line resolver as a subprocess.
// A Cache created without an oracle is purely in-memory: every module must be
// registered or overridden before it is resolved.
package ivycache
