// SPDX-License-Identifier: MPL-2.0

// Package ivymod models Ivy-style modules: their configurations, their dependency
// edges with configuration-mapping expressions, and their published artifacts.
//
// # Configurations
//
// A module publishes named configurations (e.g. "compile", "runtime", "test").
// A configuration may extend others; its effective set is the transitive closure
// over extends (see [ConfigurationSet.Effective]). A module that declares no
// configurations gets a single synthetic public "default" configuration.
//
// # Mapping expressions
//
// Every dependency edge carries a mapping expression such as
//
//	compile->master(*);runtime->master(*),runtime(*)
//
// which is parsed once into a [MappingExpr] and evaluated with
// [Module.DependenciesFor] and [ResolveTargetConfs].
//
// # Descriptors
//
// Modules are read from and written to ivy.xml descriptors with [ParseDescriptor],
// [LoadDescriptorFile] and [EncodeDescriptor]. Modules built in-process use the
// [Blueprint] builder.
package ivymod
