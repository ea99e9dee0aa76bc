// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the alfine command-line interface.
//
// Every command is built around an [App], the composition root that loads
// configuration, builds the logger, the local override store, the resolution
// oracle and the resolution cache for one invocation.
package cmd
