// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// [ActionableError] carries the failed operation, the resource involved and
// remediation hints. The issue catalog ([Get]) holds Markdown guidance for
// each failure class of the resolver, rendered for the terminal with glamour.
package issue
