// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for sofloc.
//
// This package implements the Cobra command hierarchy for the sofloc CLI:
// flow listing, copying and deletion, solution version management,
// configuration and shell completion.
package cmd
