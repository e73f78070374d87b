// SPDX-License-Identifier: MPL-2.0

// Package manifest provides read-only views over the two XML manifests of a
// solution archive: the package manifest (solution.xml) and the customizations
// manifest (customizations.xml).
//
// The views are derived and disposable. Edits are never made through them;
// they are re-parsed from the raw text after every structural change.
package manifest
