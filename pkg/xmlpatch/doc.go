// SPDX-License-Identifier: MPL-2.0

// Package xmlpatch edits hand-formatted XML manifests at the text level.
//
// Manifests are never re-serialized. A fragment is located with an anchored
// regular expression that also captures the line break and indentation in
// front of the element, so duplicating a fragment produces a correctly
// indented sibling and erasing one leaves no blank line behind. Everything
// outside the located span is preserved byte for byte.
package xmlpatch
