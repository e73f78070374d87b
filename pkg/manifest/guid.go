// SPDX-License-Identifier: MPL-2.0

package manifest

import "strings"

// NormalizeGUID returns the canonical form of a GUID: surrounding braces and
// whitespace removed, lower case.
func NormalizeGUID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "{")
	id = strings.TrimSuffix(id, "}")
	return strings.ToLower(strings.TrimSpace(id))
}

// BracedGUID returns the normalized GUID wrapped in braces, as written in manifests.
func BracedGUID(id string) string {
	return "{" + NormalizeGUID(id) + "}"
}
