// SPDX-License-Identifier: MPL-2.0

// Package version validates and orders dotted numeric solution versions.
//
// Versions have no fixed arity: "2.1" and "2.1.0.0" are both valid. Ordering
// is positional. Each component is left-padded with zeros to the widest value
// at its position (missing positions count as "0"), the padded components are
// concatenated, and the two resulting digit strings are compared. Because both
// strings have the same length the comparison is exact for any magnitude.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidFormat is returned when a version string is not dot-separated integers.
var ErrInvalidFormat = errors.New("invalid version format")

var pattern = regexp.MustCompile(`^(\d+\.)*\d+$`)

// InvalidFormatError is returned when a version string is not dot-separated integers.
// It wraps ErrInvalidFormat for errors.Is() compatibility.
type InvalidFormatError struct {
	Value string
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("version '%s' is not valid: it should follow the format <major>.<minor>.<build>.<revision>", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Validate checks that v is one or more dot-separated non-negative integers.
func Validate(v string) error {
	if !pattern.MatchString(v) {
		return &InvalidFormatError{Value: v}
	}
	return nil
}

// Compare returns -1, 0 or +1 when a is lower than, equal to or greater than b.
// Both arguments must be valid; Compare does not validate them.
func Compare(a, b string) int {
	left, right := components(a), components(b)
	n := max(len(left), len(right))

	var lb, rb strings.Builder
	for i := range n {
		l, r := at(left, i), at(right, i)
		width := max(len(l), len(r))
		lb.WriteString(pad(l, width))
		rb.WriteString(pad(r, width))
	}

	return strings.Compare(lb.String(), rb.String())
}

// Snake returns v with every "." replaced by "_", the form used in archive names.
func Snake(v string) string {
	return strings.ReplaceAll(v, ".", "_")
}

// components splits v and strips leading zeros so "007" and "7" compare equal.
func components(v string) []string {
	parts := strings.Split(v, ".")
	for i, p := range parts {
		p = strings.TrimLeft(p, "0")
		if p == "" {
			p = "0"
		}
		parts[i] = p
	}
	return parts
}

func at(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return "0"
}

func pad(s string, width int) string {
	return strings.Repeat("0", width-len(s)) + s
}
