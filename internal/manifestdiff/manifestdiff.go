// SPDX-License-Identifier: MPL-2.0

// Package manifestdiff computes line diffs between manifest revisions for
// dry-run previews.
package manifestdiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultMaxLines is the combined line count above which no diff is computed.
const DefaultMaxLines = 5000

// Line kinds.
const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// Line is one line of a diff.
type Line struct {
	Type    string
	Text    string
	OldLine int
	NewLine int
}

// Diff is the line diff of one manifest.
type Diff struct {
	Name  string
	Lines []Line
	// Truncated is set when the inputs exceeded the line limit and no diff was computed.
	Truncated bool
}

// Compute diffs before and after line by line. Carriage returns are ignored
// so CRLF manifests do not show as fully changed.
func Compute(name, before, after string, maxLines int) Diff {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	before = strings.ReplaceAll(before, "\r\n", "\n")
	after = strings.ReplaceAll(after, "\r\n", "\n")
	if lineCount(before)+lineCount(after) > maxLines {
		return Diff{Name: name, Truncated: true}
	}

	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return Diff{Name: name, Lines: lines}
}

// Changed reports whether the diff has any added or removed line.
func (d Diff) Changed() bool {
	for _, l := range d.Lines {
		if l.Type != LineContext {
			return true
		}
	}
	return d.Truncated
}

// Unified renders the changed lines with context lines of surrounding text,
// in the usual "-"/"+" prefix form.
func (d Diff) Unified(context int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", d.Name, d.Name)
	if d.Truncated {
		b.WriteString("(diff too large, skipped)\n")
		return b.String()
	}

	keep := make([]bool, len(d.Lines))
	for i, l := range d.Lines {
		if l.Type == LineContext {
			continue
		}
		for j := max(0, i-context); j <= min(len(d.Lines)-1, i+context); j++ {
			keep[j] = true
		}
	}

	gap := false
	for i, l := range d.Lines {
		if !keep[i] {
			gap = true
			continue
		}
		if gap {
			b.WriteString("@@\n")
			gap = false
		}
		switch l.Type {
		case LineAdded:
			b.WriteString("+" + l.Text + "\n")
		case LineRemoved:
			b.WriteString("-" + l.Text + "\n")
		default:
			b.WriteString(" " + l.Text + "\n")
		}
	}
	return b.String()
}

func lineCount(value string) int {
	if value == "" {
		return 0
	}
	return strings.Count(value, "\n") + 1
}
