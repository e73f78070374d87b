// SPDX-License-Identifier: MPL-2.0

package xmlpatch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// leadingSpace matches the line break and indentation in front of an element.
const leadingSpace = `(?:\r?\n[ \t]*)?`

// ErrNoMatch is returned when a pattern does not match the manifest text.
var ErrNoMatch = errors.New("fragment not found")

// Span is a half-open byte range [Start, End) within a text.
type Span struct {
	Start int
	End   int
}

// Text returns the spanned substring of text.
func (s Span) Text(text string) string {
	return text[s.Start:s.End]
}

// Locate returns the leftmost match of re in text.
func Locate(text string, re *regexp.Regexp) (Span, bool) {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return Span{}, false
	}
	return Span{Start: loc[0], End: loc[1]}, true
}

// RootComponentPattern matches the self-closing <RootComponent> element with
// the given type code and braced id. The id is matched case-insensitively.
func RootComponentPattern(typeCode int, id string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`%s<RootComponent\s+type="%d"\s+id="\{%s\}"[^>]*/>`,
		leadingSpace, typeCode, guidPattern(id)))
}

// WorkflowPattern matches a <Workflow> element keyed by its braced WorkflowId,
// non-greedy through its closing tag.
func WorkflowPattern(id string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`%s<Workflow\s+WorkflowId="\{%s\}"[^>]*>[\s\S]*?</Workflow>`,
		leadingSpace, guidPattern(id)))
}

// Duplicate inserts rewrite(fragment) immediately after the fragment matched by re.
func Duplicate(text string, re *regexp.Regexp, rewrite func(fragment string) string) (string, error) {
	span, ok := Locate(text, re)
	if !ok {
		return text, ErrNoMatch
	}
	copied := rewrite(span.Text(text))
	return text[:span.End] + copied + text[span.End:], nil
}

// Erase removes the fragment matched by re, including its leading indentation.
func Erase(text string, re *regexp.Regexp) (string, error) {
	span, ok := Locate(text, re)
	if !ok {
		return text, ErrNoMatch
	}
	return text[:span.Start] + text[span.End:], nil
}

// ReplaceElementText rewrites the body of every <element>...</element> in
// fragment. The element name is matched case-insensitively.
func ReplaceElementText(fragment, element, value string) string {
	re := regexp.MustCompile(`(?is)<(` + regexp.QuoteMeta(element) + `)>.*?</` + regexp.QuoteMeta(element) + `>`)
	return re.ReplaceAllStringFunc(fragment, func(match string) string {
		name := re.FindStringSubmatch(match)[1]
		return "<" + name + ">" + value + "</" + name + ">"
	})
}

// ReplaceFirstElement rewrites the first <element>old</element> in text to
// carry value. Whitespace around old is tolerated and dropped.
func ReplaceFirstElement(text, element, old, value string) (string, error) {
	re := regexp.MustCompile(`<` + regexp.QuoteMeta(element) + `>\s*` + regexp.QuoteMeta(old) + `\s*</` + regexp.QuoteMeta(element) + `>`)
	span, ok := Locate(text, re)
	if !ok {
		return text, ErrNoMatch
	}
	return text[:span.Start] + "<" + element + ">" + value + "</" + element + ">" + text[span.End:], nil
}

// ReplaceAttribute rewrites the value of the first attr="..." in fragment.
// value must already be escaped for use inside a double-quoted attribute.
func ReplaceAttribute(fragment, attr, value string) string {
	re := regexp.MustCompile(`(\s` + regexp.QuoteMeta(attr) + `=")[^"]*(")`)
	loc := re.FindStringSubmatchIndex(fragment)
	if loc == nil {
		return fragment
	}
	return fragment[:loc[3]] + value + fragment[loc[4]:]
}

// SubstituteGUID replaces every occurrence of old in fragment by replacement,
// ignoring case. Occurrences written in upper case receive the upper-cased
// replacement; all others receive it in lower case.
func SubstituteGUID(fragment, old, replacement string) string {
	re := regexp.MustCompile(guidPattern(old))
	lower, upper := strings.ToLower(replacement), strings.ToUpper(replacement)
	return re.ReplaceAllStringFunc(fragment, func(match string) string {
		if match == strings.ToUpper(match) && match != strings.ToLower(match) {
			return upper
		}
		return lower
	})
}

// EscapeAttribute escapes s for use inside a double-quoted XML attribute.
func EscapeAttribute(s string) string {
	return attributeEscaper.Replace(s)
}

// EscapeText escapes s for use as XML character data.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

var (
	attributeEscaper = strings.NewReplacer(
		`&`, "&amp;",
		`<`, "&lt;",
		`>`, "&gt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
	textEscaper = strings.NewReplacer(
		`&`, "&amp;",
		`<`, "&lt;",
		`>`, "&gt;",
	)
)

func guidPattern(id string) string {
	return `(?i:` + regexp.QuoteMeta(id) + `)`
}
