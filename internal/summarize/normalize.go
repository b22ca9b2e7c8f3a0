package summarize

import (
	"regexp"
	"strings"
)

var (
	manyNewlines = regexp.MustCompile(`\n{3,}`)
	tabsAndCRs   = regexp.MustCompile(`[\t\r]+`)
	manySpaces   = regexp.MustCompile(` {2,}`)
)

// Normalize collapses noisy whitespace from extracted page text: three or
// more newlines become a paragraph break, tabs and carriage returns become a
// space, repeated spaces collapse to one, and the result is trimmed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = manyNewlines.ReplaceAllString(s, "\n\n")
	s = tabsAndCRs.ReplaceAllString(s, " ")
	s = manySpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
