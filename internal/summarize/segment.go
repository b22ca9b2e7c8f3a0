package summarize

import (
	"regexp"
	"strings"
	"unicode"
)

// Sentence is one candidate produced by Segment.
type Sentence struct {
	Index int
	Text  string
	// Words are the lowercase alphanumeric tokens of Text, stopwords included.
	Words []string
}

var (
	// A newline run, together with any terminal punctuation before it and
	// spaces between or around the newlines, is one sentence boundary.
	newlineRuns = regexp.MustCompile(`([.!?]+)?(?: *\n)+ *`)
	// A fragment is a run of non-terminal characters followed by its
	// terminal punctuation, if any.
	fragmentRe = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// Segment splits normalized text into sentences in document order. Newlines
// count as sentence boundaries. Non-empty input always yields at least one
// sentence.
func Segment(text string) []Sentence {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	unified := newlineRuns.ReplaceAllStringFunc(trimmed, func(m string) string {
		if p := strings.TrimRight(m, " \n"); p != "" {
			return p + " "
		}
		return ". "
	})
	parts := fragmentRe.FindAllString(unified, -1)

	out := make([]Sentence, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, Sentence{Index: len(out), Text: p, Words: Tokenize(p)})
	}
	if len(out) == 0 {
		out = append(out, Sentence{Index: 0, Text: trimmed, Words: Tokenize(trimmed)})
	}
	return out
}

// Tokenize lowercases s, drops every character outside [a-z0-9] and
// whitespace, and splits on whitespace runs. Dropped characters do not split
// words, so "don't" becomes "dont".
func Tokenize(s string) []string {
	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		}
	}
	flush()
	return tokens
}
