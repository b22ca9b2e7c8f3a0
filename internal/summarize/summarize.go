// Package summarize implements the local extractive summarizer: whitespace
// normalization, sentence segmentation, term-frequency scoring with a
// positional boost, and top-K selection restored to document order.
package summarize

import (
	"strconv"
	"strings"
)

// Summarizer runs the full pipeline with a fixed set of options.
type Summarizer struct {
	Options Options
}

// New returns a Summarizer using DefaultOptions.
func New() *Summarizer {
	return &Summarizer{Options: DefaultOptions()}
}

// Summarize returns up to k bullets drawn from text, in source order.
// Empty or whitespace-only text yields an empty summary.
func (s *Summarizer) Summarize(text string, k int) []string {
	sentences := Segment(Normalize(text))
	if len(sentences) == 0 {
		return nil
	}
	model := BuildFrequencyModel(sentences, s.Options)
	return Select(Score(sentences, model, s.Options), k, s.Options)
}

// Summarize runs the pipeline with DefaultOptions.
func Summarize(text string, k int) []string {
	return New().Summarize(text, k)
}

// ParseCount reads a sentence count typed by a user from its leading
// digits, so "3.7" and "3abc" both read as 3. Input without leading digits,
// or a value that is not positive, becomes DefaultCount.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return DefaultCount
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return DefaultCount
	}
	return n
}
