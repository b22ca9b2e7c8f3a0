package summarize

import (
	"sort"
	"strings"
	"unicode"
)

// Pick returns the top k sentences by score, restored to document order.
// Equal scores keep ascending index order. k <= 0 falls back to the default
// count.
func Pick(scored []ScoredSentence, k int, opts Options) []ScoredSentence {
	if len(scored) == 0 {
		return nil
	}
	k = opts.count(k)
	ranked := make([]ScoredSentence, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Sentence.Index < ranked[j].Sentence.Index
	})
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Sentence.Index < ranked[j].Sentence.Index
	})
	return ranked
}

// Select picks sentences with Pick and turns them into display bullets.
func Select(scored []ScoredSentence, k int, opts Options) []string {
	picked := Pick(scored, k, opts)
	if len(picked) == 0 {
		return nil
	}
	bullets := make([]string, 0, len(picked))
	for _, p := range picked {
		bullets = append(bullets, Bullet(p.Sentence.Text, opts.MaxDisplayChars))
	}
	return bullets
}

// Bullet trims quotes and whitespace from both ends of s and shortens it to
// at most max characters, ending in an ellipsis when cut.
func Bullet(s string, max int) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return r == '"' || r == '\'' || unicode.IsSpace(r)
	})
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	keep := max - len(Ellipsis)
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + Ellipsis
}
