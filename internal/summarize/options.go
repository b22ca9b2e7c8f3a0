package summarize

// Defaults for the rule-based summarizer. Callers that need different
// thresholds copy DefaultOptions and override fields.
const (
	DefaultCount           = 5
	DefaultMinTokenLen     = 2
	DefaultBoostWeight     = 0.1
	DefaultMaxDisplayChars = 160
	Ellipsis               = "..."
)

// DefaultStopwords is the fixed stopword list used for frequency and scoring.
var DefaultStopwords = []string{
	"the", "and", "is", "in", "to", "of", "a", "it", "that", "for", "on",
	"with", "as", "are", "this", "was", "be", "by", "an", "or", "from",
}

// Options tunes the pipeline. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// Stopwords never contribute to frequency counts or scores.
	Stopwords map[string]struct{}
	// MinTokenLen: tokens with length <= MinTokenLen are ignored.
	MinTokenLen int
	// BoostWeight is the maximum positional boost given to the first sentence.
	BoostWeight float64
	// MaxDisplayChars bounds each bullet, ellipsis included.
	MaxDisplayChars int
	// DefaultCount replaces non-positive sentence counts.
	DefaultCount int
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		Stopwords:       StopwordSet(DefaultStopwords...),
		MinTokenLen:     DefaultMinTokenLen,
		BoostWeight:     DefaultBoostWeight,
		MaxDisplayChars: DefaultMaxDisplayChars,
		DefaultCount:    DefaultCount,
	}
}

// StopwordSet builds a lookup set from words.
func StopwordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func (o Options) count(k int) int {
	if k > 0 {
		return k
	}
	if o.DefaultCount > 0 {
		return o.DefaultCount
	}
	return DefaultCount
}

func (o Options) isContentWord(tok string) bool {
	if len(tok) <= o.MinTokenLen {
		return false
	}
	_, stop := o.Stopwords[tok]
	return !stop
}
