package summarize

// FrequencyModel maps a content word to its number of occurrences in one
// document. Absent words were never seen; stored counts are always positive.
type FrequencyModel map[string]int

// BuildFrequencyModel counts content words across all sentences.
func BuildFrequencyModel(sentences []Sentence, opts Options) FrequencyModel {
	model := make(FrequencyModel)
	for _, s := range sentences {
		for _, w := range s.Words {
			if !opts.isContentWord(w) {
				continue
			}
			model[w]++
		}
	}
	return model
}

// ContentWords returns the words of s that survive stopword and length
// filtering, in order.
func ContentWords(s Sentence, opts Options) []string {
	out := make([]string, 0, len(s.Words))
	for _, w := range s.Words {
		if opts.isContentWord(w) {
			out = append(out, w)
		}
	}
	return out
}
