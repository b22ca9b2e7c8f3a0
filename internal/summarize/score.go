package summarize

// ScoredSentence pairs a sentence with its ranking score.
type ScoredSentence struct {
	Sentence Sentence
	Score    float64
}

// PositionBoost returns the multiplier applied to the sentence at index out
// of total: 1+weight for the first sentence, decaying linearly towards 1.
func PositionBoost(index, total int, weight float64) float64 {
	if total <= 0 {
		return 1
	}
	return 1 + (1-float64(index)/float64(total))*weight
}

// Score ranks each sentence by the summed document frequency of its content
// words, scaled by PositionBoost. The result has one entry per sentence in
// input order.
func Score(sentences []Sentence, model FrequencyModel, opts Options) []ScoredSentence {
	total := len(sentences)
	out := make([]ScoredSentence, 0, total)
	for i, s := range sentences {
		raw := 0
		for _, w := range ContentWords(s, opts) {
			raw += model[w]
		}
		out = append(out, ScoredSentence{
			Sentence: s,
			Score:    float64(raw) * PositionBoost(i, total, opts.BoostWeight),
		})
	}
	return out
}
