package extract

import (
	"bytes"
	"net/url"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/shortly/internal/summarize"
)

// Extractor defines a minimal interface for content extraction strategies.
// Implementations can swap readability tactics without changing callers.
type Extractor interface {
	// Extract converts raw HTML bytes into a simplified Document. pageURL is
	// used to resolve relative links and may be empty.
	Extract(input []byte, pageURL string) Document
}

// HeuristicExtractor applies the container and paragraph heuristics of
// FromHTMLWithOptions.
type HeuristicExtractor struct {
	Options Options
}

func (h HeuristicExtractor) Extract(input []byte, _ string) Document {
	opts := h.Options
	if opts == (Options{}) {
		opts = DefaultOptions()
	}
	return FromHTMLWithOptions(input, opts)
}

// ReadabilityExtractor runs go-readability over the whole document.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(input []byte, pageURL string) Document {
	u, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		u = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(input), u)
	if err != nil {
		log.Debug().Err(err).Str("url", pageURL).Msg("readability failed")
		return Document{}
	}
	return Document{
		Title: strings.TrimSpace(article.Title),
		Text:  summarize.Normalize(article.TextContent),
	}
}

// Chain runs Primary and falls back to Fallback when the primary text is
// shorter than MinChars. The longer of the two results wins.
type Chain struct {
	Primary  Extractor
	Fallback Extractor
	MinChars int
}

// NewDefault returns the heuristic extractor backed by readability.
func NewDefault(minChars int) Chain {
	return Chain{Primary: HeuristicExtractor{Options: DefaultOptions()}, Fallback: ReadabilityExtractor{}, MinChars: minChars}
}

func (c Chain) Extract(input []byte, pageURL string) Document {
	doc := c.Primary.Extract(input, pageURL)
	if c.Fallback == nil || utf8.RuneCountInString(doc.Text) >= c.MinChars {
		return doc
	}
	alt := c.Fallback.Extract(input, pageURL)
	if utf8.RuneCountInString(alt.Text) <= utf8.RuneCountInString(doc.Text) {
		return doc
	}
	log.Debug().Str("url", pageURL).Int("chars", utf8.RuneCountInString(alt.Text)).Msg("using readability fallback")
	if alt.Title == "" {
		alt.Title = doc.Title
	}
	return alt
}
