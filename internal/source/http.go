package source

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/shortly/internal/extract"
	"github.com/hyperifyio/shortly/internal/fetch"
	"github.com/hyperifyio/shortly/internal/robots"
	"github.com/hyperifyio/shortly/internal/summarize"
)

// HTTP fetches a page, honours robots.txt and extracts its text.
type HTTP struct {
	Fetcher *fetch.Client
	// Robots is consulted before fetching; nil skips the check.
	Robots    *robots.Manager
	Extractor extract.Extractor
}

func (h *HTTP) Text(ctx context.Context, target string) (string, error) {
	if h.Fetcher == nil {
		return "", fmt.Errorf("%w: http fetcher", ErrNoSource)
	}
	if h.Robots != nil {
		if err := h.Robots.Check(ctx, target); err != nil {
			return "", err
		}
	}
	page, err := h.Fetcher.Get(ctx, target)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	if !page.IsHTML() {
		return summarize.Normalize(string(page.Body)), nil
	}
	ex := h.Extractor
	if ex == nil {
		ex = extract.HeuristicExtractor{}
	}
	doc := ex.Extract(page.Body, page.URL)
	log.Debug().Str("url", page.URL).Str("title", doc.Title).Int("chars", len(doc.Text)).Bool("cache", page.FromCache).Msg("page extracted")
	return doc.Text, nil
}
