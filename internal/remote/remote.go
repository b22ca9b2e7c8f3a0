// Package remote calls hosted summarization services and turns their
// free-form summaries into bullets.
package remote

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/shortly/internal/cache"
	"github.com/hyperifyio/shortly/internal/summarize"
)

const (
	// MaxPayloadChars bounds the text sent to a remote service.
	MaxPayloadChars = 3000
	// DefaultTimeout applies when an adapter has no Timeout set.
	DefaultTimeout = 60 * time.Second
)

// Summarizer is a remote backend producing one summary string per text.
type Summarizer interface {
	// Name identifies the backend in cache keys and logs.
	Name() string
	// Validate reports configuration problems, such as ErrMissingCredential,
	// without touching the network.
	Validate() error
	// Summarize returns the summary for text. Implementations truncate the
	// payload to MaxPayloadChars.
	Summarize(ctx context.Context, text string) (string, error)
}

// Payload returns the first MaxPayloadChars characters of text.
func Payload(text string) string {
	r := []rune(text)
	if len(r) <= MaxPayloadChars {
		return text
	}
	return string(r[:MaxPayloadChars])
}

var strict = bluemonday.StrictPolicy()

// Bullets strips markup from summary, splits it with the local segmenter and
// keeps the first k sentences. k <= 0 means summarize.DefaultCount.
func Bullets(summary string, k int) []string {
	if k <= 0 {
		k = summarize.DefaultCount
	}
	clean := html.UnescapeString(strict.Sanitize(summary))
	clean = summarize.Normalize(clean)
	var out []string
	for _, s := range summarize.Segment(clean) {
		if len(out) == k {
			break
		}
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// callFunc performs the uncached network call for an already truncated payload.
type callFunc func(ctx context.Context, payload string) (string, error)

// cachedCall applies the timeout, consults the summary cache and stores
// successful results. Cache failures are logged and never fail the call.
func cachedCall(ctx context.Context, name string, c *cache.SummaryCache, timeout time.Duration, payload string, call callFunc) (string, error) {
	var key string
	if c != nil {
		key = cache.KeyFrom(name, payload)
		if e, ok, err := c.Get(ctx, key); err != nil {
			log.Warn().Err(err).Str("backend", name).Msg("summary cache read failed")
		} else if ok {
			log.Debug().Str("backend", name).Str("key", key).Msg("summary cache hit")
			return e.Summary, nil
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	summary, err := call(ctx, payload)
	if err != nil {
		return "", err
	}
	log.Info().Str("backend", name).Int("payload_chars", len([]rune(payload))).Dur("elapsed", time.Since(start)).Msg("remote summary received")
	if c != nil {
		if err := c.Save(ctx, key, cache.SummaryEntry{Backend: name, Summary: summary}); err != nil {
			log.Warn().Err(err).Str("backend", name).Msg("summary cache write failed")
		}
	}
	return summary, nil
}

var (
	_ Summarizer = (*HuggingFace)(nil)
	_ Summarizer = (*Chat)(nil)
)
