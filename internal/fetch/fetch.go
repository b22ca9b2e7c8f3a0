// Package fetch downloads web pages for text extraction.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/hyperifyio/shortly/internal/cache"
)

// DefaultMaxBodyBytes caps how much of a page is read.
const DefaultMaxBodyBytes = 8 << 20

// Page is a fetched document with its body decoded to UTF-8.
type Page struct {
	URL         string
	ContentType string
	Body        []byte
	FromCache   bool
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// ErrUnsupportedContentType is returned for responses that are neither HTML
// nor plain text.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Client wraps http.Client and provides timeouts and limited retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// Optional on-disk cache for GET bodies and validators.
	Cache *cache.HTTPCache
	// If true, skip conditional requests but still store the fresh response.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxBodyBytes caps the body size. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	sleep func(time.Duration)
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET with context, user-agent, and bounded retry for transient errors.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return Page{}, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}

	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	revalidated := false
	for i := 0; i < attempts; i++ {
		page, status, validators, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			if status == http.StatusNotModified && c.Cache != nil {
				if cached, err := c.Cache.LoadBody(ctx, rawURL); err == nil {
					if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
						page.ContentType = meta.ContentType
					}
					page.Body = cached
					page.FromCache = true
					log.Debug().Str("url", rawURL).Msg("served from cache after 304")
					return page, nil
				}
				if !revalidated {
					// Validators outlived the cached body; refetch without them.
					revalidated = true
					etag, lastMod = "", ""
					i--
					continue
				}
			}
			if c.Cache != nil && status == http.StatusOK {
				if err := c.Cache.Save(ctx, rawURL, page.ContentType, validators.etag, validators.lastModified, page.Body); err != nil {
					log.Warn().Err(err).Str("url", rawURL).Msg("cache save failed")
				}
			}
			return page, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			return Page{}, err
		}
		c.pause(time.Duration(i+1) * 200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return Page{}, lastErr
}

type validators struct {
	etag         string
	lastModified string
}

func (c *Client) tryOnce(ctx context.Context, rawURL string, etag string, lastMod string) (Page, int, validators, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, 0, validators{}, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return Page{}, 0, validators{}, err
	}
	defer resp.Body.Close()

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	v := validators{etag: resp.Header.Get("ETag"), lastModified: resp.Header.Get("Last-Modified")}
	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode == http.StatusNotModified {
		return Page{URL: final, ContentType: contentType}, resp.StatusCode, v, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, resp.StatusCode, v, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	if !IsTextContentType(contentType) {
		return Page{}, resp.StatusCode, v, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return Page{}, resp.StatusCode, v, fmt.Errorf("read body: %w", err)
	}
	return Page{URL: final, ContentType: contentType, Body: ToUTF8(raw, contentType)}, resp.StatusCode, v, nil
}

// ToUTF8 decodes body using the charset declared in contentType or sniffed
// from the document. Bodies that fail to decode are returned unchanged.
func ToUTF8(body []byte, contentType string) []byte {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if enc == nil || strings.EqualFold(name, "utf-8") {
		return body
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		log.Debug().Err(err).Str("charset", name).Msg("charset decode failed")
		return body
	}
	return bytes.TrimPrefix(out, []byte("\xef\xbb\xbf"))
}

func (c *Client) pause(d time.Duration) {
	if c.sleep != nil {
		c.sleep(d)
		return
	}
	time.Sleep(d)
}

func isTransient(err error) bool {
	// Treat HTTP 5xx and context deadline as transient.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 500 && se.StatusCode <= 599
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// IsTextContentType accepts HTML, XHTML and plain text responses. An empty
// content type is accepted and sniffed later.
func IsTextContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return ct == "" || strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml") || strings.HasPrefix(ct, "text/plain")
}

// IsHTML reports whether a page should go through HTML extraction.
func (p Page) IsHTML() bool {
	ct := strings.ToLower(p.ContentType)
	if strings.HasPrefix(ct, "text/plain") {
		return false
	}
	if ct != "" {
		return true
	}
	return bytes.Contains(bytes.ToLower(p.Body[:min(len(p.Body), 512)]), []byte("<html"))
}
