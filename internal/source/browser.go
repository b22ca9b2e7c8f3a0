package source

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/shortly/internal/extract"
)

const (
	DefaultWindowWidth  = 1366
	DefaultWindowHeight = 900
	// DefaultRenderTimeout bounds one headless page load.
	DefaultRenderTimeout = 45 * time.Second
)

// BrowserOptions configures the headless Chrome instance.
type BrowserOptions struct {
	// Lean disables images, plugins and extensions for faster loads.
	Lean         bool
	WindowWidth  int
	WindowHeight int
	UserAgent    string
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
}

// DefaultBrowserOptions returns lean options with the default window size.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Lean:         true,
		WindowWidth:  DefaultWindowWidth,
		WindowHeight: DefaultWindowHeight,
	}
}

// ChromeOptions converts BrowserOptions into allocator options.
func ChromeOptions(opts BrowserOptions) []chromedp.ExecAllocatorOption {
	w, h := opts.WindowWidth, opts.WindowHeight
	if w <= 0 {
		w = DefaultWindowWidth
	}
	if h <= 0 {
		h = DefaultWindowHeight
	}
	out := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	out = append(out,
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(w, h),
	)
	if opts.UserAgent != "" {
		out = append(out, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		out = append(out, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.Lean {
		out = append(out,
			chromedp.Flag("blink-settings", "imagesEnabled=false"),
			chromedp.Flag("disable-plugins", true),
			chromedp.Flag("disable-extensions", true),
		)
	}
	return out
}

// Browser renders a URL in headless Chrome and extracts text from the
// resulting DOM. It serves pages whose content is built by scripts.
type Browser struct {
	Options   BrowserOptions
	Timeout   time.Duration
	Extractor extract.Extractor
}

func (b *Browser) Text(ctx context.Context, target string) (string, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, ChromeOptions(b.Options)...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var outer, finalURL string
	start := time.Now()
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body"),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &outer),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", target, err)
	}
	log.Debug().Str("url", finalURL).Dur("elapsed", time.Since(start)).Int("bytes", len(outer)).Msg("page rendered")

	ex := b.Extractor
	if ex == nil {
		ex = extract.HeuristicExtractor{}
	}
	return ex.Extract([]byte(outer), finalURL).Text, nil
}
