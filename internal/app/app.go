package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/shortly/internal/cache"
	"github.com/hyperifyio/shortly/internal/extract"
	"github.com/hyperifyio/shortly/internal/fetch"
	"github.com/hyperifyio/shortly/internal/llm"
	"github.com/hyperifyio/shortly/internal/present"
	"github.com/hyperifyio/shortly/internal/remote"
	"github.com/hyperifyio/shortly/internal/robots"
	"github.com/hyperifyio/shortly/internal/source"
)

// App wires configuration to a Session and its collaborators.
type App struct {
	cfg     Config
	session *Session
	stdin   io.Reader
	stdout  io.Writer
}

// Option customizes New.
type Option func(*App)

// WithIO replaces stdin and stdout, mostly for tests.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.stdin = in
		a.stdout = out
	}
}

// WithSource replaces the text source built from cfg.
func WithSource(src source.Source) Option {
	return func(a *App) { a.session.Source = src }
}

// WithRemote replaces the remote backend built from cfg.
func WithRemote(r remote.Summarizer) Option {
	return func(a *App) { a.session.SetRemote(r) }
}

func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	var (
		httpCache    *cache.HTTPCache
		summaryCache *cache.SummaryCache
	)
	if cfg.CacheDir != "" && !cfg.NoCache {
		// Apply cache invalidation controls
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			// Purge both caches by age; errors do not fail startup
			if n, err := cache.PurgeHTTPCacheByAge(cache.HTTPDir(cfg.CacheDir), cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("http cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale http cache entries")
			}
			if n, err := cache.PurgeSummaryCacheByAge(cache.SummaryDir(cfg.CacheDir), cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("summary cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale summary cache entries")
			}
		}
		httpCache = &cache.HTTPCache{Dir: cache.HTTPDir(cfg.CacheDir), StrictPerms: cfg.CacheStrictPerms}
		summaryCache = &cache.SummaryCache{Dir: cache.SummaryDir(cfg.CacheDir), StrictPerms: cfg.CacheStrictPerms}
	}

	a := &App{cfg: cfg, stdin: os.Stdin, stdout: os.Stdout}
	a.session = NewSession(cfg, buildSource(cfg, httpCache), nil)
	rem, err := buildRemote(ctx, cfg, summaryCache)
	if err != nil {
		return nil, err
	}
	a.session.SetRemote(rem)
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

func buildSource(cfg Config, httpCache *cache.HTTPCache) source.Source {
	client := newHTTPClient(0, !cfg.SkipTLSVerify)
	extractor := extract.NewDefault(cfg.MinLocalChars)
	hs := &source.HTTP{
		Fetcher: &fetch.Client{
			HTTPClient:        client,
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       2,
			PerRequestTimeout: cfg.FetchTimeout,
			Cache:             httpCache,
		},
		Extractor: extractor,
	}
	if !cfg.IgnoreRobots {
		hs.Robots = &robots.Manager{HTTPClient: newHTTPClient(10*time.Second, !cfg.SkipTLSVerify), Cache: httpCache, UserAgent: cfg.UserAgent, EntryExpiry: 30 * time.Minute}
	}
	opts := source.DefaultBrowserOptions()
	opts.UserAgent = cfg.UserAgent
	opts.ExecPath = cfg.ChromePath
	return &source.Router{
		HTTP:    hs,
		Browser: &source.Browser{Options: opts, Extractor: extractor},
		File:    &source.File{Extractor: extractor},
		Render:  cfg.Render,
	}
}

// buildRemote returns the configured backend. The Hugging Face backend is
// always built, even without a token, so a token can be supplied later.
func buildRemote(ctx context.Context, cfg Config, summaryCache *cache.SummaryCache) (remote.Summarizer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendChat:
		provider := llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey, newHTTPClient(0, !cfg.SkipTLSVerify))
		preflight(ctx, provider)
		return &remote.Chat{
			Client:         provider,
			Model:          cfg.LLMModel,
			Credential:     cfg.LLMAPIKey,
			AllowAnonymous: cfg.LLMBaseURL != "",
			Timeout:        cfg.RemoteTimeout,
			Cache:          summaryCache,
		}, nil
	case "", BackendHuggingFace:
		return &remote.HuggingFace{
			Endpoint:   cfg.HFEndpoint,
			Token:      cfg.HFToken,
			HTTPClient: newHTTPClient(0, !cfg.SkipTLSVerify),
			Timeout:    cfg.RemoteTimeout,
			Cache:      summaryCache,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Backend)
	}
}

// preflight lists models as a best-effort connectivity check.
func preflight(ctx context.Context, l llm.ModelLister) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := l.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) > 0 {
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	} else {
		log.Warn().Msg("LLM returned zero models")
	}
}

// Session exposes the application session.
func (a *App) Session() *Session { return a.session }

func (a *App) Close() {
	a.session.Cancel()
}

// Run summarizes cfg.Target once, or starts the command loop when
// Interactive is set.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Interactive {
		return a.Interactive(ctx, a.stdin, a.stdout)
	}
	src := a.session.Source
	if source.Classify(a.cfg.Target) == source.KindStdin {
		a.session.Source = stdinOverride(src, a.stdin)
	}

	var (
		res Result
		err error
	)
	if a.cfg.UseRemote {
		res, err = a.session.SummarizeRemote(ctx, a.cfg.Target)
	} else {
		res, err = a.session.SummarizeLocal(ctx, a.cfg.Target)
	}
	if err != nil {
		fmt.Fprintln(a.stdout, res.Status)
		return err
	}
	if err := present.Render(a.stdout, res.Bullets); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if len(res.Bullets) == 0 {
		return nil
	}
	if a.cfg.Copy {
		fmt.Fprintf(a.stdout, "\n%s\n", present.CopyText(res.Bullets))
	}
	if a.cfg.ExportPath != "" {
		out, err := present.WriteExport(a.cfg.ExportPath, res.Bullets)
		if err != nil {
			return err
		}
		log.Info().Str("out", out).Msg("wrote summary")
	}
	if a.cfg.PDFPath != "" {
		out, err := present.ExportPDF(a.cfg.PDFPath, titleFor(a.cfg.Target), res.Bullets)
		if err != nil {
			return err
		}
		log.Info().Str("out", out).Msg("wrote summary PDF")
	}
	return nil
}

// stdinOverride points the file source of a Router at in.
func stdinOverride(src source.Source, in io.Reader) source.Source {
	r, ok := src.(*source.Router)
	if !ok {
		return src
	}
	c := *r
	f := &source.File{Stdin: in}
	if old, ok := r.File.(*source.File); ok {
		f.Extractor = old.Extractor
	}
	c.File = f
	return &c
}

func titleFor(target string) string {
	switch source.Classify(target) {
	case source.KindStdin:
		return "Summary"
	case source.KindFile:
		return "Summary of " + filepath.Base(target)
	default:
		return "Summary of " + target
	}
}

// ExitCode maps a Run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidConfig):
		return 1
	case IsRequestFailure(err):
		return 2
	default:
		return 1
	}
}
