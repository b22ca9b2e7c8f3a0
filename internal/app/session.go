package app

import (
	"context"
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/shortly/internal/remote"
	"github.com/hyperifyio/shortly/internal/source"
	"github.com/hyperifyio/shortly/internal/summarize"
)

// Status lines shown to the user.
const (
	StatusReady         = "Ready. Summarize a URL, a file or - for stdin."
	StatusExtracting    = "Extracting page text..."
	StatusSummarizing   = "Summarizing..."
	StatusDone          = "Done, showing summary. You can copy or export it."
	StatusTooShort      = "Page text too short or extraction failed. Try on a full article page."
	StatusRemoteShort   = "Page text too short or extraction failed."
	StatusNeedToken     = "Please enter a Hugging Face API token first."
	StatusCallingRemote = "Calling the remote summarizer (this uses your token)..."
	StatusRemoteError   = "Hugging Face API error. Check token / quota."
	StatusRemoteFailed  = "Failed calling the remote summarizer. See the log for details."
	StatusServiceError  = "Remote summarizer returned an error. Check credentials / quota."
	StatusRemoteDone    = "Remote summary displayed."
	StatusNoRemote      = "No remote summarizer is configured."
)

// Result is what one request published.
type Result struct {
	RequestID string
	Bullets   []string
	Status    string
	Remote    bool
}

// Session holds the current summary and runs one request at a time.
// Starting a request cancels the one in flight; only the most recently
// started request may publish its result.
type Session struct {
	Source     source.Source
	Summarizer *summarize.Summarizer

	MinLocalChars  int
	MinRemoteChars int

	mu       sync.Mutex
	remote   remote.Summarizer
	count    int
	seq      uint64
	cancel   context.CancelFunc
	summary  []string
	status   string
	statusFn func(string)
}

// NewSession builds a session reading text from src. rem may be nil.
func NewSession(cfg Config, src source.Source, rem remote.Summarizer) *Session {
	return &Session{
		Source:         src,
		Summarizer:     summarize.New(),
		MinLocalChars:  cfg.MinLocalChars,
		MinRemoteChars: cfg.MinRemoteChars,
		remote:         rem,
		count:          normalizeCount(cfg.Sentences),
		status:         StatusReady,
	}
}

func normalizeCount(n int) int {
	if n <= 0 {
		return summarize.DefaultCount
	}
	return n
}

// OnStatus registers fn to receive every status change of the current
// request. fn runs with the session lock held and must not call back into
// the session.
func (s *Session) OnStatus(fn func(string)) {
	s.mu.Lock()
	s.statusFn = fn
	s.mu.Unlock()
}

// SetCount sets the requested number of sentences and returns the value
// in effect.
func (s *Session) SetCount(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = normalizeCount(n)
	return s.count
}

func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Summary returns a copy of the current bullets.
func (s *Session) Summary() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.summary...)
}

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetRemote replaces the remote backend.
func (s *Session) SetRemote(r remote.Summarizer) {
	s.mu.Lock()
	s.remote = r
	s.mu.Unlock()
}

// SetToken swaps the bearer token of a Hugging Face backend, creating one
// with the default endpoint when none is configured.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r := s.remote.(type) {
	case nil:
		s.remote = &remote.HuggingFace{Token: token}
	case *remote.HuggingFace:
		c := *r
		c.Token = token
		s.remote = &c
	default:
		return ErrTokenUnsupported
	}
	return nil
}

// Clear cancels any request in flight and empties the summary.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.summary = nil
	s.setStatusLocked(StatusReady)
}

// Cancel stops the request in flight, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

type request struct {
	id     string
	seq    uint64
	count  int
	remote remote.Summarizer
	ctx    context.Context
}

func (s *Session) begin(ctx context.Context) request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	return request{id: uuid.NewString(), seq: s.seq, count: s.count, remote: s.remote, ctx: ctx}
}

// finish releases the request context once it is no longer current.
func (s *Session) finish(r request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.seq == s.seq && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) current(r request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.seq == s.seq
}

// progress sets a status line if r is still current.
func (s *Session) progress(r request, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.seq != s.seq {
		return false
	}
	s.setStatusLocked(status)
	return true
}

// publish stores the outcome of r. keep leaves the previous bullets in
// place. Stale requests publish nothing.
func (s *Session) publish(r request, bullets []string, status string, keep bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.seq != s.seq {
		return false
	}
	if !keep {
		s.summary = bullets
	}
	s.setStatusLocked(status)
	return true
}

func (s *Session) setStatusLocked(status string) {
	s.status = status
	if s.statusFn != nil {
		s.statusFn(status)
	}
}

func (s *Session) result(r request, isRemote bool) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Result{RequestID: r.id, Bullets: append([]string(nil), s.summary...), Status: s.status, Remote: isRemote}
}

func (s *Session) superseded(r request, err error) (Result, error) {
	log.Debug().Str("request", r.id).Err(err).Msg("request superseded")
	return Result{RequestID: r.id}, ErrSuperseded
}

func (s *Session) extract(r request, target string, min int) (string, error) {
	if s.Source == nil {
		return "", &ExtractionError{Target: target, Reason: "no text source", Err: source.ErrNoSource}
	}
	text, err := s.Source.Text(r.ctx, target)
	if err != nil {
		return "", &ExtractionError{Target: target, Reason: "extraction failed", Err: err}
	}
	if n := utf8.RuneCountInString(text); n < min {
		return "", &ExtractionError{Target: target, Reason: "text too short", Err: ErrTextTooShort}
	}
	return text, nil
}

// SummarizeLocal extracts target and summarizes it with the rule-based
// summarizer. An extraction failure empties the summary.
func (s *Session) SummarizeLocal(ctx context.Context, target string) (Result, error) {
	r := s.begin(ctx)
	defer s.finish(r)
	logger := log.With().Str("request", r.id).Str("target", target).Logger()

	s.progress(r, StatusExtracting)
	text, err := s.extract(r, target, s.MinLocalChars)
	if !s.current(r) {
		return s.superseded(r, err)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("extraction failed")
		if !s.publish(r, nil, StatusTooShort, false) {
			return s.superseded(r, err)
		}
		return s.result(r, false), err
	}

	s.progress(r, StatusSummarizing)
	bullets := s.Summarizer.Summarize(text, r.count)
	if !s.publish(r, bullets, StatusDone, false) {
		return s.superseded(r, nil)
	}
	logger.Info().Int("chars", utf8.RuneCountInString(text)).Int("sentences", len(bullets)).Msg("summary ready")
	return s.result(r, false), nil
}

// SummarizeRemote extracts target and summarizes it with the remote
// backend. A missing credential fails before extraction; a failed call
// keeps the previous summary.
func (s *Session) SummarizeRemote(ctx context.Context, target string) (Result, error) {
	r := s.begin(ctx)
	defer s.finish(r)
	logger := log.With().Str("request", r.id).Str("target", target).Logger()

	if r.remote == nil {
		s.publish(r, nil, StatusNoRemote, true)
		return s.result(r, true), remote.ErrNotConfigured
	}
	if err := r.remote.Validate(); err != nil {
		status := StatusNoRemote
		if errors.Is(err, remote.ErrMissingCredential) {
			status = StatusNeedToken
		}
		s.publish(r, nil, status, true)
		return s.result(r, true), err
	}

	s.progress(r, StatusExtracting)
	text, err := s.extract(r, target, s.MinRemoteChars)
	if !s.current(r) {
		return s.superseded(r, err)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("extraction failed")
		if !s.publish(r, nil, StatusRemoteShort, true) {
			return s.superseded(r, err)
		}
		return s.result(r, true), err
	}

	s.progress(r, StatusCallingRemote)
	summary, err := r.remote.Summarize(r.ctx, text)
	if !s.current(r) {
		return s.superseded(r, err)
	}
	if err != nil {
		status := remoteFailureStatus(err)
		logger.Warn().Err(err).Str("backend", r.remote.Name()).Msg("remote summarization failed")
		if !s.publish(r, nil, status, true) {
			return s.superseded(r, err)
		}
		return s.result(r, true), err
	}

	bullets := remote.Bullets(summary, r.count)
	if !s.publish(r, bullets, StatusRemoteDone, false) {
		return s.superseded(r, nil)
	}
	logger.Info().Str("backend", r.remote.Name()).Int("sentences", len(bullets)).Msg("remote summary ready")
	return s.result(r, true), nil
}

// remoteFailureStatus picks the status line for a failed remote call. Only
// an answer from the service itself points at the token or quota; transport
// failures and timeouts carry no status code.
func remoteFailureStatus(err error) string {
	var se *remote.ServiceError
	if !errors.As(err, &se) || se.StatusCode == 0 {
		return StatusRemoteFailed
	}
	if se.Backend == remote.BackendHuggingFace {
		return StatusRemoteError
	}
	return StatusServiceError
}
