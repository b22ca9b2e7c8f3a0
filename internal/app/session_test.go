package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/shortly/internal/remote"
	"github.com/hyperifyio/shortly/internal/source"
)

const article = "Cats are small domestic animals. Cats like to sleep in the sun for hours. " +
	"Dogs are loyal companions that enjoy long walks. Cats and dogs can live together peacefully. " +
	"Many families keep cats as pets because cats are quiet."

func staticSource(text string) source.Source {
	return source.Func(func(context.Context, string) (string, error) { return text, nil })
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Interactive = true
	return cfg
}

func TestSession_LocalSummary(t *testing.T) {
	s := NewSession(testConfig(), staticSource(article), nil)
	s.SetCount(2)
	res, err := s.SummarizeLocal(context.Background(), "page")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(res.Bullets) != 2 || res.Status != StatusDone || res.RequestID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := s.Summary(); len(got) != 2 || got[0] != res.Bullets[0] {
		t.Fatalf("summary not stored: %q", got)
	}
}

func TestSession_LocalTooShort(t *testing.T) {
	s := NewSession(testConfig(), staticSource("Too short."), nil)
	res, err := s.SummarizeLocal(context.Background(), "page")
	var ee *ExtractionError
	if !errors.As(err, &ee) || !errors.Is(err, ErrTextTooShort) {
		t.Fatalf("expected ExtractionError(ErrTextTooShort), got %v", err)
	}
	if ee.Target != "page" {
		t.Fatalf("target: %q", ee.Target)
	}
	if len(res.Bullets) != 0 || res.Status != StatusTooShort {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSession_LocalSourceError(t *testing.T) {
	boom := errors.New("boom")
	src := source.Func(func(context.Context, string) (string, error) { return "", boom })
	s := NewSession(testConfig(), src, nil)
	_, err := s.SummarizeLocal(context.Background(), "page")
	if !errors.Is(err, boom) || !IsRequestFailure(err) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestSession_RemoteMissingTokenSkipsExtraction(t *testing.T) {
	var calls int32
	src := source.Func(func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return article, nil
	})
	s := NewSession(testConfig(), src, &remote.HuggingFace{})
	if _, err := s.SummarizeLocal(context.Background(), "page"); err != nil {
		t.Fatalf("local: %v", err)
	}
	prior := s.Summary()

	res, err := s.SummarizeRemote(context.Background(), "page")
	if !errors.Is(err, remote.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if res.Status != StatusNeedToken {
		t.Fatalf("status: %q", res.Status)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("remote request should not extract; calls=%d", calls)
	}
	if got := s.Summary(); len(got) != len(prior) {
		t.Fatalf("prior summary lost: %q", got)
	}
}

func TestSession_RemoteFailureKeepsPriorSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewSession(testConfig(), staticSource(article), &remote.HuggingFace{Endpoint: srv.URL, Token: "tok"})
	if _, err := s.SummarizeLocal(context.Background(), "page"); err != nil {
		t.Fatalf("local: %v", err)
	}
	prior := s.Summary()
	res, err := s.SummarizeRemote(context.Background(), "page")
	if !remote.IsServiceError(err) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if res.Status != StatusRemoteError {
		t.Fatalf("status: %q", res.Status)
	}
	got := s.Summary()
	if len(got) != len(prior) || got[0] != prior[0] {
		t.Fatalf("summary changed: %q vs %q", got, prior)
	}
}

type failingChat struct{ err error }

func (f failingChat) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, f.err
}

func TestSession_RemoteFailureStatus(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	cases := []struct {
		name string
		rem  remote.Summarizer
		want string
	}{
		{
			name: "huggingface timeout",
			rem:  &remote.HuggingFace{Endpoint: slow.URL, Token: "tok", Timeout: 50 * time.Millisecond},
			want: StatusRemoteFailed,
		},
		{
			name: "chat api error",
			rem:  &remote.Chat{Client: failingChat{err: &openai.APIError{HTTPStatusCode: 500, Message: "boom"}}, Model: "m", Credential: "k"},
			want: StatusServiceError,
		},
		{
			name: "chat transport error",
			rem:  &remote.Chat{Client: failingChat{err: errors.New("connection refused")}, Model: "m", Credential: "k"},
			want: StatusRemoteFailed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession(testConfig(), staticSource(article), tc.rem)
			res, err := s.SummarizeRemote(context.Background(), "page")
			if err == nil {
				t.Fatalf("expected error")
			}
			if res.Status != tc.want {
				t.Fatalf("status = %q, want %q", res.Status, tc.want)
			}
		})
	}
}

func TestSession_RemoteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"summary_text":"Cats sleep. Dogs walk. Both are pets."}]`))
	}))
	defer srv.Close()

	s := NewSession(testConfig(), staticSource(article), &remote.HuggingFace{Endpoint: srv.URL})
	if err := s.SetToken("tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	s.SetCount(2)
	res, err := s.SummarizeRemote(context.Background(), "page")
	if err != nil {
		t.Fatalf("remote: %v", err)
	}
	if strings.Join(res.Bullets, "|") != "Cats sleep.|Dogs walk." || !res.Remote {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSession_RemoteTooShort(t *testing.T) {
	s := NewSession(testConfig(), staticSource(strings.Repeat("x", 99)), &remote.HuggingFace{Token: "tok", Endpoint: "http://127.0.0.1:1"})
	_, err := s.SummarizeRemote(context.Background(), "page")
	if !errors.Is(err, ErrTextTooShort) {
		t.Fatalf("expected ErrTextTooShort, got %v", err)
	}
	if s.Status() != StatusRemoteShort {
		t.Fatalf("status: %q", s.Status())
	}
}

func TestSession_NewRequestSupersedesOld(t *testing.T) {
	entered := make(chan struct{})
	src := source.Func(func(ctx context.Context, target string) (string, error) {
		if target == "slow" {
			close(entered)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return article, nil
	})
	s := NewSession(testConfig(), src, nil)

	type out struct {
		res Result
		err error
	}
	done := make(chan out, 1)
	go func() {
		res, err := s.SummarizeLocal(context.Background(), "slow")
		done <- out{res, err}
	}()
	<-entered

	res, err := s.SummarizeLocal(context.Background(), "fast")
	if err != nil || len(res.Bullets) == 0 {
		t.Fatalf("fast request: %+v %v", res, err)
	}
	select {
	case o := <-done:
		if !errors.Is(o.err, ErrSuperseded) {
			t.Fatalf("expected ErrSuperseded for the old request, got %v", o.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("old request did not return")
	}
	if s.Status() != StatusDone || len(s.Summary()) == 0 {
		t.Fatalf("newest result should stay published: %q %q", s.Status(), s.Summary())
	}
}

func TestSession_SetCountAndClear(t *testing.T) {
	s := NewSession(testConfig(), staticSource(article), nil)
	if n := s.SetCount(0); n != 5 {
		t.Fatalf("SetCount(0) = %d", n)
	}
	if n := s.SetCount(-3); n != 5 {
		t.Fatalf("SetCount(-3) = %d", n)
	}
	if _, err := s.SummarizeLocal(context.Background(), "page"); err != nil {
		t.Fatal(err)
	}
	s.Clear()
	if len(s.Summary()) != 0 || s.Status() != StatusReady {
		t.Fatalf("clear did not reset: %q %q", s.Summary(), s.Status())
	}
}

func TestSession_SetTokenUnsupported(t *testing.T) {
	s := NewSession(testConfig(), nil, &remote.Chat{Model: "m"})
	if err := s.SetToken("x"); !errors.Is(err, ErrTokenUnsupported) {
		t.Fatalf("expected ErrTokenUnsupported, got %v", err)
	}
	s.SetRemote(nil)
	if err := s.SetToken("x"); err != nil {
		t.Fatalf("token on empty backend: %v", err)
	}
}
