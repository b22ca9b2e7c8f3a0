package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/shortly/internal/present"
	"github.com/hyperifyio/shortly/internal/remote"
)

func writeArticle(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "article.txt")
	if err := os.WriteFile(p, []byte(article), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func oneShotConfig(t *testing.T, target string) Config {
	cfg := DefaultConfig()
	cfg.Target = target
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	return cfg
}

func TestRun_OneShotFileWritesExports(t *testing.T) {
	dir := t.TempDir()
	cfg := oneShotConfig(t, writeArticle(t))
	cfg.Sentences = 2
	cfg.Copy = true
	cfg.ExportPath = dir
	cfg.PDFPath = filepath.Join(dir, "s.pdf")

	var out bytes.Buffer
	a, err := New(context.Background(), cfg, WithIO(strings.NewReader(""), &out))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Count(out.String(), "  • ") != 2 || !strings.Contains(out.String(), "\n- ") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
	b, err := os.ReadFile(filepath.Join(dir, present.DefaultExportName))
	if err != nil || !strings.HasPrefix(string(b), "• ") {
		t.Fatalf("export: %q %v", b, err)
	}
	if _, err := os.Stat(cfg.PDFPath); err != nil {
		t.Fatalf("pdf not written: %v", err)
	}
}

func TestRun_Stdin(t *testing.T) {
	cfg := oneShotConfig(t, "-")
	var out bytes.Buffer
	a, err := New(context.Background(), cfg, WithIO(strings.NewReader(article), &out))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "  • ") {
		t.Fatalf("no bullets:\n%s", out.String())
	}
}

func TestRun_TooShortExitsTwo(t *testing.T) {
	p := filepath.Join(t.TempDir(), "short.txt")
	if err := os.WriteFile(p, []byte("Short."), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	a, err := New(context.Background(), oneShotConfig(t, p), WithIO(nil, &out))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = a.Run(context.Background())
	if !errors.Is(err, ErrTextTooShort) || ExitCode(err) != 2 {
		t.Fatalf("expected too-short with exit 2, got %v (%d)", err, ExitCode(err))
	}
	if !strings.Contains(out.String(), StatusTooShort) {
		t.Fatalf("status not printed: %q", out.String())
	}
}

func TestRun_RemoteViaHuggingFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary_text":"Remote one. Remote two."}`))
	}))
	defer srv.Close()

	cfg := oneShotConfig(t, writeArticle(t))
	cfg.UseRemote = true
	cfg.HFEndpoint = srv.URL
	cfg.HFToken = "tok"
	var out bytes.Buffer
	a, err := New(context.Background(), cfg, WithIO(nil, &out))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "  • Remote one.\n  • Remote two.\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRun_RemoteMissingTokenExitsTwo(t *testing.T) {
	cfg := oneShotConfig(t, writeArticle(t))
	cfg.UseRemote = true
	a, err := New(context.Background(), cfg, WithIO(nil, &bytes.Buffer{}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = a.Run(context.Background())
	if !errors.Is(err, remote.ErrMissingCredential) || ExitCode(err) != 2 {
		t.Fatalf("expected missing credential with exit 2, got %v", err)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	_, err := New(context.Background(), cfg)
	if !errors.Is(err, ErrInvalidConfig) || ExitCode(err) != 1 {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestInteractive_Script(t *testing.T) {
	dir := t.TempDir()
	target := writeArticle(t)
	cfg := testConfig()
	cfg.CacheDir = filepath.Join(dir, "cache")
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	script := strings.Join([]string{
		"copy",
		"n 2",
		"summarize " + target,
		"wait",
		"copy",
		"export " + dir,
		"remote",
		"wait",
		"bogus",
		"quit",
	}, "\n")
	var out bytes.Buffer
	if err := a.Interactive(context.Background(), strings.NewReader(script), &out); err != nil {
		t.Fatalf("interactive: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Sentences: 2",
		StatusDone,
		"\n- ",
		"Downloaded summary to " + filepath.Join(dir, present.DefaultExportName),
		StatusNeedToken,
		`unknown command "bogus"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if len(a.Session().Summary()) != 2 {
		t.Fatalf("failed remote call should keep the local summary: %q", a.Session().Summary())
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Fatal("nil should be 0")
	}
	if ExitCode(&ExtractionError{Target: "x", Reason: "r"}) != 2 {
		t.Fatal("extraction failure should be 2")
	}
	if ExitCode(&remote.ServiceError{Backend: "huggingface", StatusCode: 500}) != 2 {
		t.Fatal("service error should be 2")
	}
	if ExitCode(errors.New("other")) != 1 {
		t.Fatal("other errors should be 1")
	}
}
