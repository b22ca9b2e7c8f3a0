package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apppkg "github.com/hyperifyio/shortly/internal/app"
)

func TestPreScan(t *testing.T) {
	args := []string{"-v", "--config", "a.yaml", "-env=.env.local", "https://x"}
	if got := preScan(args, "config"); got != "a.yaml" {
		t.Fatalf("config: %q", got)
	}
	if got := preScan(args, "env"); got != ".env.local" {
		t.Fatalf("env: %q", got)
	}
	if got := preScan(args, "missing"); got != "" {
		t.Fatalf("missing: %q", got)
	}
}

// Flags beat env, env beats the config file.
func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "shortly.yaml")
	if err := os.WriteFile(cfgPath, []byte("sentences: 9\nhuggingface:\n  token: from-file\n  endpoint: http://file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HF_TOKEN", "from-env")
	t.Setenv("HF_ENDPOINT", "")
	t.Setenv("SHORTLY_SENTENCES", "")

	cfg, err := loadConfig([]string{"-config", cfgPath, "-env", filepath.Join(dir, "none"), "-n", "3", "article.txt"}, io.Discard)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Sentences != 3 {
		t.Fatalf("flag should win: %d", cfg.Sentences)
	}
	if cfg.HFToken != "from-env" {
		t.Fatalf("env should beat file: %q", cfg.HFToken)
	}
	if cfg.HFEndpoint != "http://file" {
		t.Fatalf("file should beat default: %q", cfg.HFEndpoint)
	}
	if cfg.Target != "article.txt" || cfg.Interactive {
		t.Fatalf("target: %+v", cfg)
	}
}

func TestRun_OneShotFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	text := strings.Repeat("Shortly summarizes long articles into a few sentences. ", 5)
	if err := os.WriteFile(in, []byte(text), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	cfg := apppkg.DefaultConfig()
	cfg.Target = in
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.ExportPath = filepath.Join(dir, "out.txt")
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run error: %v", err)
	}
	b, err := os.ReadFile(cfg.ExportPath)
	if err != nil || len(b) == 0 {
		t.Fatalf("expected export file, err=%v", err)
	}
}

// Exit code policy conditions are surfaced as errors from run().
func TestRun_TooShortIsRequestFailure(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(in, []byte("tiny"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	cfg := apppkg.DefaultConfig()
	cfg.Target = in
	cfg.CacheDir = filepath.Join(dir, "cache")
	err := run(context.Background(), cfg)
	if !errors.Is(err, apppkg.ErrTextTooShort) || apppkg.ExitCode(err) != 2 {
		t.Fatalf("expected exit-2 failure, got %v", err)
	}
}
