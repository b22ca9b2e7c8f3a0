// Command summary-stub serves canned remote-summary responses for local
// testing: a Hugging Face style inference endpoint and an OpenAI-compatible
// chat endpoint. Summaries are produced by the local extractive summarizer.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/shortly/internal/summarize"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type stubConfig struct {
	Model string
	// Shape selects the inference response layout: object, array, string,
	// unrecognized or error.
	Shape string
	// Token, when set, is required as the bearer token.
	Token     string
	Sentences int
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := stubConfig{
		Model:     envOr("MODEL_ID", "test-model"),
		Shape:     envOr("STUB_SHAPE", "array"),
		Token:     strings.TrimSpace(os.Getenv("STUB_TOKEN")),
		Sentences: summarize.ParseCount(os.Getenv("STUB_SENTENCES")),
	}
	addr := envOr("ADDR", ":8081")

	log.Info().Str("addr", addr).Str("model", cfg.Model).Str("shape", cfg.Shape).Msg("summary-stub listening")
	if err := http.ListenAndServe(addr, newMux(cfg)); err != nil {
		log.Fatal().Err(err).Msg("listen failed")
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func newMux(cfg stubConfig) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/models/", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(cfg, r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials in Authorization header"})
			return
		}
		defer r.Body.Close()
		var req inferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		summary := strings.Join(summarize.Summarize(req.Inputs, cfg.Sentences), " ")
		log.Debug().Int("chars", len(req.Inputs)).Str("shape", cfg.Shape).Msg("inference request")
		switch cfg.Shape {
		case "object":
			writeJSON(w, http.StatusOK, map[string]string{"summary_text": summary})
		case "string":
			writeJSON(w, http.StatusOK, summary)
		case "unrecognized":
			writeJSON(w, http.StatusOK, map[string]string{"generated_text": summary})
		case "error":
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "Model is currently loading", "estimated_time": 20.0})
		default:
			writeJSON(w, http.StatusOK, []map[string]string{{"summary_text": summary}})
		}
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"id": cfg.Model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(cfg, r) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"message": "invalid api key"}})
			return
		}
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		user := ""
		for _, m := range req.Messages {
			if m.Role == "user" {
				user = m.Content
			}
		}
		if strings.TrimSpace(user) == "" {
			http.Error(w, "missing user message", http.StatusBadRequest)
			return
		}
		content := strings.Join(summarize.Summarize(user, cfg.Sentences), " ")
		writeJSON(w, http.StatusOK, map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	return mux
}

func authorized(cfg stubConfig, r *http.Request) bool {
	if cfg.Token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+cfg.Token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
