package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperifyio/shortly/internal/cache"
)

// DefaultHuggingFaceEndpoint is the hosted BART summarization model.
const DefaultHuggingFaceEndpoint = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

const maxErrorBody = 4 << 10

// HuggingFace calls a Hugging Face inference endpoint with a bearer token.
type HuggingFace struct {
	Endpoint   string
	Token      string
	HTTPClient *http.Client
	// Timeout bounds one call; zero means DefaultTimeout.
	Timeout time.Duration
	// Cache, when set, stores successful summaries keyed by endpoint and payload.
	Cache *cache.SummaryCache
}

func (h *HuggingFace) endpoint() string {
	if strings.TrimSpace(h.Endpoint) == "" {
		return DefaultHuggingFaceEndpoint
	}
	return h.Endpoint
}

// Name identifies the backend in cache keys and logs.
func (h *HuggingFace) Name() string { return "huggingface:" + h.endpoint() }

// Validate fails with ErrMissingCredential when no token is set.
func (h *HuggingFace) Validate() error {
	if strings.TrimSpace(h.Token) == "" {
		return ErrMissingCredential
	}
	return nil
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Summarize posts the first MaxPayloadChars of text as {"inputs": ...} and
// decodes the summary.
func (h *HuggingFace) Summarize(ctx context.Context, text string) (string, error) {
	if err := h.Validate(); err != nil {
		return "", err
	}
	return cachedCall(ctx, h.Name(), h.Cache, h.Timeout, Payload(text), h.call)
}

func (h *HuggingFace) call(ctx context.Context, payload string) (string, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: payload})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(h.Token))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := h.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &ServiceError{Backend: BackendHuggingFace, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &ServiceError{Backend: BackendHuggingFace, StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ServiceError{Backend: BackendHuggingFace, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	decoded, err := DecodeResponse(raw)
	if err != nil {
		return "", &ServiceError{Backend: BackendHuggingFace, StatusCode: resp.StatusCode, Body: firstBytes(raw, maxErrorBody), Err: err}
	}
	return decoded.Summary, nil
}
