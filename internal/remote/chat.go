package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/shortly/internal/cache"
	"github.com/hyperifyio/shortly/internal/llm"
)

const chatSystemPrompt = "You condense articles. Reply with a short summary written as plain sentences. " +
	"Do not use lists, headings or markup, and do not add facts that are not in the article."

// Chat summarizes through an OpenAI-compatible chat completion endpoint.
type Chat struct {
	Client llm.Client
	Model  string
	// Credential is the API key the Client was built with. It is only
	// checked here; an empty value is accepted when AllowAnonymous is set,
	// which is the case for local servers.
	Credential     string
	AllowAnonymous bool
	// SystemPrompt overrides the default instructions when non-empty.
	SystemPrompt string
	Timeout      time.Duration
	Cache        *cache.SummaryCache
}

func (c *Chat) Name() string { return "chat:" + c.Model }

func (c *Chat) Validate() error {
	if c.Client == nil || strings.TrimSpace(c.Model) == "" {
		return ErrNotConfigured
	}
	if strings.TrimSpace(c.Credential) == "" && !c.AllowAnonymous {
		return ErrMissingCredential
	}
	return nil
}

func (c *Chat) Summarize(ctx context.Context, text string) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return cachedCall(ctx, c.Name(), c.Cache, c.Timeout, Payload(text), c.call)
}

func (c *Chat) call(ctx context.Context, payload string) (string, error) {
	system := chatSystemPrompt
	if strings.TrimSpace(c.SystemPrompt) != "" {
		system = c.SystemPrompt
	}
	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return "", &ServiceError{Backend: BackendChat, StatusCode: statusOf(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Backend: BackendChat, Err: fmt.Errorf("%w: no choices", ErrUnrecognizedShape)}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
