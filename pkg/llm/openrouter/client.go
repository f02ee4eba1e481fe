// Package openrouter implements the llm.Completer contract against the
// OpenRouter chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"portfolio-chat-be/pkg/llm"
)

const defaultAPIURL = "https://openrouter.ai/api/v1/chat/completions"

// Doer abstracts the HTTP transport so model-fallback behavior is testable
// without a network.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	apiKey  string
	siteURL string
	appName string
	apiURL  string
	http    Doer
}

type Option func(*Client)

// WithHTTPClient replaces the transport (tests inject failures here).
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithAPIURL overrides the endpoint.
func WithAPIURL(url string) Option {
	return func(c *Client) { c.apiURL = url }
}

// NewClient builds an OpenRouter client. siteURL and appName are optional
// attribution headers recommended by the OpenRouter docs.
func NewClient(apiKey, siteURL, appName string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		siteURL: siteURL,
		appName: appName,
		apiURL:  defaultAPIURL,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatPayload struct {
	Model            string        `json:"model"`
	Temperature      float64       `json:"temperature,omitempty"`
	TopP             float64       `json:"top_p,omitempty"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	FrequencyPenalty float64       `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64       `json:"presence_penalty,omitempty"`
	Messages         []llm.Message `json:"messages"`
	ResponseFormat   interface{}   `json:"response_format,omitempty"`
}

type chatResponse struct {
	Error   json.RawMessage `json:"error,omitempty"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues one attempt against one model and returns the first
// choice's content. Every provider-side failure mode comes back as a
// *llm.TransientError; only context cancellation and request construction
// are fatal.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	payload := chatPayload{
		Model:            req.Model,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		MaxTokens:        req.MaxTokens,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		Messages:         req.Messages,
		ResponseFormat:   req.ResponseFormat,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.siteURL != "" {
		httpReq.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.appName != "" {
		httpReq.Header.Set("X-Title", c.appName)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &llm.TransientError{Model: req.Model, Reason: fmt.Sprintf("request error: %v", err)}
	}
	defer resp.Body.Close()

	// 5xx is a transient capacity error; try the next model.
	if resp.StatusCode >= http.StatusInternalServerError {
		return "", &llm.TransientError{Model: req.Model, Reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	// Some providers return 200 with an error body.
	var data chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", &llm.TransientError{Model: req.Model, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if len(data.Error) > 0 && string(data.Error) != "null" {
		return "", &llm.TransientError{Model: req.Model, Reason: fmt.Sprintf("provider error: %s", data.Error)}
	}
	if len(data.Choices) == 0 {
		return "", &llm.TransientError{Model: req.Model, Reason: "missing choices"}
	}

	content := data.Choices[0].Message.Content
	if content == "" {
		return "", &llm.TransientError{Model: req.Model, Reason: "empty content"}
	}
	return content, nil
}
