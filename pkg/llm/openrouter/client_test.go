package openrouter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"portfolio-chat-be/pkg/llm"
)

type fakeDoer struct {
	status int
	body   string
	err    error

	lastReq *http.Request
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func newTestClient(d Doer) *Client {
	return NewClient("test-key", "https://example.com", "test-app", time.Second, WithHTTPClient(d))
}

func TestCompleteSuccess(t *testing.T) {
	doer := &fakeDoer{
		status: http.StatusOK,
		body:   `{"choices":[{"message":{"content":"hello there"}}]}`,
	}
	c := newTestClient(doer)

	got, err := c.Complete(context.Background(), llm.CompletionRequest{
		Model:    "some/model",
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "hello there" {
		t.Errorf("content = %q, want %q", got, "hello there")
	}

	if auth := doer.lastReq.Header.Get("Authorization"); auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if ref := doer.lastReq.Header.Get("HTTP-Referer"); ref != "https://example.com" {
		t.Errorf("HTTP-Referer = %q", ref)
	}
	if title := doer.lastReq.Header.Get("X-Title"); title != "test-app" {
		t.Errorf("X-Title = %q", title)
	}
}

func TestCompleteTransientFailures(t *testing.T) {
	tests := []struct {
		name string
		doer *fakeDoer
	}{
		{"server error", &fakeDoer{status: http.StatusBadGateway, body: "upstream down"}},
		{"invalid json", &fakeDoer{status: http.StatusOK, body: "<html>rate limited</html>"}},
		{"error body", &fakeDoer{status: http.StatusOK, body: `{"error":{"message":"overloaded"}}`}},
		{"no choices", &fakeDoer{status: http.StatusOK, body: `{"choices":[]}`}},
		{"empty content", &fakeDoer{status: http.StatusOK, body: `{"choices":[{"message":{"content":""}}]}`}},
		{"network error", &fakeDoer{err: fmt.Errorf("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(tt.doer)
			_, err := c.Complete(context.Background(), llm.CompletionRequest{Model: "some/model"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !llm.IsTransient(err) {
				t.Errorf("error %v should be transient", err)
			}
		})
	}
}

func TestCompleteContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(&fakeDoer{err: fmt.Errorf("context canceled")})
	_, err := c.Complete(ctx, llm.CompletionRequest{Model: "some/model"})
	if err == nil {
		t.Fatal("expected error")
	}
	if llm.IsTransient(err) {
		t.Errorf("cancellation must not be transient, got %v", err)
	}
}
