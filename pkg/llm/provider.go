package llm

import (
	"context"
	"errors"
)

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"`
}

// CompletionRequest describes a single model attempt. ResponseFormat, when
// set, is passed through verbatim (OpenRouter json_schema enforcement).
type CompletionRequest struct {
	Model            string
	Messages         []Message
	Temperature      float64
	TopP             float64
	MaxTokens        int
	FrequencyPenalty float64
	PresencePenalty  float64
	ResponseFormat   interface{}
}

// Completer issues one completion attempt against one model. Implementations
// classify provider failures as transient so callers can advance through an
// ordered candidate list.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// TransientError marks a provider failure that should be retried against the
// next candidate model: network errors, 5xx responses, malformed bodies,
// provider-embedded error objects, and empty content.
type TransientError struct {
	Model  string
	Reason string
}

func (e *TransientError) Error() string {
	return e.Model + ": " + e.Reason
}

// IsTransient reports whether err allows falling through to the next model.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
