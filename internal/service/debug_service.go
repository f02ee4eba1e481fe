package service

import (
	"context"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/pkg/llm"
)

// IDebugService exposes raw provider probes for troubleshooting. These
// endpoints bypass retrieval, history and post-processing entirely.
type IDebugService interface {
	Probe(ctx context.Context, req dto.DebugLLMRequest) (*dto.DebugLLMResponse, error)
}

type debugService struct {
	completer    llm.Completer
	defaultModel string
}

func NewDebugService(completer llm.Completer, defaultModel string) IDebugService {
	return &debugService{completer: completer, defaultModel: defaultModel}
}

func (s *debugService) Probe(ctx context.Context, req dto.DebugLLMRequest) (*dto.DebugLLMResponse, error) {
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	output, err := s.completer.Complete(ctx, llm.CompletionRequest{
		Model: model,
		Messages: []llm.Message{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: 0.2,
		MaxTokens:   380,
	})
	if err != nil {
		return nil, err
	}
	return &dto.DebugLLMResponse{Model: model, Output: output}, nil
}
