package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/repository/contract"
	"portfolio-chat-be/pkg/index"
	"portfolio-chat-be/pkg/llm"
	"portfolio-chat-be/pkg/rag/response"
)

const retrievalTopK = 3

// ErrNotReady is returned while the index has not been built yet, e.g. during
// startup embedding or after a failed reindex.
var ErrNotReady = fmt.Errorf("knowledge index not initialized")

// ClientInfo is transport-level request context the controller extracts for
// analytics. The service itself never touches the HTTP layer.
type ClientInfo struct {
	Ip        string
	UserAgent string
}

type IChatService interface {
	Chat(ctx context.Context, req dto.ChatRequest, client ClientInfo) (*dto.ChatResponse, error)
	History(ctx context.Context, sessionID string) (*dto.HistoryResponse, error)
}

type chatService struct {
	sessions  contract.SessionStore
	index     *index.Index
	generator *response.Generator
	publisher IRecorderPublisher
	log       logger.ILogger
}

func NewChatService(
	sessions contract.SessionStore,
	ix *index.Index,
	generator *response.Generator,
	publisher IRecorderPublisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessions:  sessions,
		index:     ix,
		generator: generator,
		publisher: publisher,
		log:       log,
	}
}

func (s *chatService) Chat(ctx context.Context, req dto.ChatRequest, client ClientInfo) (*dto.ChatResponse, error) {
	if !s.index.Ready() {
		return nil, ErrNotReady
	}

	started := time.Now()
	sessionID := req.SessionId

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		s.log.Warn("ChatService", "failed to load history, answering without it", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		history = nil
	}

	userAt := time.Now().UTC()
	if err := s.sessions.AppendTurn(ctx, sessionID, contract.Turn{
		Role:      constant.ChatRoleUser,
		Text:      req.Message,
		Timestamp: userAt,
	}); err != nil {
		return nil, fmt.Errorf("append user turn: %w", err)
	}

	results, err := s.index.Search(req.Message, retrievalTopK)
	if err != nil {
		// Retrieval failures degrade to an empty context rather than a 500.
		s.log.Warn("ChatService", "retrieval failed, using empty context", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		results = nil
	}
	contextText := formatContext(results)

	result := s.generator.Generate(ctx, sessionID, req.Message, contextText, toLLMHistory(history))

	assistantAt := time.Now().UTC()
	if err := s.sessions.AppendTurn(ctx, sessionID, contract.Turn{
		Role:      constant.ChatRoleAssistant,
		Text:      result.Answer,
		Timestamp: assistantAt,
	}); err != nil {
		s.log.Error("ChatService", "failed to persist assistant turn", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	s.record(ctx, req, client, result, results, contextText, userAt, assistantAt, time.Since(started))

	return &dto.ChatResponse{
		Response:  result.Answer,
		SessionId: sessionID,
		Timestamp: assistantAt,
	}, nil
}

func (s *chatService) History(ctx context.Context, sessionID string) (*dto.HistoryResponse, error) {
	turns, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.HistoryTurn, len(turns))
	for i, t := range turns {
		out[i] = dto.HistoryTurn{Role: t.Role, Content: t.Text, Timestamp: t.Timestamp}
	}
	return &dto.HistoryResponse{SessionId: sessionID, Messages: out}, nil
}

func (s *chatService) record(
	ctx context.Context,
	req dto.ChatRequest,
	client ClientInfo,
	result *response.Result,
	results []index.Result,
	contextText string,
	userAt, assistantAt time.Time,
	elapsed time.Duration,
) {
	sources := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, r.Chunk.Filename)
	}

	payload := dto.RecordChatMessage{
		SessionId:          req.SessionId,
		ClientIp:           client.Ip,
		UserAgent:          client.UserAgent,
		Meta:               req.Meta,
		UserMessage:        req.Message,
		UserTimestamp:      userAt,
		AssistantMessage:   result.Answer,
		AssistantTimestamp: assistantAt,
		ModelName:          result.Model,
		MissingInfo:        result.MissingInfo,
		RetrievedSources:   sources,
		ContextChars:       len([]rune(contextText)),
		ServerDurationMs:   elapsed.Milliseconds(),
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.log.Error("ChatService", "failed to publish analytics event", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
	}
}

// formatContext renders retrieved chunks as labeled blocks for the prompt.
func formatContext(results []index.Result) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source: %s | %s]\n%s", r.Chunk.Filename, r.Chunk.Type, r.Chunk.Text)
	}
	return b.String()
}

func toLLMHistory(turns []contract.Turn) []llm.Message {
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := t.Role
		if role != constant.ChatRoleUser && role != constant.ChatRoleAssistant {
			continue
		}
		out = append(out, llm.Message{Role: role, Content: t.Text})
	}
	return out
}
