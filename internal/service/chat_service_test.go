package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/repository/memory"
	"portfolio-chat-be/pkg/embedding"
	"portfolio-chat-be/pkg/index"
	"portfolio-chat-be/pkg/llm"
	"portfolio-chat-be/pkg/loader"
	"portfolio-chat-be/pkg/rag/response"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fixedEmbedder struct {
	failQueries bool
}

func (f *fixedEmbedder) Generate(text, taskType string) (*embedding.Response, error) {
	if f.failQueries && taskType == embedding.TaskRetrievalQuery {
		return nil, fmt.Errorf("embedding backend down")
	}
	return &embedding.Response{Embedding: embedding.ResponseEmbedding{Values: []float32{1, 0}}}, nil
}

type fixedCompleter struct {
	content  string
	lastReq  llm.CompletionRequest
	numCalls int
}

func (f *fixedCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.lastReq = req
	f.numCalls++
	return f.content, nil
}

type capturingPublisher struct {
	events []dto.RecordChatMessage
}

func (c *capturingPublisher) Publish(_ context.Context, payload dto.RecordChatMessage) error {
	c.events = append(c.events, payload)
	return nil
}

func newTestChatService(t *testing.T, embedder *fixedEmbedder, completer llm.Completer) (IChatService, *capturingPublisher) {
	t.Helper()

	ix := index.New(embedder)
	if _, err := ix.Build([]loader.Chunk{
		{Text: "I work at Fynd.", Filename: "resume.pdf", Type: constant.DocTypeResume},
	}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	sessions := memory.NewSessionStore()
	gen := response.NewGenerator(completer, "m/one", nil, sessions, nopLogger{})
	pub := &capturingPublisher{}
	return NewChatService(sessions, ix, gen, pub, nopLogger{}), pub
}

func TestChatNotReady(t *testing.T) {
	ix := index.New(&fixedEmbedder{})
	sessions := memory.NewSessionStore()
	gen := response.NewGenerator(&fixedCompleter{}, "m/one", nil, sessions, nopLogger{})
	svc := NewChatService(sessions, ix, gen, &capturingPublisher{}, nopLogger{})

	_, err := svc.Chat(context.Background(), dto.ChatRequest{Message: "hi", SessionId: "s1"}, ClientInfo{})
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
}

func TestChatAnswersOnEmptyIndex(t *testing.T) {
	ix := index.New(&fixedEmbedder{})
	if _, err := ix.Build(nil); err != nil {
		t.Fatalf("Build: %v", err)
	}

	sessions := memory.NewSessionStore()
	completer := &fixedCompleter{content: `{"answer":"Ask me about my work."}`}
	gen := response.NewGenerator(completer, "m/one", nil, sessions, nopLogger{})
	svc := NewChatService(sessions, ix, gen, &capturingPublisher{}, nopLogger{})

	// A built-but-empty index answers with empty context; only an index that
	// was never built is unavailable.
	res, err := svc.Chat(context.Background(), dto.ChatRequest{Message: "hi", SessionId: "s1"}, ClientInfo{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Response == "" {
		t.Error("empty response from chat over empty index")
	}
}

func TestChatHappyPath(t *testing.T) {
	completer := &fixedCompleter{content: `{"answer":"I work at Fynd."}`}
	svc, pub := newTestChatService(t, &fixedEmbedder{}, completer)

	res, err := svc.Chat(context.Background(), dto.ChatRequest{Message: "Where do you work?", SessionId: "s1"}, ClientInfo{Ip: "1.2.3.4"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Response != "I work at Fynd." {
		t.Errorf("Response = %q", res.Response)
	}
	if res.SessionId != "s1" {
		t.Errorf("SessionId = %q", res.SessionId)
	}

	// Retrieved context must reach the prompt.
	found := false
	for _, m := range completer.lastReq.Messages {
		if m.Role == constant.ChatRoleSystem && len(m.Content) > 0 {
			found = true
		}
	}
	if !found {
		t.Error("no system message in completion request")
	}

	// Both turns recorded in history.
	hist, err := svc.History(context.Background(), "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist.Messages) != 2 {
		t.Fatalf("messages = %d, want user + assistant", len(hist.Messages))
	}
	if hist.Messages[0].Role != constant.ChatRoleUser || hist.Messages[1].Role != constant.ChatRoleAssistant {
		t.Errorf("roles = %q, %q", hist.Messages[0].Role, hist.Messages[1].Role)
	}
	if hist.Messages[0].Content != "Where do you work?" {
		t.Errorf("Content = %q", hist.Messages[0].Content)
	}

	// Analytics event published with retrieval metadata.
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
	evt := pub.events[0]
	if evt.SessionId != "s1" || evt.ClientIp != "1.2.3.4" {
		t.Errorf("event = %+v", evt)
	}
	if len(evt.RetrievedSources) != 1 || evt.RetrievedSources[0] != "resume.pdf" {
		t.Errorf("RetrievedSources = %v", evt.RetrievedSources)
	}
	if evt.ModelName != "m/one" {
		t.Errorf("ModelName = %q", evt.ModelName)
	}
}

func TestChatDegradesOnRetrievalFailure(t *testing.T) {
	completer := &fixedCompleter{content: `{"answer":"Answer without context."}`}
	svc, pub := newTestChatService(t, &fixedEmbedder{failQueries: true}, completer)

	res, err := svc.Chat(context.Background(), dto.ChatRequest{Message: "hi", SessionId: "s1"}, ClientInfo{})
	if err != nil {
		t.Fatalf("Chat: %v, retrieval failure must degrade not fail", err)
	}
	if res.Response != "Answer without context." {
		t.Errorf("Response = %q", res.Response)
	}
	if pub.events[0].ContextChars != 0 {
		t.Errorf("ContextChars = %d, want 0 on empty context", pub.events[0].ContextChars)
	}
}

func TestChatHistoryFeedsFollowups(t *testing.T) {
	completer := &fixedCompleter{content: `{"answer":"Reply."}`}
	svc, _ := newTestChatService(t, &fixedEmbedder{}, completer)
	ctx := context.Background()

	if _, err := svc.Chat(ctx, dto.ChatRequest{Message: "first", SessionId: "s1"}, ClientInfo{}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := svc.Chat(ctx, dto.ChatRequest{Message: "second", SessionId: "s1"}, ClientInfo{}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	// The second completion must carry the first exchange as history.
	var sawFirst bool
	for _, m := range completer.lastReq.Messages {
		if m.Content == "first" && m.Role == constant.ChatRoleUser {
			sawFirst = true
		}
	}
	if !sawFirst {
		t.Error("prior user turn missing from completion messages")
	}
}
