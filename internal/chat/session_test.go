package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"agentline/internal/config"
	"agentline/internal/tools"
	"agentline/internal/workspace"
)

func newTestSession(t *testing.T, client ChatClient) *Session {
	t.Helper()
	ws, err := workspace.New(filepath.Join(t.TempDir(), "ws"))
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	cfg := config.DefaultConfig()
	registry := tools.NewRegistry(ws, cfg.ToolLimitsConfig())
	return NewSessionWithClient(cfg, registry, zerolog.Nop(), client)
}

func TestRespondReturnsPlainAnswer(t *testing.T) {
	mock := &MockChatClient{
		CreateCompletionFunc: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return textResponse("done"), nil
		},
	}
	session := newTestSession(t, mock)

	answer, err := session.Respond(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "done" {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if len(mock.CompletionCalls) != 1 {
		t.Fatalf("expected 1 API call, got %d", len(mock.CompletionCalls))
	}
}

func TestRespondRequestShape(t *testing.T) {
	mock := &MockChatClient{}
	session := newTestSession(t, mock)

	if _, err := session.Respond(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := mock.CompletionCalls[0]
	if req.Model != session.Config.AgentModel {
		t.Fatalf("unexpected model: %s", req.Model)
	}
	if len(req.Tools) != 5 {
		t.Fatalf("expected 5 advertised tools, got %d", len(req.Tools))
	}
	if req.ToolChoice != "auto" {
		t.Fatalf("unexpected tool choice: %v", req.ToolChoice)
	}
	if req.Temperature != 0.3 {
		t.Fatalf("unexpected temperature: %v", req.Temperature)
	}
	if req.MaxTokens != 2000 {
		t.Fatalf("unexpected max tokens: %d", req.MaxTokens)
	}

	if len(req.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("first message should be system, got %s", req.Messages[0].Role)
	}
	if req.Messages[1].Role != openai.ChatMessageRoleUser || req.Messages[1].Content != "hi" {
		t.Fatalf("unexpected user message: %+v", req.Messages[1])
	}
}

func TestRespondIsolatesRequests(t *testing.T) {
	mock := &MockChatClient{}
	session := newTestSession(t, mock)

	if _, err := session.Respond(context.Background(), "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := session.Respond(context.Background(), "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The second request must not carry the first conversation.
	second := mock.CompletionCalls[1]
	if len(second.Messages) != 2 {
		t.Fatalf("expected fresh conversation, got %d messages", len(second.Messages))
	}
	for _, msg := range second.Messages {
		if strings.Contains(msg.Content, "first") {
			t.Fatalf("leaked earlier request into conversation: %+v", msg)
		}
	}
}

func TestRespondWrapsAPIError(t *testing.T) {
	sentinel := errors.New("connection refused")
	mock := &MockChatClient{
		CreateCompletionFunc: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return openai.ChatCompletionResponse{}, sentinel
		},
	}
	session := newTestSession(t, mock)

	_, err := session.Respond(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if !errors.Is(err, sentinel) {
		t.Fatal("expected wrapped cause to survive")
	}
}

func TestRespondEmptyChoices(t *testing.T) {
	mock := &MockChatClient{
		CreateCompletionFunc: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			return openai.ChatCompletionResponse{}, nil
		},
	}
	session := newTestSession(t, mock)

	_, err := session.Respond(context.Background(), "hi")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError for empty choices, got %v", err)
	}
}

func TestRespondBoundsToolRounds(t *testing.T) {
	// A model that always asks for another tool call must be cut off.
	calls := 0
	mock := &MockChatClient{
		CreateCompletionFunc: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			calls++
			return toolCallResponse(openai.ToolCall{
				ID:   fmt.Sprintf("call-%d", calls),
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "list_directory",
					Arguments: `{}`,
				},
			}), nil
		},
	}
	session := newTestSession(t, mock)
	session.Config.MaxToolRounds = 3

	_, err := session.Respond(context.Background(), "loop forever")
	var roundsErr *ToolRoundsExceededError
	if !errors.As(err, &roundsErr) {
		t.Fatalf("expected ToolRoundsExceededError, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 API calls, got %d", calls)
	}
}

func TestConversationToolResultMessage(t *testing.T) {
	conv := NewConversation()
	call := openai.ToolCall{
		ID:   "call-9",
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      "read_file",
			Arguments: `{"path": "x"}`,
		},
	}
	conv.AddToolResult(call, &tools.ToolResult{
		Function: "read_file",
		CallID:   "call-9",
		Result:   "file contents",
	})

	msg := conv.Messages[len(conv.Messages)-1]
	if msg.Role != openai.ChatMessageRoleTool {
		t.Fatalf("unexpected role: %s", msg.Role)
	}
	if msg.ToolCallID != "call-9" {
		t.Fatalf("unexpected tool call id: %s", msg.ToolCallID)
	}
	if msg.Name != "read_file" {
		t.Fatalf("unexpected name: %s", msg.Name)
	}
	if msg.Content != "file contents" {
		t.Fatalf("unexpected content: %q", msg.Content)
	}
}

func TestConversationToolResultNameFallback(t *testing.T) {
	conv := NewConversation()
	call := openai.ToolCall{ID: "call-0", Type: openai.ToolTypeFunction}
	conv.AddToolResult(call, &tools.ToolResult{
		Function: "unknown_tool",
		CallID:   "call-0",
		Result:   "Invalid tool call: missing function name",
		Error:    errors.New("tool call missing function name"),
	})

	msg := conv.Messages[len(conv.Messages)-1]
	if msg.Name != "unknown_tool" {
		t.Fatalf("expected name fallback, got %q", msg.Name)
	}
	if msg.Content == "" {
		t.Fatal("tool result content must not be empty")
	}
}
