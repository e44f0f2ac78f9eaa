package chat

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

// Scripted model: each call pops the next canned response. Exercises
// the full dispatch loop against a real registry on disk.
func scriptedClient(responses ...openai.ChatCompletionResponse) *MockChatClient {
	index := 0
	return &MockChatClient{
		CreateCompletionFunc: func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			resp := responses[index]
			if index < len(responses)-1 {
				index++
			}
			return resp, nil
		},
	}
}

func TestRespondExecutesWriteThenRead(t *testing.T) {
	mock := scriptedClient(
		toolCallResponse(openai.ToolCall{
			ID:   "call-1",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      "write_file",
				Arguments: `{"path": "hello.txt", "content": "greetings"}`,
			},
		}),
		toolCallResponse(openai.ToolCall{
			ID:   "call-2",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      "read_file",
				Arguments: `{"path": "hello.txt"}`,
			},
		}),
		textResponse("the file says greetings"),
	)
	session := newTestSession(t, mock)

	answer, err := session.Respond(context.Background(), "write then read hello.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "the file says greetings" {
		t.Fatalf("unexpected answer: %q", answer)
	}

	// The file must actually exist in the workspace.
	root := session.ToolRegistry.Workspace().Root()
	data, err := os.ReadFile(filepath.Join(root, "hello.txt"))
	if err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if string(data) != "greetings" {
		t.Fatalf("unexpected file content: %q", data)
	}

	// Third request must carry both tool results back to the model.
	final := mock.CompletionCalls[2]
	var toolMessages []openai.ChatCompletionMessage
	for _, msg := range final.Messages {
		if msg.Role == openai.ChatMessageRoleTool {
			toolMessages = append(toolMessages, msg)
		}
	}
	if len(toolMessages) != 2 {
		t.Fatalf("expected 2 tool messages, got %d", len(toolMessages))
	}
	if toolMessages[0].ToolCallID != "call-1" || toolMessages[1].ToolCallID != "call-2" {
		t.Fatalf("tool results out of order: %+v", toolMessages)
	}
	if toolMessages[1].Content != "greetings" {
		t.Fatalf("read result not passed through: %q", toolMessages[1].Content)
	}
}

func TestRespondMultipleCallsInOneRound(t *testing.T) {
	mock := scriptedClient(
		toolCallResponse(
			openai.ToolCall{
				ID:   "call-a",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "write_file",
					Arguments: `{"path": "a.txt", "content": "A"}`,
				},
			},
			openai.ToolCall{
				ID:   "call-b",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "list_directory",
					Arguments: `{}`,
				},
			},
		),
		textResponse("ok"),
	)
	session := newTestSession(t, mock)

	if _, err := session.Respond(context.Background(), "batch"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both calls dispatched in order within the same round: the
	// listing already sees the file written by the first call.
	followUp := mock.CompletionCalls[1]
	var toolMessages []openai.ChatCompletionMessage
	for _, msg := range followUp.Messages {
		if msg.Role == openai.ChatMessageRoleTool {
			toolMessages = append(toolMessages, msg)
		}
	}
	if len(toolMessages) != 2 {
		t.Fatalf("expected 2 tool messages, got %d", len(toolMessages))
	}
	if !strings.Contains(toolMessages[1].Content, "a.txt") {
		t.Fatalf("listing should include the freshly written file: %q", toolMessages[1].Content)
	}
}

func TestRespondSurfacesToolFailureToModel(t *testing.T) {
	mock := scriptedClient(
		toolCallResponse(openai.ToolCall{
			ID:   "call-1",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      "read_file",
				Arguments: `{"path": "missing.txt"}`,
			},
		}),
		textResponse("the file is missing"),
	)
	session := newTestSession(t, mock)

	answer, err := session.Respond(context.Background(), "read missing.txt")
	if err != nil {
		t.Fatalf("tool failure must not abort the request: %v", err)
	}
	if answer != "the file is missing" {
		t.Fatalf("unexpected answer: %q", answer)
	}

	followUp := mock.CompletionCalls[1]
	last := followUp.Messages[len(followUp.Messages)-1]
	if last.Role != openai.ChatMessageRoleTool {
		t.Fatalf("expected tool message, got %s", last.Role)
	}
	if !strings.HasPrefix(last.Content, "Error:") {
		t.Fatalf("expected failure text in tool result, got %q", last.Content)
	}
}

func TestRespondUnknownToolCall(t *testing.T) {
	mock := scriptedClient(
		toolCallResponse(openai.ToolCall{
			ID:   "call-1",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      "delete_everything",
				Arguments: `{}`,
			},
		}),
		textResponse("that tool does not exist"),
	)
	session := newTestSession(t, mock)

	if _, err := session.Respond(context.Background(), "try it"); err != nil {
		t.Fatalf("unknown tool must not abort the request: %v", err)
	}

	followUp := mock.CompletionCalls[1]
	last := followUp.Messages[len(followUp.Messages)-1]
	if !strings.Contains(last.Content, "Unknown tool") {
		t.Fatalf("expected unknown-tool text, got %q", last.Content)
	}
}
