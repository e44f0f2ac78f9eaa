// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package chat orchestrates request/response cycles against an
// OpenAI-compatible endpoint, dispatching tool calls through the tool
// registry until the model produces a final text answer.
package chat

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"agentline/internal/config"
	"agentline/internal/tools"
	systemprompt "agentline/system_prompt"
)

// Session binds a chat client to a tool registry and configuration.
// Each Respond call runs on a fresh conversation: requests do not see
// the messages of earlier requests.
type Session struct {
	Client       ChatClient
	Config       *config.Config
	ToolRegistry *tools.Registry
	Logger       zerolog.Logger
}

var defaultSystemPrompt = mustLoadSystemPrompt()

func mustLoadSystemPrompt() string {
	prompt, err := systemprompt.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load system prompt: %v", err))
	}
	return prompt
}

// NewSession creates a session with a default OpenAI client pointed at
// the configured base URL.
func NewSession(cfg *config.Config, registry *tools.Registry, logger zerolog.Logger) *Session {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
		clientConfig.HTTPClient = &http.Client{}
	}

	client := openai.NewClientWithConfig(clientConfig)
	return NewSessionWithClient(cfg, registry, logger, client)
}

// NewSessionWithClient creates a session with a provided client (for testing).
func NewSessionWithClient(cfg *config.Config, registry *tools.Registry, logger zerolog.Logger, client ChatClient) *Session {
	return &Session{
		Client:       client,
		Config:       cfg,
		ToolRegistry: registry,
		Logger:       logger,
	}
}

// Conversation accumulates the messages of a single request.
type Conversation struct {
	Messages []openai.ChatCompletionMessage
}

// NewConversation starts a conversation seeded with the system prompt.
func NewConversation() *Conversation {
	return &Conversation{
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: defaultSystemPrompt,
			},
		},
	}
}

// AddUser appends a user message.
func (c *Conversation) AddUser(content string) {
	c.Messages = append(c.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
}

// AddAssistant appends an assistant message with optional tool calls.
func (c *Conversation) AddAssistant(content string, toolCalls []openai.ToolCall) {
	c.Messages = append(c.Messages, openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddToolResult appends a tool result message for the given call.
func (c *Conversation) AddToolResult(call openai.ToolCall, result *tools.ToolResult) {
	content := result.Result
	if result.Error != nil && content == "" {
		content = fmt.Sprintf("Error: %v", result.Error)
	}

	name := call.Function.Name
	if name == "" {
		name = "unknown_tool"
	}
	c.Messages = append(c.Messages, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    content,
		Name:       name,
		ToolCallID: call.ID,
	})
}

// Respond processes one user instruction, dispatching tool calls until
// the model answers with plain text. The number of tool-calling rounds
// is bounded by Config.MaxToolRounds.
func (s *Session) Respond(ctx context.Context, instruction string) (string, error) {
	conv := NewConversation()
	conv.AddUser(instruction)

	maxRounds := s.Config.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = config.DefaultConfig().MaxToolRounds
	}

	for round := 0; round < maxRounds; round++ {
		req := openai.ChatCompletionRequest{
			Model:      s.Config.AgentModel,
			Messages:   conv.Messages,
			Tools:      s.ToolRegistry.OpenAITools(),
			ToolChoice: "auto",
		}
		if s.Config.Temperature != nil {
			req.Temperature = *s.Config.Temperature
		}
		if s.Config.MaxTokens != nil {
			req.MaxTokens = *s.Config.MaxTokens
		}

		resp, err := s.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", &APIError{Operation: "create_completion", Err: err}
		}
		if len(resp.Choices) == 0 {
			return "", &APIError{Operation: "create_completion", Err: fmt.Errorf("response contained no choices")}
		}

		message := resp.Choices[0].Message
		conv.AddAssistant(message.Content, message.ToolCalls)

		if len(message.ToolCalls) == 0 {
			return message.Content, nil
		}

		for _, call := range message.ToolCalls {
			s.Logger.Debug().
				Str("tool", call.Function.Name).
				Str("call_id", call.ID).
				Msg("dispatching tool call")
			result := s.ToolRegistry.ExecuteToolCall(ctx, call)
			if result.Error != nil {
				s.Logger.Debug().
					Str("tool", result.Function).
					Err(result.Error).
					Msg("tool call failed")
			}
			conv.AddToolResult(call, result)
		}
	}

	return "", &ToolRoundsExceededError{Rounds: maxRounds}
}
