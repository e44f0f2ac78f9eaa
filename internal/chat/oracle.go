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

package chat

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"agentline/internal/config"
)

const oracleSystemPrompt = "You are an expert code reviewer and reasoning assistant. Provide thoughtful analysis and suggestions."

// Oracle answers one-shot reasoning questions against a secondary
// model. No tools, no memory between calls.
type Oracle struct {
	Client ChatClient
	Config *config.Config
}

// NewOracle creates an oracle sharing the session's client.
func NewOracle(cfg *config.Config, client ChatClient) *Oracle {
	return &Oracle{Client: client, Config: cfg}
}

// Consult sends a prompt to the oracle model. An optional context
// string is prepended to the prompt, separated by a blank line.
func (o *Oracle) Consult(ctx context.Context, prompt, contextText string) (string, error) {
	fullPrompt := prompt
	if contextText != "" {
		fullPrompt = fmt.Sprintf("%s\n\n%s", contextText, prompt)
	}

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.Config.OracleModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: oracleSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fullPrompt},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", &OracleError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &OracleError{Err: fmt.Errorf("response contained no choices")}
	}

	return resp.Choices[0].Message.Content, nil
}
