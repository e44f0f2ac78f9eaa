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

// Package tools declares the fixed capability set advertised to the
// model and dispatches tool calls into sandboxed execution. Every
// dispatch produces a result string: failures are encoded as text for
// the model to read, never raised across the dispatch boundary.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"agentline/internal/workspace"
)

// ExecutorFunc is the function signature for tool implementations.
type ExecutorFunc func(ctx context.Context, args map[string]interface{}) (string, error)

// Tool represents a callable tool/function with its implementation.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
	Validate    ValidationRule
	Execute     ExecutorFunc
}

// ToolResult represents the result of a tool execution. Result is
// always populated, including on failure.
type ToolResult struct {
	Function string
	CallID   string
	Result   string
	Error    error
}

// Registry holds the fixed set of tools bound to one workspace.
// Read-only after construction; safe for concurrent dispatch.
type Registry struct {
	ws     *workspace.Workspace
	limits Limits
	runner Runner
	tools  map[string]*Tool
	order  []string
}

// NewRegistry creates a registry with all built-in tools bound to the
// given workspace.
func NewRegistry(ws *workspace.Workspace, limits Limits) *Registry {
	r := &Registry{
		ws:     ws,
		limits: normalizeLimits(limits),
		tools:  make(map[string]*Tool),
	}
	r.runner = NewRunner(r.limits.CommandTimeout)
	registerBuiltInTools(r)
	return r
}

// RegisterTool adds a tool to the registry. Names are unique.
func (r *Registry) RegisterTool(tool *Tool) error {
	if tool == nil || tool.Name == "" {
		return fmt.Errorf("tool must have a name")
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// Workspace returns the workspace this registry operates on.
func (r *Registry) Workspace() *workspace.Workspace {
	return r.ws
}

// GetToolNames returns tool names in registration order.
func (r *Registry) GetToolNames() []string {
	return append([]string{}, r.order...)
}

// OpenAITools returns the registry as OpenAI tool definitions.
func (r *Registry) OpenAITools() []openai.Tool {
	defs := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return defs
}

// Execute runs the named tool with the given arguments. The returned
// result always carries a human-readable string, valid call or not.
func (r *Registry) Execute(ctx context.Context, function string, args map[string]interface{}) *ToolResult {
	result := &ToolResult{Function: function}

	tool, exists := r.tools[function]
	if !exists {
		result.Error = fmt.Errorf("%w: %s", ErrToolNotFound, function)
		result.Result = fmt.Sprintf("Unknown tool: %s. Available tools: %v", function, r.GetToolNames())
		return result
	}

	if tool.Validate != nil {
		if err := tool.Validate(args); err != nil {
			result.Error = fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			result.Result = fmt.Sprintf("Invalid arguments for %s: %v", function, err)
			return result
		}
	}

	output, err := tool.Execute(ctx, args)
	if err != nil {
		result.Error = NewToolExecutionError(function, err)
		result.Result = fmt.Sprintf("Error: %v", err)
		return result
	}
	result.Result = output
	return result
}

// ExecuteToolCall executes an OpenAI tool call payload, decoding the
// JSON argument string emitted by the model.
func (r *Registry) ExecuteToolCall(ctx context.Context, call openai.ToolCall) *ToolResult {
	name := call.Function.Name
	if name == "" {
		return &ToolResult{
			Function: "unknown_tool",
			CallID:   call.ID,
			Error:    fmt.Errorf("tool call missing function name"),
			Result:   "Invalid tool call: missing function name",
		}
	}

	args := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return &ToolResult{
				Function: name,
				CallID:   call.ID,
				Error:    fmt.Errorf("%w: %v", ErrInvalidArguments, err),
				Result:   fmt.Sprintf("Invalid arguments for %s: malformed JSON: %v", name, err),
			}
		}
	}

	result := r.Execute(ctx, name, args)
	result.CallID = call.ID
	return result
}

func ensureContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
