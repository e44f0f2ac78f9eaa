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

// Package config resolves agent settings from the environment. Every
// knob has a default suitable for a local Ollama endpoint, so the
// binary runs with zero configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"agentline/internal/tools"
)

// Config represents the application configuration.
type Config struct {
	APIKey             string     `json:"api_key"`
	BaseURL            string     `json:"base_url,omitempty"`
	AgentModel         string     `json:"agent_model"`
	OracleModel        string     `json:"oracle_model"`
	WorkspaceDir       string     `json:"workspace_dir"`
	Temperature        *float32   `json:"temperature,omitempty"`
	MaxTokens          *int       `json:"max_tokens,omitempty"`
	MaxToolRounds      int        `json:"max_tool_rounds,omitempty"`
	ToolLimits         ToolLimits `json:"tool_limits,omitempty"`
	CommandHistoryFile string     `json:"command_history_file,omitempty"`
}

// ToolLimits configures resource limits for tool execution.
type ToolLimits struct {
	MaxFileSizeBytes      int64 `json:"max_file_size_bytes,omitempty"`
	MaxSearchMatches      int   `json:"max_search_matches,omitempty"`
	CommandTimeoutSeconds int   `json:"command_timeout_seconds,omitempty"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	defaultTemperature := float32(0.3)
	defaultMaxTokens := 2000
	return &Config{
		APIKey:        "ollama",
		BaseURL:       "http://localhost:11434/v1",
		AgentModel:    "llama3.1:8b",
		OracleModel:   "deepseek-r1:7b",
		WorkspaceDir:  "./ws",
		Temperature:   &defaultTemperature,
		MaxTokens:     &defaultMaxTokens,
		MaxToolRounds: 16,
		ToolLimits: ToolLimits{
			MaxFileSizeBytes:      tools.DefaultLimits().MaxFileSizeBytes,
			MaxSearchMatches:      tools.DefaultLimits().MaxSearchMatches,
			CommandTimeoutSeconds: int(tools.DefaultLimits().CommandTimeout.Seconds()),
		},
		CommandHistoryFile: ".agentline_history",
	}
}

// FromEnv builds a config from environment variables on top of the
// defaults. Unset variables keep their default; set-but-invalid
// numeric values are an error rather than a silent fallback.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		cfg.APIKey = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		cfg.BaseURL = val
	}
	if val := os.Getenv("AGENT_MODEL"); val != "" {
		cfg.AgentModel = val
	}
	if val := os.Getenv("ORACLE_MODEL"); val != "" {
		cfg.OracleModel = val
	}
	if val := os.Getenv("WORKSPACE"); val != "" {
		cfg.WorkspaceDir = val
	}
	if val := os.Getenv("AGENT_MAX_TOOL_ROUNDS"); val != "" {
		rounds, err := strconv.Atoi(val)
		if err != nil || rounds <= 0 {
			return nil, fmt.Errorf("AGENT_MAX_TOOL_ROUNDS must be a positive integer, got %q", val)
		}
		cfg.MaxToolRounds = rounds
	}

	return cfg, nil
}

// ToolLimitsConfig returns tool limits for runtime enforcement.
func (c *Config) ToolLimitsConfig() tools.Limits {
	return tools.Limits{
		MaxFileSizeBytes: c.ToolLimits.MaxFileSizeBytes,
		MaxSearchMatches: c.ToolLimits.MaxSearchMatches,
		CommandTimeout:   time.Duration(c.ToolLimits.CommandTimeoutSeconds) * time.Second,
	}
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
}

// Validate checks the configuration for common issues and returns warnings.
func (c *Config) Validate() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Temperature != nil {
		temp := *c.Temperature
		if temp < 0 || temp > 2 {
			warnings = append(warnings, ValidationWarning{
				Field:   "temperature",
				Message: fmt.Sprintf("temperature %.2f is outside recommended range [0, 2]", temp),
			})
		}
	}

	if c.MaxTokens != nil {
		tokens := *c.MaxTokens
		if tokens <= 0 {
			warnings = append(warnings, ValidationWarning{
				Field:   "max_tokens",
				Message: fmt.Sprintf("max_tokens %d must be positive", tokens),
			})
		}
	}

	if c.MaxToolRounds <= 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "max_tool_rounds",
			Message: fmt.Sprintf("max_tool_rounds %d should be positive, using default", c.MaxToolRounds),
		})
	}

	return warnings
}
