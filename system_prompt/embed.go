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

// Package systemprompt embeds the agent's system prompt so the binary
// works without any files on disk.
package systemprompt

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed agent.txt
var promptFiles embed.FS

// Load returns the embedded agent system prompt.
func Load() (string, error) {
	data, err := promptFiles.ReadFile("agent.txt")
	if err != nil {
		return "", fmt.Errorf("failed to read embedded system prompt: %w", err)
	}
	prompt := string(data)
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("embedded system prompt is empty")
	}
	if !strings.HasSuffix(prompt, "\n") {
		prompt += "\n"
	}
	return prompt, nil
}
