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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"

	"agentline/internal/chat"
)

// Command represents a slash command
type Command struct {
	Name        string
	Description string
}

// getAvailableCommands returns the list of all slash commands
func getAvailableCommands() []Command {
	return []Command{
		{Name: "help", Description: "Show available commands"},
		{Name: "oracle", Description: "Ask the oracle model a reasoning question"},
		{Name: "tools", Description: "List available tools"},
		{Name: "quit", Description: "Exit the application"},
		{Name: "exit", Description: "Exit the application"},
	}
}

// handleCommand processes slash commands, returns true if should quit
func handleCommand(input string, session *chat.Session, oracle *chat.Oracle, logger zerolog.Logger) bool {
	trimmed := strings.TrimPrefix(input, "/")
	name, rest := splitCommand(trimmed)

	logger.Debug().Str("command", name).Msg("Executing command")

	switch name {
	case "help":
		showHelp()
		return false

	case "oracle":
		if rest == "" {
			fmt.Println("Usage: /oracle <question>")
			return false
		}
		consultOracle(rest, oracle, logger)
		return false

	case "tools":
		for _, toolName := range session.ToolRegistry.GetToolNames() {
			fmt.Printf("  %s\n", toolName)
		}
		return false

	case "quit", "exit":
		return true

	default:
		fmt.Printf("Unknown command: /%s (type /help for available commands)\n", name)
		return false
	}
}

func splitCommand(input string) (name, rest string) {
	parts := strings.SplitN(input, " ", 2)
	name = strings.ToLower(strings.TrimSpace(parts[0]))
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}
	return name, rest
}

func consultOracle(question string, oracle *chat.Oracle, logger zerolog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	answer, err := oracle.Consult(ctx, question, "")
	if err != nil {
		logger.Error().Err(err).Msg("Oracle consultation failed")
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(answer)
}

func showHelp() {
	fmt.Println("\nAvailable Commands:")
	seen := make(map[string]bool)
	for _, cmd := range getAvailableCommands() {
		if seen[cmd.Name] {
			continue
		}
		seen[cmd.Name] = true
		fmt.Printf("  /%-12s - %s\n", cmd.Name, cmd.Description)
	}
	fmt.Println("\nType a plain instruction to hand it to the agent,")
	fmt.Println("or quit/exit/bye to leave.")
	fmt.Println()
}
