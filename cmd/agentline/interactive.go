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

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"agentline/internal/chat"
)

func runInteractive(session *chat.Session, oracle *chat.Oracle, logger zerolog.Logger) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "❯ ",
		HistoryFile:     session.Config.CommandHistoryFile,
		AutoComplete:    getCommandCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize readline")
	}
	defer rl.Close()

	fmt.Println("Agentline local coding agent")
	fmt.Printf("Connected to: %s\n", session.Config.BaseURL)
	fmt.Printf("Agent model:  %s\n", session.Config.AgentModel)
	fmt.Printf("Oracle model: %s\n", session.Config.OracleModel)
	fmt.Printf("Workspace:    %s\n", session.ToolRegistry.Workspace().Root())
	fmt.Println()

	for {
		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			logger.Debug().Msg("Readline interrupted")
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		logger.Info().Str("user_input", line).Msg("User input received")

		if isExitWord(line) {
			break
		}

		if strings.HasPrefix(line, "/") {
			if handleCommand(line, session, oracle, logger) {
				break
			}
			continue
		}

		handleInstruction(line, session, logger)
	}

	logger.Info().Msg("Session ended")
}

// handleInstruction runs one agent request. Ctrl+C cancels the request
// without leaving the loop.
func handleInstruction(line string, session *chat.Session, logger zerolog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	answer, err := session.Respond(ctx, line)
	if err != nil {
		logger.Error().Err(err).Msg("Request failed")
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(answer)
}

func isExitWord(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "bye":
		return true
	}
	return false
}

// getCommandCompleter builds a readline completer from available commands
func getCommandCompleter() *readline.PrefixCompleter {
	commands := getAvailableCommands()
	items := make([]readline.PrefixCompleterInterface, len(commands))
	for i, cmd := range commands {
		items[i] = readline.PcItem("/" + cmd.Name)
	}
	return readline.NewPrefixCompleter(items...)
}
