package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"agentline/internal/chat"
	"agentline/internal/config"
	"agentline/internal/tools"
	"agentline/internal/workspace"
)

var (
	debugMode = flag.Bool("d", false, "Enable debug mode")
	logFile   = flag.String("log-file", "", "Log file path (logs disabled by default)")
)

func main() {
	flag.Parse()

	logger := initLogger(*debugMode, *logFile)
	logger.Info().Msg("Agentline starting")

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	for _, warning := range cfg.Validate() {
		logger.Warn().Str("field", warning.Field).Msg(warning.Message)
	}

	ws, err := workspace.New(cfg.WorkspaceDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare workspace")
	}

	registry := tools.NewRegistry(ws, cfg.ToolLimitsConfig())
	session := chat.NewSession(cfg, registry, logger)
	oracle := chat.NewOracle(cfg, session.Client)

	// A trailing instruction argument runs one request and exits.
	if args := flag.Args(); len(args) > 0 {
		runOnce(session, strings.Join(args, " "))
		return
	}

	// Piped stdin is treated the same way.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to read stdin")
		}
		instruction := strings.TrimSpace(string(input))
		if instruction == "" {
			logger.Fatal().Msg("Empty instruction on stdin")
		}
		runOnce(session, instruction)
		return
	}

	runInteractive(session, oracle, logger)
}

func runOnce(session *chat.Session, instruction string) {
	answer, err := session.Respond(context.Background(), instruction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(answer)
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	} else {
		output = io.Discard
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
