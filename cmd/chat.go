package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/wang-junjian/RAGFlowAssistant/internal/config"
	"github.com/wang-junjian/RAGFlowAssistant/internal/conversation"
	"github.com/wang-junjian/RAGFlowAssistant/internal/log"
	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
	"github.com/wang-junjian/RAGFlowAssistant/internal/tui"
)

// runChat initializes and starts the interactive chat with Bubble Tea TUI.
func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := checkAPIKey(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Bubble Tea owns the terminal; logs go to a rotated file instead.
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	logger, err := log.NewFileLogger(
		filepath.Join(dir, "logs", "assistant.log"),
		log.Config{Level: log.ParseLevel(cfg.LogLevel)},
	)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	client, err := ragflow.New(cfg.BaseURL, cfg.APIKey, ragflow.Options{
		Timeout: cfg.Timeout(),
		Logger:  logger.With("component", "ragflow"),
	})
	if err != nil {
		return fmt.Errorf("failed to create RAGFlow client: %w", err)
	}

	manager, err := conversation.NewManager(conversation.Config{
		Backend:       client,
		Logger:        logger.With("component", "conversation"),
		ChatPrefix:    cfg.ChatPrefix,
		SessionPrefix: cfg.SessionPrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to create conversation manager: %w", err)
	}

	model, err := tui.New(ctx, manager, logger.With("component", "tui"))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	program := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}

// checkAPIKey verifies that a RAGFlow API key is configured.
// Returns a user-friendly error with setup instructions if not.
func checkAPIKey(cfg *config.Config) error {
	if cfg.APIKey != "" {
		return nil
	}

	fmt.Fprintln(os.Stderr, "Error: RAGFlow API key not configured")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "The assistant needs an API key to talk to your RAGFlow server.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "To set your API key, either:")
	fmt.Fprintln(os.Stderr, "  export RAGFLOW_API_KEY=your-api-key")
	fmt.Fprintln(os.Stderr, "or:")
	fmt.Fprintln(os.Stderr, "  ragflow-assistant config set-key your-api-key")

	return config.ErrMissingAPIKey
}
