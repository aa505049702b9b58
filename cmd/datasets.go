package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/wang-junjian/RAGFlowAssistant/internal/config"
	"github.com/wang-junjian/RAGFlowAssistant/internal/log"
	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
)

// runDatasets lists the knowledge bases available on the RAGFlow server.
func runDatasets() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := checkAPIKey(cfg); err != nil {
		return err
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel)})
	client, err := ragflow.New(cfg.BaseURL, cfg.APIKey, ragflow.Options{
		Timeout: cfg.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create RAGFlow client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	datasets, err := client.ListDatasets(ctx)
	if err != nil {
		if errors.Is(err, ragflow.ErrUnreachable) {
			return fmt.Errorf("cannot reach RAGFlow at %s: %w", cfg.BaseURL, err)
		}
		return fmt.Errorf("listing knowledge bases: %w", err)
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	if len(datasets) == 0 {
		fmt.Println("No knowledge bases found.")
		_, _ = dim.Println("Create one in the RAGFlow web console, then re-run this command.")
		return nil
	}

	_, _ = bold.Printf("Knowledge bases on %s:\n\n", cfg.BaseURL)
	for _, ds := range datasets {
		_, _ = color.New(color.FgGreen).Printf("  %s", ds.Name)
		_, _ = dim.Printf("  (%s)\n", ds.ID)
	}
	fmt.Printf("\n%d total\n", len(datasets))
	return nil
}
