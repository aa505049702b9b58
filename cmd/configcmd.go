package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/wang-junjian/RAGFlowAssistant/internal/config"
)

// runConfig dispatches the config subcommands: show, set-key, set-url.
func runConfig(args []string) error {
	if len(args) == 0 {
		return showConfig()
	}

	switch args[0] {
	case "show":
		return showConfig()
	case "set-key":
		if len(args) < 2 {
			return fmt.Errorf("usage: ragflow-assistant config set-key <api-key>")
		}
		return setKey(args[1])
	case "set-url":
		if len(args) < 2 {
			return fmt.Errorf("usage: ragflow-assistant config set-url <base-url>")
		}
		return setURL(args[1])
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

// showConfig prints the current configuration with the API key masked.
func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// MarshalIndent goes through Config.MarshalJSON, which masks the key.
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering configuration: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// setKey stores the RAGFlow API key in the config file.
func setKey(key string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.APIKey = key
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println("API key saved.")
	return nil
}

// setURL stores the RAGFlow base URL in the config file.
func setURL(rawURL string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.BaseURL = rawURL
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Base URL saved: %s\n", rawURL)
	return nil
}
