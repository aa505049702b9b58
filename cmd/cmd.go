// Package cmd provides CLI commands for the RAGFlow assistant.
//
// Commands:
//   - chat (default): interactive chat with Bubble Tea TUI
//   - datasets: list the knowledge bases on the RAGFlow server
//   - config: show or update connection settings
//
// Signal handling and graceful shutdown are implemented
// for all commands via context cancellation.
package cmd

import (
	"fmt"
	"os"
)

// Execute is the main entry point for the assistant CLI application.
func Execute() error {
	if len(os.Args) < 2 {
		return runChat()
	}

	switch os.Args[1] {
	case "chat":
		return runChat()
	case "datasets":
		return runDatasets()
	case "config":
		return runConfig(os.Args[2:])
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("RAGFlow Assistant - chat with your knowledge bases from the terminal")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ragflow-assistant                   Start interactive chat (default)")
	fmt.Println("  ragflow-assistant datasets          List knowledge bases")
	fmt.Println("  ragflow-assistant config show       Show current configuration")
	fmt.Println("  ragflow-assistant config set-key    Store the RAGFlow API key")
	fmt.Println("  ragflow-assistant config set-url    Store the RAGFlow base URL")
	fmt.Println("  ragflow-assistant --version         Show version information")
	fmt.Println("  ragflow-assistant --help            Show this help")
	fmt.Println()
	fmt.Println("Chat Commands (in interactive mode):")
	fmt.Println("  /help              Show available commands")
	fmt.Println("  /new, /clear       Start a new conversation")
	fmt.Println("  /exit, /quit       Exit")
	fmt.Println()
	fmt.Println("Shortcuts:")
	fmt.Println("  Tab                Switch to the knowledge base pane")
	fmt.Println("  Ctrl+N             Start a new conversation")
	fmt.Println("  Ctrl+D             Exit")
	fmt.Println("  Ctrl+C             Cancel current input (twice to exit)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  RAGFLOW_API_KEY    Required: RAGFlow API key")
	fmt.Println("  RAGFLOW_BASE_URL   Optional: RAGFlow server address (default http://localhost:9380)")
	fmt.Println()
	fmt.Println("Learn more: https://github.com/wang-junjian/RAGFlowAssistant")
}
