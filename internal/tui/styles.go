package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// RAGFlow brand blue used for the banner and headers.
const brandBlue = "#3B82F6"

// RAGFLOW ASCII art (filled block style).
var bannerArt = []string{
	"  ██████╗  █████╗  ██████╗ ███████╗██╗      ██████╗ ██╗    ██╗",
	"  ██╔══██╗██╔══██╗██╔════╝ ██╔════╝██║     ██╔═══██╗██║    ██║",
	"  ██████╔╝███████║██║  ███╗█████╗  ██║     ██║   ██║██║ █╗ ██║",
	"  ██╔══██╗██╔══██║██║   ██║██╔══╝  ██║     ██║   ██║██║███╗██║",
	"  ██║  ██║██║  ██║╚██████╔╝██║     ███████╗╚██████╔╝╚███╔███╔╝",
	"  ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝ ╚═╝     ╚══════╝ ╚═════╝  ╚══╝╚══╝ ",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	Header    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style // White color for tips (more visible)
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style // Horizontal line separator
	StatusBar lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(brandBlue)),
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(brandBlue)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")), // White for visibility
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")), // Gray separator line
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")), // Light gray, no background
	}
}

// RenderBanner returns the ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range bannerArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips contains getting started tips displayed under the banner.
var welcomeTips = []string{
	"Tips for getting started:",
	"  • Pick knowledge bases in the left pane (Tab, then Space)",
	"  • Ask questions naturally - answers cite their sources",
	"  • Use /help to see available commands",
	"  • Press Ctrl+N for a new conversation, Ctrl+D to exit",
}

// RenderWelcomeTips returns styled welcome tips (white for visibility).
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
