package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wang-junjian/RAGFlowAssistant/internal/conversation"
)

// helpText is the /help block rendered into the chat pane.
const helpText = `Commands: /help, /clear, /new, /exit
Shortcuts:
  Enter: send message
  Shift+Enter: new line
  Tab: switch to knowledge base pane (Space toggles, r refreshes)
  Ctrl+N: start a new conversation
  Ctrl+C: cancel/clear (twice to exit)
  Ctrl+D: exit
  Up/Down: prompt history
  PgUp/PgDn: scroll`

// View implements tea.Model.
// Uses AltScreen with a sidebar/chat split above the input line.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	// Sidebar + chat viewport side by side
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderSidebar(),
		" ",
		m.viewport.View(),
	)
	_, _ = m.viewBuf.WriteString(body)
	_, _ = m.viewBuf.WriteString("\n")

	// Separator line above input
	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Input prompt - always show and always accept input
	// Users can type while the answer is streaming (better UX)
	_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("> "))
	_, _ = m.viewBuf.WriteString(m.input.View())
	_, _ = m.viewBuf.WriteString("\n")

	// Separator line below input
	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Help bar (keyboard shortcuts)
	_, _ = m.viewBuf.WriteString(m.renderStatusBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// renderSidebar draws the knowledge base pane: checkbox list plus a
// gate status line.
func (m *Model) renderSidebar() string {
	var b strings.Builder

	_, _ = b.WriteString(m.styles.Header.Render("Knowledge Bases"))
	_, _ = b.WriteString("\n\n")

	switch {
	case m.refreshing:
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" Loading...\n")
	case m.connErr != nil:
		_, _ = b.WriteString(m.styles.Error.Render("RAGFlow unreachable"))
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(m.styles.System.Render("press Tab, then r to retry"))
		_, _ = b.WriteString("\n")
	case len(m.datasets) == 0:
		_, _ = b.WriteString(m.styles.System.Render("no knowledge bases"))
		_, _ = b.WriteString("\n")
	default:
		for i, ds := range m.datasets {
			cursor := "  "
			if m.focus == focusSidebar && i == m.cursor {
				cursor = m.styles.Prompt.Render("> ")
			}
			box := "[ ] "
			if m.selected[ds.ID] {
				box = "[x] "
			}
			name := ds.Name
			if maxName := sidebarWidth - 8; len(name) > maxName {
				name = name[:maxName-1] + "…"
			}
			line := cursor + box + name
			if m.selected[ds.ID] {
				line = cursor + m.styles.User.Render(box+name)
			}
			_, _ = b.WriteString(line)
			_, _ = b.WriteString("\n")
		}
	}

	_, _ = b.WriteString("\n")
	if m.manager.Ready() {
		_, _ = b.WriteString(m.styles.System.Render(
			fmt.Sprintf("%d selected", len(m.manager.Selection()))))
	} else {
		_, _ = b.WriteString(m.styles.Error.Render("select at least one"))
	}

	return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
}

// rebuildViewportContent reconstructs the chat pane from the manager's
// history and the in-flight answer snapshot.
func (m *Model) rebuildViewportContent() {
	var b strings.Builder

	// Banner and tips only while the conversation is empty
	turns := m.manager.History()
	if len(turns) == 0 && m.liveText == "" {
		_, _ = b.WriteString(m.styles.RenderBanner())
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(m.styles.RenderWelcomeTips())
		_, _ = b.WriteString("\n")
	}

	if m.showHelp {
		_, _ = b.WriteString(m.styles.System.Render(helpText))
		_, _ = b.WriteString("\n\n")
	}

	if m.connErr != nil {
		_, _ = b.WriteString(m.styles.Error.Render("Error: " + conversation.UserMessage(m.connErr)))
		_, _ = b.WriteString("\n\n")
	}

	for _, turn := range turns {
		switch turn.Role {
		case conversation.RoleUser:
			_, _ = b.WriteString(m.styles.User.Render("You> "))
			_, _ = b.WriteString(turn.Content)
		case conversation.RoleAssistant:
			_, _ = b.WriteString(m.styles.Assistant.Render("RAGFlow> "))
			_, _ = b.WriteString(m.markdown.Render(turn.Content))
			if len(turn.References) > 0 {
				_, _ = b.WriteString("\n")
				_, _ = b.WriteString(m.renderReferences(turn.References))
			}
		}
		_, _ = b.WriteString("\n\n")
	}

	// Current streaming output, rendered raw: markdown formatting of a
	// half-finished snapshot flickers, the final turn gets the real render.
	if m.state == StateStreaming && m.liveText != "" {
		_, _ = b.WriteString(m.styles.Assistant.Render("RAGFlow> "))
		_, _ = b.WriteString(m.liveText)
		_, _ = b.WriteString("\n\n")
	}

	// Thinking indicator
	if m.state == StateThinking {
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" Thinking...\n\n")
	}

	m.viewport.SetContent(b.String())
}

// renderReferences draws the citation block under an assistant turn.
func (m *Model) renderReferences(refs []conversation.Reference) string {
	var b strings.Builder
	_, _ = b.WriteString(m.styles.System.Render("References:"))
	_, _ = b.WriteString("\n")
	for i, ref := range refs {
		line := fmt.Sprintf("  [%d] %s (similarity %.2f)", i+1, ref.DocumentName, ref.Similarity)
		_, _ = b.WriteString(m.styles.System.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80 // Default width
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (m *Model) renderStatusBar() string {
	var bindings []key.Binding
	if m.focus == focusSidebar {
		bindings = []key.Binding{
			m.keys.Toggle, m.keys.Refresh, m.keys.Sidebar, m.keys.Quit,
		}
		return m.help.ShortHelpView(bindings)
	}
	switch m.state {
	case StateInput:
		bindings = []key.Binding{
			m.keys.Submit, m.keys.Sidebar, m.keys.NewConv,
			m.keys.History, m.keys.Cancel, m.keys.Quit,
		}
	case StateThinking, StateStreaming:
		bindings = []key.Binding{
			m.keys.EscCancel, m.keys.Cancel,
			m.keys.ScrollUp, m.keys.ScrollDown,
		}
	}
	return m.help.ShortHelpView(bindings)
}
