package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// Slash command constants.
const (
	cmdHelp  = "/help"
	cmdClear = "/clear"
	cmdNew   = "/new"
	cmdExit  = "/exit"
	cmdQuit  = "/quit"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	History    key.Binding
	Sidebar    key.Binding
	Toggle     key.Binding
	Refresh    key.Binding
	NewConv    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	EscCancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Sidebar:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "knowledge bases")),
		Toggle:     key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "toggle")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		NewConv:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		EscCancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	// Check for Ctrl modifier
	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return m.handleCtrlC()
		case 'd':
			cmd := m.cleanup()
			return m, cmd
		case 'n':
			return m.handleNewConversation()
		}
	}

	// Check special keys
	switch k.Code {
	case tea.KeyTab:
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
			m.rebuildViewportContent()
			return m, nil
		}
		m.focus = focusInput
		m.rebuildViewportContent()
		return m, m.input.Focus()

	case tea.KeyEnter:
		if m.focus == focusSidebar {
			return m.toggleDataset()
		}
		if m.state == StateInput {
			// Enter without Shift = submit
			// Shift+Enter = newline (pass through to textarea)
			if k.Mod&tea.ModShift == 0 {
				return m.handleSubmit()
			}
		}

	case tea.KeyUp:
		if m.focus == focusSidebar {
			return m.moveCursor(-1)
		}
		// Up at first line navigates history, otherwise pass to textarea
		if m.state == StateInput && m.input.Line() == 0 {
			return m.navigateHistory(-1)
		}

	case tea.KeyDown:
		if m.focus == focusSidebar {
			return m.moveCursor(1)
		}
		// Down at last line navigates history, otherwise pass to textarea
		if m.state == StateInput && m.input.Line() == m.input.LineCount()-1 {
			return m.navigateHistory(1)
		}

	case tea.KeySpace:
		if m.focus == focusSidebar {
			return m.toggleDataset()
		}

	case tea.KeyEscape:
		if m.state == StateStreaming || m.state == StateThinking {
			m.cancelStream()
			return m, nil
		}
		if m.focus == focusSidebar {
			m.focus = focusInput
			m.rebuildViewportContent()
			return m, m.input.Focus()
		}

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	// Sidebar-only plain keys
	if m.focus == focusSidebar && k.Code == 'r' {
		m.refreshing = true
		m.rebuildViewportContent()
		return m, tea.Batch(m.spinner.Tick, m.refreshDatasets())
	}

	if m.focus == focusSidebar {
		return m, nil
	}

	// Pass keys to textarea for typing - ALWAYS allow typing even during
	// streaming so users can prepare the next question
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second = quit
	if now.Sub(m.lastCtrlC) < time.Second {
		cmd := m.cleanup()
		return m, cmd
	}
	m.lastCtrlC = now

	switch m.state {
	case StateInput:
		m.input.Reset()
		return m, nil

	case StateThinking, StateStreaming:
		m.cancelStream()
		return m, nil
	}

	return m, nil
}

// handleNewConversation resets the conversation. The selection survives
// intact; an in-flight answer, if any, is superseded and discarded.
func (m *Model) handleNewConversation() (tea.Model, tea.Cmd) {
	m.manager.StartNewConversation()
	m.liveText = ""
	m.state = StateInput
	m.rebuildViewportContent()
	m.viewport.GotoTop()
	return m, m.input.Focus()
}

func (m *Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if len(m.datasets) == 0 {
		return m, nil
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.datasets) {
		m.cursor = len(m.datasets) - 1
	}
	m.rebuildViewportContent()
	return m, nil
}

func (m *Model) toggleDataset() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.datasets) {
		return m, nil
	}
	id := m.datasets[m.cursor].ID
	m.selected[id] = !m.selected[id]
	if !m.selected[id] {
		delete(m.selected, id)
	}
	m.applySelection()
	m.rebuildViewportContent()
	return m, nil
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" {
		return m, nil
	}

	// Handle slash commands
	if strings.HasPrefix(prompt, "/") {
		return m.handleSlashCommand(prompt)
	}

	// Add to history (enforce maxHistory cap)
	m.history = append(m.history, prompt)
	if len(m.history) > maxHistory {
		// Remove oldest entries to stay within bounds
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.historyIdx = len(m.history)

	// Clear input
	m.input.Reset()

	// Start thinking; the user turn shows up via the manager's history.
	m.state = StateThinking

	return m, tea.Batch(
		m.spinner.Tick,
		m.startStream(prompt),
	)
}

func (m *Model) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case cmdHelp:
		m.showHelp = !m.showHelp
		m.rebuildViewportContent()
	case cmdClear, cmdNew:
		m.input.Reset()
		return m.handleNewConversation()
	case cmdExit, cmdQuit:
		cleanupCmd := m.cleanup()
		return m, cleanupCmd
	}
	m.input.Reset()
	m.rebuildViewportContent()
	return m, nil
}

func (m *Model) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}

	m.historyIdx += delta

	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
	if m.historyIdx > len(m.history) {
		m.historyIdx = len(m.history)
	}

	if m.historyIdx == len(m.history) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.history[m.historyIdx])
		// Move cursor to end of text
		m.input.CursorEnd()
	}

	return m, nil
}

// cancelStream cancels the per-stream context. The manager's goroutine
// observes it, appends the annotated partial turn, and still delivers
// its Done event, so the event loop unwinds normally.
func (m *Model) cancelStream() {
	if m.streamCancel != nil {
		m.streamCancel()
		m.streamCancel = nil
	}
}

// cleanup cancels any active stream and returns the quit command.
func (m *Model) cleanup() tea.Cmd {
	// Cancel main context first - this triggers all goroutines using m.ctx
	if m.ctxCancel != nil {
		m.ctxCancel()
		m.ctxCancel = nil
	}

	// Then cancel stream-specific context (may already be canceled via parent)
	m.cancelStream()
	m.progressCh = nil

	return tea.Quit
}
