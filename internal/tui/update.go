package tui

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/wang-junjian/RAGFlowAssistant/internal/conversation"
)

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires type switch on all message types
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate viewport height: total - input - separators - help
		inputHeight := m.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		chatWidth := max(msg.Width-sidebarWidth-1, 20)
		m.viewport.SetWidth(chatWidth)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		m.help.SetWidth(msg.Width)
		m.markdown.UpdateWidth(chatWidth)

		// Rebuild viewport content with new dimensions
		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		// Forward mouse wheel to viewport for scrolling
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// Rebuild viewport to update spinner animation
		if m.state == StateThinking || m.refreshing {
			m.rebuildViewportContent()
		}
		return m, cmd

	case datasetsMsg:
		m.refreshing = false
		m.connErr = msg.err
		if msg.err != nil {
			m.logger.Warn("knowledge base refresh failed", "error", msg.err)
		}
		if msg.err == nil {
			m.datasets = msg.datasets
			// Drop selections for knowledge bases that disappeared.
			present := make(map[string]bool, len(msg.datasets))
			for _, ds := range msg.datasets {
				present[ds.ID] = true
			}
			for id := range m.selected {
				if !present[id] {
					delete(m.selected, id)
				}
			}
		} else {
			// Unreachable backend: the manager already closed the gate
			// and cleared its selection; mirror that in the sidebar.
			m.selected = make(map[string]bool)
		}
		m.applySelection()
		if m.cursor >= len(m.datasets) {
			m.cursor = max(len(m.datasets)-1, 0)
		}
		m.rebuildViewportContent()
		return m, nil

	case streamStartedMsg:
		m.streamCancel = msg.cancel
		m.progressCh = msg.progressCh
		m.state = StateThinking
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, listenForProgress(msg.progressCh)

	case streamLiveMsg:
		m.state = StateStreaming
		m.liveText = msg.text
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, listenForProgress(m.progressCh)

	case streamDoneMsg:
		m.state = StateInput
		m.liveText = ""

		// Cancel context to release timer resources
		if m.streamCancel != nil {
			m.streamCancel()
			m.streamCancel = nil
		}
		m.progressCh = nil

		// The appended turn (msg.turn) is already in the manager's
		// history; the rebuild below picks it up. Failures without a
		// turn get a rendered notice instead.
		if msg.err != nil && msg.turn == nil {
			switch {
			case errors.Is(msg.err, context.Canceled), errors.Is(msg.err, conversation.ErrConversationReset):
				// Canceled or superseded: nothing to show.
			default:
				m.connErr = msg.err
			}
		}

		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		// Re-focus textarea after stream completes
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
