package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/wang-junjian/RAGFlowAssistant/internal/conversation"
	"github.com/wang-junjian/RAGFlowAssistant/internal/ragflow"
)

// Stream message types for Bubble Tea.
type streamStartedMsg struct {
	progressCh <-chan conversation.Progress
	cancel     context.CancelFunc
}

type streamLiveMsg struct {
	text string
}

type streamDoneMsg struct {
	turn *conversation.Turn
	err  error
}

// datasetsMsg carries the result of a knowledge base refresh.
type datasetsMsg struct {
	datasets []ragflow.Dataset
	err      error
}

// refreshDatasets lists the knowledge bases through the manager, which
// also updates the submission gate's reachability.
func (m *Model) refreshDatasets() tea.Cmd {
	return func() tea.Msg {
		datasets, err := m.manager.RefreshKnowledgeBases(m.ctx)
		return datasetsMsg{datasets: datasets, err: err}
	}
}

// startStream submits the prompt and hands the manager's progress
// channel to the event loop.
//
// Goroutine lifecycle: the manager owns the producing goroutine; it
// always ends with a Done event and a channel close, so listening until
// closure cannot leak.
func (m *Model) startStream(prompt string) tea.Cmd {
	return func() tea.Msg {
		// Per-stream timeout so a stalled server cannot hang the turn
		ctx, cancel := context.WithTimeout(m.ctx, streamTimeout)
		return streamStartedMsg{
			progressCh: m.manager.SubmitPrompt(ctx, prompt),
			cancel:     cancel,
		}
	}
}

// listenForProgress creates a command to wait for the next progress
// event. Live updates are collapsed to the latest snapshot; the Done
// event carries the appended turn or the classified error.
func listenForProgress(ch <-chan conversation.Progress) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return nil
		}

		for {
			p, ok := <-ch
			if !ok {
				// Channel closed after the Done event was consumed.
				return nil
			}
			if p.Done {
				return streamDoneMsg{turn: p.Turn, err: p.Err}
			}
			if p.LiveText != "" {
				return streamLiveMsg{text: p.LiveText}
			}
			// Empty event - loop instead of recursing
		}
	}
}
