package feed

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/issuefeed/engine"
)

func (m Model) handleOptimisticMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReactionResultMsg:
		if m.inter.Settle(m.feed, msg.Ticket, msg.Err) == engine.RolledBack {
			m.status = "Couldn't update reaction: " + msg.Err.Error()
		}
	}
	return m, nil
}

// toggleHeart flips the heart on the focused thread optimistically.
func (m Model) toggleHeart() (Model, tea.Cmd) {
	t, ok := m.SelectedThread()
	if !ok {
		return m, nil
	}
	ticket, outcome := m.inter.Toggle(m.feed, m.login != "", t.ID, !t.Reactions.UserReacted)
	switch outcome {
	case engine.ToggleApplied:
		return m, m.sendReaction(ticket)
	case engine.ToggleNeedsLogin:
		m.status = "Log in to react."
		return m, func() tea.Msg { return LoginRequestedMsg{} }
	}
	return m, nil
}
