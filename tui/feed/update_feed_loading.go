package feed

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/engine"
)

func (m Model) handleFeedLoadingMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SwitchRepoMsg:
		return m.switchTo(msg.Ref)

	case PageLoadedMsg:
		anchorID := ""
		if t, ok := m.SelectedThread(); ok && !msg.Ticket.First {
			anchorID = t.ID
		}
		switch m.feed.ApplyPage(msg.Ticket, msg.Page, msg.Err) {
		case engine.PageStale:
			return m, nil
		case engine.PageFailed:
			if !msg.Ticket.First && m.feed.Len() > 0 {
				m.status = "Couldn't load more issues: " + msg.Err.Error()
			}
		case engine.PageApplied:
			if !msg.Ticket.First {
				m.status = ""
			}
		}
		if anchorID != "" {
			m.setCursorByID(anchorID)
		}
		if m.cursor >= m.feed.Len() {
			m.cursor = max(m.feed.Len()-1, 0)
		}
		m.ensureFeedCursorVisible()
		return m, nil

	case scrollSettledMsg:
		t, ok := m.feed.SettleScroll(msg.token, m.viewport())
		if !ok {
			return m, nil
		}
		return m, m.fetchPage(t)
	}
	return m, nil
}

// switchTo tears down the current feed and loads the first page of ref.
// Switching to the current ref re-applies it, which is how a failed load is retried.
func (m Model) switchTo(ref domain.RepositoryRef) (Model, tea.Cmd) {
	m.inter.Reset()
	m.cursor = 0
	m.scrollLine = 0
	m.overscroll = 0
	m.status = ""
	t, err := m.feed.Switch(ref)
	if err != nil {
		return m, nil
	}
	cmd := m.fetchPage(t)
	if m.aboutOpen {
		var about tea.Cmd
		m, about = m.loadAbout()
		cmd = tea.Batch(cmd, about)
	}
	return m, cmd
}
