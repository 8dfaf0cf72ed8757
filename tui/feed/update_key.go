package feed

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/issuefeed/domain"
)

func (m Model) handleKeyMsg(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.inputActive {
		return m.handleRepoInputKey(keyMsg)
	}
	if m.aboutOpen {
		switch {
		case key.Matches(keyMsg, m.keys.About, m.keys.Back):
			m.aboutOpen = false
			return m, nil
		case key.Matches(keyMsg, m.keys.Up, m.keys.Down, m.keys.Top, m.keys.Heart, m.keys.Comments, m.keys.Open):
			// The cards are hidden behind the panel.
			return m, nil
		}
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < m.feed.Len()-1 {
			m.cursor++
		} else if m.feed.Len() > 0 {
			m.overscroll++
		}
		m.ensureFeedCursorVisible()
		return m, m.observeScroll()

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.overscroll = 0
		m.ensureFeedCursorVisible()
		return m, m.observeScroll()

	case key.Matches(keyMsg, m.keys.Top):
		m.cursor = 0
		m.overscroll = 0
		m.ensureFeedCursorVisible()
		return m, m.observeScroll()

	case key.Matches(keyMsg, m.keys.Heart):
		return m.toggleHeart()

	case key.Matches(keyMsg, m.keys.Comments):
		t, ok := m.SelectedThread()
		if !ok {
			return m, nil
		}
		if m.login == "" {
			m.status = "Log in to read and write comments."
			return m, func() tea.Msg { return LoginRequestedMsg{} }
		}
		return m, func() tea.Msg { return OpenCommentsMsg{Thread: t} }

	case key.Matches(keyMsg, m.keys.Open):
		if t, ok := m.SelectedThread(); ok {
			return m, openURL(t.URL)
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Refresh):
		if m.feed.Ref().IsZero() {
			return m, nil
		}
		return m.switchTo(m.feed.Ref())

	case key.Matches(keyMsg, m.keys.Repo):
		if !m.repoSwitcher {
			m.status = "Repository switching is disabled."
			return m, nil
		}
		m.inputActive = true
		m.input.SetValue(m.feed.Ref().String())
		m.input.CursorEnd()
		return m, tea.Batch(m.input.Focus(), textinput.Blink)

	case key.Matches(keyMsg, m.keys.About):
		return m.toggleAbout()

	case key.Matches(keyMsg, m.keys.Login):
		if m.login != "" {
			return m, nil
		}
		return m, func() tea.Msg { return LoginRequestedMsg{} }

	case key.Matches(keyMsg, m.keys.Logout):
		if m.login == "" {
			return m, nil
		}
		return m, func() tea.Msg { return LogoutRequestedMsg{} }

	case key.Matches(keyMsg, m.keys.ToggleHints):
		m.showAllHints = !m.showAllHints
		m.ensureFeedCursorVisible()
		return m, nil
	}
	return m, nil
}

func (m Model) handleRepoInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputActive = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		ref, err := domain.ParseRepositoryRef(m.input.Value())
		if err != nil {
			m.status = "Enter a repository as owner/repo."
			return m, nil
		}
		m.inputActive = false
		m.input.Blur()
		var cmd tea.Cmd
		m, cmd = m.switchTo(ref)
		return m, tea.Batch(cmd, func() tea.Msg { return RepoSelectedMsg{Ref: ref} })
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
