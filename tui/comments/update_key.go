package comments

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.inline {
		switch msg.String() {
		case "esc":
			m.inline = false
			m.textarea.Blur()
			m.status = "Cancelled."
			return m, nil
		case "ctrl+d":
			body := m.textarea.Value()
			m.inline = false
			m.textarea.Blur()
			m.textarea.Reset()
			return m.post(body)
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}

	if m.confirmDelete {
		m.confirmDelete = false
		if msg.String() == "y" {
			if it, ok := m.selected(); ok && m.isOwn(it) {
				return m.remove(it.ID)
			}
		}
		m.status = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		return m, func() tea.Msg { return ClosedMsg{} }

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.list.items)-1 {
			m.cursor++
		}
		m.ensureCursorVisible()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureCursorVisible()

	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.load(), m.spinner.Tick)

	case key.Matches(msg, m.keys.Compose):
		if m.editor == nil {
			m.status = "No editor configured."
			return m, nil
		}
		m.status = "Opening editor..."
		return m, m.launchEditor("", "")

	case key.Matches(msg, m.keys.ComposeInline):
		m.inline = true
		m.status = ""
		m.textarea.Reset()
		return m, tea.Batch(m.textarea.Focus(), textarea.Blink)

	case key.Matches(msg, m.keys.Edit):
		it, ok := m.selected()
		if !ok || !m.isOwn(it) || m.editor == nil {
			return m, nil
		}
		m.status = "Opening editor..."
		return m, m.launchEditor(it.Body, it.ID)

	case key.Matches(msg, m.keys.Delete):
		it, ok := m.selected()
		if !ok || !m.isOwn(it) {
			return m, nil
		}
		m.confirmDelete = true
		m.status = "Delete this comment? (y/n)"
	}
	return m, nil
}
