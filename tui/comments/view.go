package comments

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/issuefeed/tui/common"
)

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	return w, h
}

func (m Model) bodyWidth() int {
	w, _ := m.size()
	return max(w-6, 30)
}

func (m Model) renderHeader() string {
	t := m.thread
	title := common.AppTitleStyle.Render(fmt.Sprintf("#%d", t.Number)) + " " +
		common.TitleStyle.Render(t.Title)
	by := common.AuthorStyle.Render("@"+t.Author.Login) +
		common.TimestampStyle.Render(" · "+common.RelativeTime(t.CreatedAt, m.now()))
	body := strings.TrimSpace(t.Body)
	if body != "" {
		body = "\n" + common.ContentStyle.Width(m.bodyWidth()).Render(body)
	}
	return title + "\n " + by + body
}

func (m Model) renderComment(it item, selected bool) string {
	head := common.AuthorStyle.Render("@"+it.Author.Login) +
		common.TimestampStyle.Render(" · "+common.RelativeTime(it.CreatedAt, m.now()))
	if m.login != "" && strings.EqualFold(it.Author.Login, m.login) {
		head += common.SuccessStyle.Render(" (you)")
	}
	switch it.status {
	case statusPendingCreate:
		head += common.PendingStyle.Render("  posting…")
	case statusPendingUpdate:
		head += common.PendingStyle.Render("  saving…")
	}
	style := common.UnselectedStyle
	if selected {
		style = common.SelectedStyle
	}
	return style.Width(m.bodyWidth()).Render(head + "\n" + common.ContentStyle.Render(it.Body))
}

// lines lays out every comment and returns the rendered lines plus the
// top line of each comment.
func (m Model) lines() ([]string, []int) {
	var out []string
	tops := make([]int, 0, len(m.list.items))
	for i, it := range m.list.items {
		tops = append(tops, len(out))
		out = append(out, strings.Split(m.renderComment(it, i == m.cursor), "\n")...)
	}
	return out, tops
}

func (m Model) chromeLines() int {
	n := lipgloss.Height(m.renderHeader()) + 1 // blank line under the header
	if m.inline {
		n += lipgloss.Height(m.textarea.View()) + 1
	}
	return n + 1 + 1 + lipgloss.Height(m.helpView()) // spacer, status
}

func (m Model) listHeight() int {
	_, h := m.size()
	return max(h-m.chromeLines(), 4)
}

func (m *Model) ensureCursorVisible() {
	lines, tops := m.lines()
	if len(tops) == 0 {
		m.scrollLine = 0
		return
	}
	m.cursor = min(max(m.cursor, 0), len(tops)-1)
	top := tops[m.cursor]
	bottom := len(lines) - 1
	if m.cursor+1 < len(tops) {
		bottom = tops[m.cursor+1] - 1
	}
	height := m.listHeight()
	switch {
	case top < m.scrollLine:
		m.scrollLine = top
	case bottom >= m.scrollLine+height:
		m.scrollLine = min(top, bottom-height+1)
	}
	m.scrollLine = min(max(m.scrollLine, 0), max(len(lines)-height, 0))
}

// View renders the panel.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.list.items) == 0:
		b.WriteString(fmt.Sprintf("  %s Loading comments...", m.spinner.View()))
	case m.err != nil:
		b.WriteString(common.ErrorStyle.Render("  Couldn't load comments: " + m.err.Error()))
		b.WriteString("\n\n  Press r to retry.")
	case len(m.list.items) == 0:
		b.WriteString("  No comments yet. Press c to write the first one.")
	default:
		lines, _ := m.lines()
		start := min(m.scrollLine, len(lines))
		end := min(start+m.listHeight(), len(lines))
		b.WriteString(strings.Join(lines[start:end], "\n"))
	}

	if m.inline {
		b.WriteString("\n\n")
		b.WriteString(m.textarea.View())
	}
	b.WriteString("\n\n")
	if m.status != "" {
		style := common.TimestampStyle
		if m.confirmDelete {
			style = common.ErrorStyle
		}
		b.WriteString(style.Render("  " + m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) helpView() string {
	items := []string{"j/k: focus", "c/C: comment", "e: edit", "d: delete", "r: reload", "esc: back"}
	if m.inline {
		items = []string{
			"ctrl+d: post",
			"esc: cancel",
			fmt.Sprintf("%d chars", len(m.textarea.Value())),
		}
	}
	w, _ := m.size()
	return common.StatusBarStyle.Width(max(w-2, 16)).Render("  " + strings.Join(items, " • "))
}
