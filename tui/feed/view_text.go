package feed

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/tui/common"
)

const previewLines = 3

func (m Model) renderCard(t domain.Thread, selected bool, cardWidth int) string {
	bodyWidth := max(cardWidth-4, 20)

	header := renderAuthor(t.Author.Login, m.login) +
		common.TimestampStyle.Render(" · "+common.RelativeTime(t.CreatedAt, m.now()))
	if t.Label != nil && t.Label.Name != "" && t.Label.Name != "default" {
		header += "  " + common.LabelStyle(t.Label.Color).Render(t.Label.Name)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(common.TitleStyle.Width(bodyWidth).Render(t.Title))
	if body := truncateToLines(t.Body, bodyWidth-2, previewLines); body != "" {
		indicator := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")).Render("┃ ")
		for _, line := range strings.Split(body, "\n") {
			b.WriteString("\n" + indicator + common.ContentStyle.Render(line))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.renderMeta(t))

	style := common.UnselectedStyle
	if selected {
		style = common.SelectedStyle
	}
	return style.Width(cardWidth).Render(b.String())
}

func (m Model) renderMeta(t domain.Thread) string {
	heart := common.MetadataStyle.Render(fmt.Sprintf("♡ %d", t.Reactions.HeartCount))
	if t.Reactions.UserReacted {
		heart = common.HeartActiveStyle.Render(fmt.Sprintf("♥ %d", t.Reactions.HeartCount))
	}
	comments := common.MetadataStyle.Render(fmt.Sprintf("↩ %d", t.CommentCount))
	if t.CommentCount > 0 {
		comments = common.CommentActiveStyle.Render(fmt.Sprintf("↩ %d", t.CommentCount))
	}
	meta := heart + "   " + comments + common.MetadataStyle.Render(fmt.Sprintf("   #%d", t.Number))
	if m.inter.InFlight(t.ID) {
		meta += common.PendingStyle.Render("  saving…")
	}
	return meta
}

// truncateToLines wraps text to width and keeps at most n non-blank lines.
func truncateToLines(text string, width, n int) string {
	var kept []string
	for _, ln := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.TrimSpace(ln) != "" {
			kept = append(kept, strings.TrimSpace(ln))
		}
	}
	if len(kept) == 0 {
		return ""
	}
	width = max(width, 12)
	wrapped := lipgloss.NewStyle().Width(width).Render(strings.Join(kept, "\n"))
	lines := strings.Split(wrapped, "\n")
	if len(lines) <= n {
		return wrapped
	}
	return strings.Join(lines[:n], "\n") + "…"
}

func authorStyleFor(login, self string) lipgloss.Style {
	if self != "" && strings.EqualFold(login, self) {
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A6DA95"))
	}
	palette := []string{
		"#7DC4E4", "#8BD5CA", "#F5A97F", "#C6A0F6", "#EBA0AC",
		"#89B4FA", "#F9E2AF", "#F38BA8", "#94E2D5",
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(login))))
	idx := int(h.Sum32() % uint32(len(palette)))
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(palette[idx]))
}

func renderAuthor(login, self string) string {
	out := authorStyleFor(login, self).Render("@" + login)
	if self != "" && strings.EqualFold(login, self) {
		out += common.SuccessStyle.Render(" (you)")
	}
	return out
}
