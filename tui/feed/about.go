package feed

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/tui/common"
)

// hiddenLabels are housekeeping labels the About panel leaves out.
var hiddenLabels = map[string]bool{"dependencies": true}

func visibleLabels(all []domain.Label) []domain.Label {
	out := make([]domain.Label, 0, len(all))
	for _, l := range all {
		if l.Name == "" || hiddenLabels[l.Name] {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (m Model) toggleAbout() (Model, tea.Cmd) {
	if m.labels == nil {
		m.status = "The about panel is disabled."
		return m, nil
	}
	m.aboutOpen = !m.aboutOpen
	if !m.aboutOpen {
		return m, nil
	}
	return m.loadAbout()
}

// loadAbout fetches labels for the current repository unless they are
// already loaded or on their way.
func (m Model) loadAbout() (Model, tea.Cmd) {
	ref := m.feed.Ref()
	if ref.IsZero() || (m.aboutRef == ref && m.aboutErr == nil) {
		return m, nil
	}
	m.aboutRef = ref
	m.aboutLabels = nil
	m.aboutErr = nil
	m.aboutLoading = true

	labels := m.labels
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ls, err := labels.ListLabels(ctx, ref)
		return labelsLoadedMsg{ref: ref, labels: ls, err: err}
	}
}

func (m Model) handleLabelsLoaded(msg labelsLoadedMsg) (Model, tea.Cmd) {
	if msg.ref != m.aboutRef {
		return m, nil
	}
	m.aboutLoading = false
	m.aboutErr = msg.err
	m.aboutLabels = visibleLabels(msg.labels)
	return m, nil
}

func (m Model) renderAbout() string {
	var b strings.Builder
	b.WriteString(common.RepoStyle.Render("  About " + m.aboutRef.String()))
	b.WriteString("\n\n")
	switch {
	case m.aboutLoading:
		fmt.Fprintf(&b, "  %s Loading labels...", m.spinner.View())
	case m.aboutErr != nil:
		b.WriteString(common.ErrorStyle.Render("  " + errorMessage(m.aboutErr, m.aboutRef)))
	case len(m.aboutLabels) == 0:
		b.WriteString("  No labels yet.")
	default:
		noun := "labels"
		if len(m.aboutLabels) == 1 {
			noun = "label"
		}
		fmt.Fprintf(&b, "  %d %s\n\n", len(m.aboutLabels), noun)
		b.WriteString(labelChips(m.aboutLabels, m.feedCardWidth()))
	}
	return b.String()
}

// labelChips lays chips out left to right, wrapping at width.
func labelChips(labels []domain.Label, width int) string {
	var lines []string
	line, lineWidth := "  ", 2
	for _, l := range labels {
		chip := common.LabelStyle(l.Color).Render(l.Name)
		w := lipgloss.Width(chip)
		if lineWidth > 2 && lineWidth+1+w > width {
			lines = append(lines, line)
			line, lineWidth = "  ", 2
		}
		if lineWidth > 2 {
			line += " "
			lineWidth++
		}
		line += chip
		lineWidth += w
	}
	return strings.Join(append(lines, line), "\n\n")
}
