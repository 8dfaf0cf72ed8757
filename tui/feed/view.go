package feed

import (
	"fmt"
	"strings"

	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/engine"
	"github.com/CrestNiraj12/issuefeed/tui/common"
)

// View renders the feed as a string.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	if m.inputActive {
		b.WriteString(m.renderRepoInput())
		b.WriteString("\n")
	}

	if m.aboutOpen {
		b.WriteString(m.renderAbout())
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.renderBody())
		b.WriteString("\n\n")
		b.WriteString(m.renderNotice())
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(common.ClampLines(common.TimestampStyle.Render("  "+m.status), m.feedCardWidth()))
	}
	b.WriteString("\n")
	b.WriteString(m.helpView())

	return b.String()
}

func (m Model) renderBody() string {
	f := m.feed
	if f.Len() == 0 {
		switch f.Phase() {
		case engine.PhaseLoading:
			return fmt.Sprintf("  %s Loading issues...", m.spinner.View())
		case engine.PhaseError:
			return common.ErrorStyle.Render("  "+errorMessage(f.Err(), f.Ref())) + "\n\n" + m.retryHint(f.Err())
		case engine.PhaseReady:
			return "  No open issues yet."
		default:
			return "  " + errorMessage(domain.ErrMissingRepository, f.Ref())
		}
	}

	cardWidth := m.feedCardWidth()
	records := f.Records()
	cards := make([]string, len(records))
	for i, t := range records {
		cards[i] = m.renderCard(t, i == m.cursor, cardWidth)
	}
	lines := strings.Split(strings.Join(cards, "\n\n"), "\n")
	start := min(m.scrollLine, len(lines))
	end := min(start+m.feedViewportHeight(), len(lines))
	return strings.Join(lines[start:end], "\n")
}

// renderNotice fills the reserved row under the list: loader, retry hint or end marker.
func (m Model) renderNotice() string {
	f := m.feed
	if f.Len() == 0 {
		return ""
	}
	switch {
	case f.Loading():
		return fmt.Sprintf("  %s Loading more...", m.spinner.View())
	case f.Err() != nil:
		return common.ErrorStyle.Render("  " + errorMessage(f.Err(), f.Ref()) + " (scroll to retry)")
	case !f.HasMore():
		return common.TimestampStyle.Render("  You're all caught up.")
	}
	return ""
}

func (m Model) retryHint(err error) string {
	switch domain.Classify(err) {
	case domain.KindConfiguration, domain.KindNotFound:
		if m.repoSwitcher {
			return "  Press / to choose another repository."
		}
		return "  Set feed.owner and feed.repo in the config file."
	default:
		return "  Press r to retry."
	}
}

// errorMessage turns a feed error into the user-facing line for its kind.
func errorMessage(err error, ref domain.RepositoryRef) string {
	switch domain.Classify(err) {
	case domain.KindConfiguration:
		return "No repository configured."
	case domain.KindNotFound:
		return fmt.Sprintf("Repository %s not found or private.", ref)
	case domain.KindAuthorization:
		return "GitHub rejected the credentials. Log in again."
	case domain.KindNone:
		return ""
	default:
		return "Couldn't reach GitHub: " + err.Error()
	}
}
