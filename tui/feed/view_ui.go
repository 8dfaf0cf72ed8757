package feed

import (
	"strings"

	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/tui/common"
)

func (m Model) renderHeader() string {
	title := common.AppTitleStyle.Render(domain.AppTitle)
	repo := ""
	if ref := m.feed.Ref(); !ref.IsZero() {
		repo = " " + common.RepoStyle.Render(ref.String())
	}
	who := common.TaglineStyle.Render("not signed in")
	if m.login != "" {
		who = common.TaglineStyle.Render("signed in as @" + m.login)
	}
	return title + repo + who
}

func (m Model) renderRepoInput() string {
	return common.InputStyle.Render(m.input.View()) +
		"\n" + common.TimestampStyle.Render("  enter: apply • esc: cancel")
}

func (m Model) helpView() string {
	var items []string
	switch {
	case m.aboutOpen:
		items = []string{"a/esc: close about", "/: repository", "q: quit"}
		if !m.repoSwitcher {
			items = []string{"a/esc: close about", "q: quit"}
		}
	case m.showAllHints:
		items = m.allHints()
	case m.feed.Len() > 0:
		items = []string{
			"j/k: focus",
			"l: heart",
			"enter: comments",
			"o: open",
			"q: quit",
			"?: all keys",
		}
	default:
		items = []string{
			"r: refresh",
			"q: quit",
			"?: all keys",
		}
	}

	w, _ := m.termSize()
	return common.StatusBarStyle.
		Width(max(w-2, 16)).
		Render("  " + strings.Join(items, " • "))
}

func (m Model) allHints() []string {
	hints := []string{
		"j/k: focus",
		"g: top",
		"l: heart",
		"enter: comments",
		"o: open in browser",
		"r: refresh",
	}
	if m.repoSwitcher {
		hints = append(hints, "/: repository")
	}
	if m.labels != nil {
		hints = append(hints, "a: about")
	}
	if m.login == "" {
		hints = append(hints, "L: login")
	} else {
		hints = append(hints, "X: logout")
	}
	return append(hints, "q: quit", "?: fewer keys")
}
