package feed

import (
	"context"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/issuefeed/engine"
	"github.com/CrestNiraj12/issuefeed/infra/auth"
)

// openExternal is swapped in tests.
var openExternal = auth.OpenBrowser

func (m Model) fetchPage(t engine.Ticket) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := ctrl.Fetch(ctx, t)
		return PageLoadedMsg{Ticket: t, Page: page, Err: err}
	}
}

func (m Model) sendReaction(t engine.ReactionTicket) tea.Cmd {
	threads := m.threads
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var err error
		if t.Add {
			err = threads.AddReaction(ctx, t.ThreadID)
		} else {
			err = threads.RemoveReaction(ctx, t.ThreadID)
		}
		return ReactionResultMsg{Ticket: t, Err: err}
	}
}

// observeScroll records a scroll and arms the debounce timer for it.
func (m Model) observeScroll() tea.Cmd {
	token, ok := m.feed.Scroll()
	if !ok {
		return nil
	}
	return tea.Tick(m.feed.Scheduler().Quiescence, func(time.Time) tea.Msg {
		return scrollSettledMsg{token: token}
	})
}

func openURL(rawURL string) tea.Cmd {
	if !isSafeExternalURL(rawURL) {
		return nil
	}
	return func() tea.Msg {
		_ = openExternal(rawURL)
		return nil
	}
}

func isSafeExternalURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
