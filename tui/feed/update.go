package feed

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/issuefeed/tui/common"
)

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureFeedCursorVisible()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SessionChangedMsg:
		m.login = msg.Login
		m.feed.Reidentify(msg.Login)
		return m, nil

	case common.CommentCountChangedMsg:
		m.feed.SetCommentCount(msg.ThreadID, msg.Count)
		return m, nil

	case labelsLoadedMsg:
		return m.handleLabelsLoaded(msg)
	}

	switch msg.(type) {
	case SwitchRepoMsg, PageLoadedMsg, scrollSettledMsg:
		return m.handleFeedLoadingMsg(msg)
	case ReactionResultMsg:
		return m.handleOptimisticMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.inputActive {
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}
