// Package comments is the per-thread comment panel: it lists replies and
// composes, edits and deletes the signed-in user's comments optimistically.
package comments

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/engine"
	"github.com/CrestNiraj12/issuefeed/infra/editor"
	"github.com/CrestNiraj12/issuefeed/tui/common"
)

const (
	requestTimeout = 30 * time.Second
	localIDPrefix  = "local-"
	maxCommentLen  = 65536
)

// ClosedMsg is sent when the user leaves the panel.
type ClosedMsg struct{}

type commentsLoadedMsg struct {
	threadID string
	comments []domain.Comment
	err      error
}

// editorFinishedMsg is sent after the external editor exits. editID is empty
// for a new comment.
type editorFinishedMsg struct {
	tmpPath  string
	editID   string
	original string
	err      error
}

type postedMsg struct {
	localID string
	comment domain.Comment
	err     error
}

type updatedMsg struct {
	id      string
	comment domain.Comment
	err     error
}

type deletedMsg struct {
	id  string
	err error
}

type itemStatus int

const (
	statusNormal itemStatus = iota
	statusPendingCreate
	statusPendingUpdate
)

type item struct {
	domain.Comment
	status itemStatus
}

// commentList is shared by every copy of Model so snapshots can restore into it.
type commentList struct {
	items []item
}

func (l *commentList) index(id string) int {
	return slices.IndexFunc(l.items, func(it item) bool { return it.ID == id })
}

type removal struct {
	at int
	it item
}

// Model holds the state for one thread's comment panel.
type Model struct {
	svc    app.CommentService
	editor *editor.EnvEditor
	ref    domain.RepositoryRef
	thread domain.Thread
	login  string

	list    *commentList
	deletes map[string]engine.Snapshot[removal]
	edits   map[string]engine.Snapshot[string]

	keys          common.KeyMap
	spinner       spinner.Model
	textarea      textarea.Model
	inline        bool
	confirmDelete bool
	loading       bool
	err           error
	status        string
	cursor        int
	scrollLine    int
	width         int
	height        int
	now           func() time.Time
}

// New creates a comment panel for thread. login identifies the signed-in user.
func New(svc app.CommentService, ed *editor.EnvEditor, ref domain.RepositoryRef, thread domain.Thread, login string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DA1F2"))

	ta := textarea.New()
	ta.Placeholder = "Write a comment..."
	ta.CharLimit = maxCommentLen
	ta.SetWidth(72)
	ta.SetHeight(6)

	return Model{
		svc:      svc,
		editor:   ed,
		ref:      ref,
		thread:   thread,
		login:    login,
		list:     &commentList{},
		deletes:  make(map[string]engine.Snapshot[removal]),
		edits:    make(map[string]engine.Snapshot[string]),
		keys:     common.DefaultKeyMap(),
		spinner:  s,
		textarea: ta,
		loading:  true,
		now:      time.Now,
	}
}

// Init loads the comments.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

// Thread returns the thread this panel belongs to.
func (m Model) Thread() domain.Thread { return m.thread }

// Count is the number of comments currently shown, optimistic ones included.
func (m Model) Count() int { return len(m.list.items) }

// Update handles messages for the comment panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(min(max(msg.Width-6, 20), 100))
		m.ensureCursorVisible()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case commentsLoadedMsg:
		if msg.threadID != m.thread.ID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.list.items = m.merge(msg.comments)
		m.cursor = min(m.cursor, max(len(m.list.items)-1, 0))
		m.ensureCursorVisible()
		return m, m.countChanged()

	case editorFinishedMsg:
		if msg.err != nil {
			m.status = "Editor failed: " + msg.err.Error()
			return m, nil
		}
		content, err := m.editor.ReadContent(msg.tmpPath)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if content == "" || content == msg.original {
			m.status = "Cancelled."
			return m, nil
		}
		if msg.editID != "" {
			return m.edit(msg.editID, content)
		}
		return m.post(content)

	case postedMsg:
		return m.handlePosted(msg)
	case updatedMsg:
		return m.handleUpdated(msg)
	case deletedMsg:
		return m.handleDeleted(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.inline {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

// merge takes a fresh server list and keeps what is still in flight: edited
// bodies stay, placeholders for unsent comments are appended, and comments
// being deleted stay hidden.
func (m Model) merge(server []domain.Comment) []item {
	pending := make(map[string]item)
	var unsent []item
	for _, it := range m.list.items {
		switch it.status {
		case statusPendingCreate:
			unsent = append(unsent, it)
		case statusPendingUpdate:
			pending[it.ID] = it
		}
	}
	out := make([]item, 0, len(server)+len(unsent))
	for _, c := range server {
		if _, deleting := m.deletes[c.ID]; deleting {
			continue
		}
		if it, ok := pending[c.ID]; ok {
			out = append(out, it)
			continue
		}
		out = append(out, item{Comment: c})
	}
	return append(out, unsent...)
}

func (m Model) isOwn(it item) bool {
	return m.login != "" && it.status == statusNormal &&
		!strings.HasPrefix(it.ID, localIDPrefix) &&
		strings.EqualFold(it.Author.Login, m.login)
}

func (m Model) selected() (item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.list.items) {
		return item{}, false
	}
	return m.list.items[m.cursor], true
}
