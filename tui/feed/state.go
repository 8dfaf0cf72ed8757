package feed

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/engine"
	"github.com/CrestNiraj12/issuefeed/tui/common"
)

const requestTimeout = 30 * time.Second

// PageLoadedMsg carries one page response back to the feed.
type PageLoadedMsg struct {
	Ticket engine.Ticket
	Page   domain.FeedPage
	Err    error
}

// ReactionResultMsg reports how a heart mutation ended.
type ReactionResultMsg struct {
	Ticket engine.ReactionTicket
	Err    error
}

type scrollSettledMsg struct {
	token uint64
}

// SwitchRepoMsg points the feed at another repository.
type SwitchRepoMsg struct {
	Ref domain.RepositoryRef
}

// RepoSelectedMsg is emitted after the user applies a repository from the
// input so the root model can remember it.
type RepoSelectedMsg struct {
	Ref domain.RepositoryRef
}

// SessionChangedMsg tells the feed who is signed in. An empty login means
// signed out.
type SessionChangedMsg struct {
	Login string
}

// LoginRequestedMsg asks the root model to start the OAuth flow.
type LoginRequestedMsg struct{}

// LogoutRequestedMsg asks the root model to clear the session.
type LogoutRequestedMsg struct{}

type labelsLoadedMsg struct {
	ref    domain.RepositoryRef
	labels []domain.Label
	err    error
}

// OpenCommentsMsg asks the root model to open the comment panel for a thread.
type OpenCommentsMsg struct {
	Thread domain.Thread
}

// Options configures a feed model.
type Options struct {
	Ref      domain.RepositoryRef
	PageSize int
	// FilterByAuthor limits the feed to threads opened by the repository owner.
	FilterByAuthor bool
	RepoSwitcher   bool
	// Labels backs the About panel; nil disables it.
	Labels app.LabelService
}

type modelServices struct {
	threads app.ThreadService
	ctrl    *engine.Controller
	feed    *engine.FeedState
	inter   *engine.Interactions
	labels  app.LabelService
}

type uiState struct {
	keys         common.KeyMap
	spinner      spinner.Model
	width        int
	height       int
	cursor       int
	scrollLine   int // line offset of the viewport's top edge
	overscroll   int // down presses past the last card since the last upward move
	showAllHints bool
	status       string
	now          func() time.Time
}

type sessionState struct {
	login string
}

type aboutState struct {
	aboutOpen    bool
	aboutRef     domain.RepositoryRef // repository the labels below belong to
	aboutLabels  []domain.Label
	aboutLoading bool
	aboutErr     error
}

type repoInputState struct {
	repoSwitcher bool
	inputActive  bool
	input        textinput.Model
	initialRef   domain.RepositoryRef
}

// Model holds the state for the feed view. The engine types are pointers so
// copies of Model made by Bubble Tea share one feed.
type Model struct {
	modelServices
	uiState
	sessionState
	repoInputState
	aboutState
}

// New creates a feed model with injected dependencies.
func New(threads app.ThreadService, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DA1F2"))

	in := textinput.New()
	in.Placeholder = "owner/repo"
	in.Prompt = "repo › "
	in.CharLimit = 200
	in.Width = 40

	return Model{
		modelServices: modelServices{
			threads: threads,
			ctrl:    engine.NewController(threads, opts.FilterByAuthor),
			feed:    engine.NewFeedState(opts.PageSize, nil),
			inter:   engine.NewInteractions(),
			labels:  opts.Labels,
		},
		uiState: uiState{
			keys:    common.DefaultKeyMap(),
			spinner: s,
			now:     time.Now,
		},
		repoInputState: repoInputState{
			repoSwitcher: opts.RepoSwitcher,
			input:        in,
			initialRef:   opts.Ref,
		},
	}
}

// Init selects the initial repository and starts the spinner.
func (m Model) Init() tea.Cmd {
	ref := m.initialRef
	return tea.Batch(
		func() tea.Msg { return SwitchRepoMsg{Ref: ref} },
		m.spinner.Tick,
	)
}

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m.update(msg)
}

// Teardown detaches the scroll scheduler so no pending debounce can fire.
func (m Model) Teardown() {
	m.feed.Teardown()
}

// Feed exposes the underlying feed state.
func (m Model) Feed() *engine.FeedState { return m.feed }

// Ref returns the repository currently shown.
func (m Model) Ref() domain.RepositoryRef { return m.feed.Ref() }

// InputActive reports whether the repository input has focus.
func (m Model) InputActive() bool { return m.inputActive }

// SelectedThread returns the focused thread, if any.
func (m Model) SelectedThread() (domain.Thread, bool) {
	records := m.feed.Records()
	if m.cursor < 0 || m.cursor >= len(records) {
		return domain.Thread{}, false
	}
	return records[m.cursor], true
}

// SetStatus replaces the feed's transient status line.
func (m *Model) SetStatus(s string) { m.status = s }
