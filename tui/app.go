package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/infra/auth"
	"github.com/CrestNiraj12/issuefeed/infra/editor"
	"github.com/CrestNiraj12/issuefeed/infra/storage"
	"github.com/CrestNiraj12/issuefeed/tui/comments"
	"github.com/CrestNiraj12/issuefeed/tui/common"
	"github.com/CrestNiraj12/issuefeed/tui/feed"
)

// Authenticator runs the login flow and clears the session.
type Authenticator interface {
	app.Authenticator
	Logout() error
}

// SessionSource reports the stored session.
type SessionSource interface {
	Session() auth.Session
}

// Preferences persists small UI settings.
type Preferences interface {
	Set(key, value string) error
}

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Threads  app.ThreadService
	Comments app.CommentService
	Auth     Authenticator
	Sessions SessionSource
	Prefs    Preferences
	Editor   *editor.EnvEditor
	Feed     feed.Options
	Log      zerolog.Logger
}

type activeView int

const (
	feedView activeView = iota
	commentsView
)

type loginResultMsg struct {
	login string
	err   error
}

// App is the root Bubble Tea model. It routes between the feed and the
// comment panel and owns the session.
type App struct {
	deps     Deps
	active   activeView
	feed     feed.Model
	comments comments.Model
	keys     common.KeyMap
	login    string
	size     tea.WindowSizeMsg
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	return App{
		deps:   deps,
		active: feedView,
		feed:   feed.New(deps.Threads, deps.Feed),
		keys:   common.DefaultKeyMap(),
	}
}

// Init starts the feed and announces the stored session.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.feed.Init()}
	if a.deps.Sessions != nil {
		login := a.deps.Sessions.Session().Login()
		cmds = append(cmds, func() tea.Msg { return feed.SessionChangedMsg{Login: login} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and routes to the active sub-model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.size = msg
		var fcmd, ccmd tea.Cmd
		a.feed, fcmd = a.feed.Update(msg)
		if a.active == commentsView {
			a.comments, ccmd = a.comments.Update(msg)
		}
		return a, tea.Batch(fcmd, ccmd)

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a.quit()
		}
		if a.active == feedView && !a.feed.InputActive() && key.Matches(msg, a.keys.Quit) {
			return a.quit()
		}

	case spinner.TickMsg:
		var fcmd, ccmd tea.Cmd
		a.feed, fcmd = a.feed.Update(msg)
		if a.active == commentsView {
			a.comments, ccmd = a.comments.Update(msg)
		}
		return a, tea.Batch(fcmd, ccmd)

	case feed.SessionChangedMsg:
		a.login = msg.Login
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd

	case feed.LoginRequestedMsg:
		return a.startLogin()

	case loginResultMsg:
		if msg.err != nil {
			a.feed.SetStatus(loginFailure(msg.err))
			return a, nil
		}
		a.feed.SetStatus("Signed in as @" + msg.login + ".")
		login := msg.login
		return a, func() tea.Msg { return feed.SessionChangedMsg{Login: login} }

	case feed.LogoutRequestedMsg:
		if a.deps.Auth == nil {
			return a, nil
		}
		if err := a.deps.Auth.Logout(); err != nil {
			a.deps.Log.Error().Err(err).Msg("logout")
			a.feed.SetStatus("Couldn't log out: " + err.Error())
			return a, nil
		}
		a.feed.SetStatus("Logged out.")
		return a, func() tea.Msg { return feed.SessionChangedMsg{} }

	case feed.RepoSelectedMsg:
		if a.deps.Prefs != nil && a.deps.Feed.RepoSwitcher {
			if err := a.deps.Prefs.Set(storage.KeyLastRepo, msg.Ref.String()); err != nil {
				a.deps.Log.Warn().Err(err).Msg("saving last repository")
			}
		}
		return a, nil

	case feed.OpenCommentsMsg:
		a.active = commentsView
		a.comments = comments.New(a.deps.Comments, a.deps.Editor, a.feed.Ref(), msg.Thread, a.login)
		var cmd tea.Cmd
		if a.size.Width > 0 {
			a.comments, cmd = a.comments.Update(a.size)
		}
		return a, tea.Batch(a.comments.Init(), cmd)

	case comments.ClosedMsg:
		a.active = feedView
		return a, nil

	case common.CommentCountChangedMsg:
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd
	}

	if a.active == commentsView {
		var ccmd, fcmd tea.Cmd
		a.comments, ccmd = a.comments.Update(msg)
		// Keys belong to the panel; feed results still land behind it.
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			a.feed, fcmd = a.feed.Update(msg)
		}
		return a, tea.Batch(ccmd, fcmd)
	}
	var cmd tea.Cmd
	a.feed, cmd = a.feed.Update(msg)
	return a, cmd
}

func (a App) startLogin() (tea.Model, tea.Cmd) {
	if a.deps.Auth == nil {
		a.feed.SetStatus("Login is not configured.")
		return a, nil
	}
	a.feed.SetStatus("Waiting for GitHub authorization in your browser...")
	authn, sessions, log := a.deps.Auth, a.deps.Sessions, a.deps.Log
	return a, func() tea.Msg {
		if _, err := authn.Login(context.Background()); err != nil {
			return loginResultMsg{err: err}
		}
		login := ""
		if sessions != nil {
			login = sessions.Session().Login()
		}
		log.Info().Str("login", login).Msg("signed in")
		return loginResultMsg{login: login}
	}
}

func (a App) quit() (tea.Model, tea.Cmd) {
	a.feed.Teardown()
	if a.deps.Auth != nil {
		a.deps.Auth.Cancel()
	}
	return a, tea.Quit
}

func loginFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrWindowClosed):
		return "Login cancelled."
	case errors.Is(err, domain.ErrPopupBlocked):
		return "Couldn't open the browser for login."
	case errors.Is(err, domain.ErrAuthorizationDenied):
		return "GitHub denied the authorization."
	case domain.Classify(err) == domain.KindAuthorization:
		return "Login failed: " + err.Error()
	default:
		return "Couldn't reach GitHub: " + err.Error()
	}
}

// View renders the active sub-model.
func (a App) View() string {
	if a.active == commentsView {
		return a.comments.View()
	}
	return a.feed.View()
}
