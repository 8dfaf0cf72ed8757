package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/infra/auth"
	"github.com/CrestNiraj12/issuefeed/infra/storage"
	"github.com/CrestNiraj12/issuefeed/tui/comments"
	"github.com/CrestNiraj12/issuefeed/tui/feed"
)

type nopThreads struct{}

func (nopThreads) ListThreads(context.Context, app.ThreadQuery) (domain.FeedPage, error) {
	return domain.FeedPage{}, nil
}
func (nopThreads) AddReaction(context.Context, string) error    { return nil }
func (nopThreads) RemoveReaction(context.Context, string) error { return nil }

type nopComments struct{}

func (nopComments) ListComments(context.Context, domain.RepositoryRef, int) ([]domain.Comment, error) {
	return nil, nil
}
func (nopComments) AddComment(context.Context, string, string) (domain.Comment, error) {
	return domain.Comment{}, nil
}
func (nopComments) UpdateComment(context.Context, string, string) (domain.Comment, error) {
	return domain.Comment{}, nil
}
func (nopComments) DeleteComment(context.Context, string) error { return nil }

type fakeAuth struct {
	loginErr  error
	cancelled bool
	loggedOut bool
	session   *auth.Session
}

func (f *fakeAuth) Login(context.Context) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	f.session.Credential = "tok"
	f.session.Identity = &domain.Identity{Login: "octocat"}
	return "tok", nil
}
func (f *fakeAuth) Cancel()       { f.cancelled = true }
func (f *fakeAuth) Logout() error { f.loggedOut = true; *f.session = auth.Session{}; return nil }

type fakeSessions struct{ s *auth.Session }

func (f fakeSessions) Session() auth.Session { return *f.s }

type memPrefs map[string]string

func (m memPrefs) Set(k, v string) error { m[k] = v; return nil }

func newTestApp() (App, *fakeAuth, memPrefs) {
	sess := &auth.Session{}
	fa := &fakeAuth{session: sess}
	prefs := memPrefs{}
	a := NewApp(Deps{
		Threads:  nopThreads{},
		Comments: nopComments{},
		Auth:     fa,
		Sessions: fakeSessions{s: sess},
		Prefs:    prefs,
		Feed:     feed.Options{Ref: domain.RepositoryRef{Owner: "o", Repo: "r"}, PageSize: 6, RepoSwitcher: true},
		Log:      zerolog.Nop(),
	})
	return a, fa, prefs
}

func step(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("expected App, got %T", m)
	}
	return next, cmd
}

func TestQuit_CancelsPendingLogin(t *testing.T) {
	a, fa, _ := newTestApp()
	_, cmd := step(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if !fa.cancelled {
		t.Fatalf("quitting must close a pending authorization window")
	}
}

func TestLogin_AnnouncesSession(t *testing.T) {
	a, _, _ := newTestApp()
	a, cmd := step(t, a, feed.LoginRequestedMsg{})
	res, ok := cmd().(loginResultMsg)
	if !ok || res.err != nil || res.login != "octocat" {
		t.Fatalf("unexpected login result %+v", res)
	}
	a, cmd = step(t, a, res)
	changed, ok := cmd().(feed.SessionChangedMsg)
	if !ok || changed.Login != "octocat" {
		t.Fatalf("expected SessionChangedMsg for octocat, got %#v", changed)
	}
	a, _ = step(t, a, changed)
	if a.login != "octocat" {
		t.Fatalf("root model should track the login")
	}
}

func TestLogin_WindowClosedLeavesSignedOut(t *testing.T) {
	a, fa, _ := newTestApp()
	fa.loginErr = domain.ErrWindowClosed
	a, cmd := step(t, a, feed.LoginRequestedMsg{})
	a, cmd = step(t, a, cmd())
	if cmd != nil || a.login != "" {
		t.Fatalf("failed login must not change the session")
	}
	if got := loginFailure(domain.ErrWindowClosed); got != "Login cancelled." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	a, fa, _ := newTestApp()
	a, _ = step(t, a, feed.SessionChangedMsg{Login: "octocat"})
	_, cmd := step(t, a, feed.LogoutRequestedMsg{})
	if !fa.loggedOut {
		t.Fatalf("expected Logout call")
	}
	if changed, ok := cmd().(feed.SessionChangedMsg); !ok || changed.Login != "" {
		t.Fatalf("expected signed-out SessionChangedMsg")
	}
}

func TestRepoSelected_Remembered(t *testing.T) {
	a, _, prefs := newTestApp()
	step(t, a, feed.RepoSelectedMsg{Ref: domain.RepositoryRef{Owner: "golang", Repo: "go"}})
	if prefs[storage.KeyLastRepo] != "golang/go" {
		t.Fatalf("expected last repo saved, got %v", prefs)
	}
}

func TestCommentsPanel_OpenAndClose(t *testing.T) {
	a, _, _ := newTestApp()
	a, _ = step(t, a, tea.WindowSizeMsg{Width: 100, Height: 40})
	a, cmd := step(t, a, feed.OpenCommentsMsg{Thread: domain.Thread{ID: "I_1", Number: 1}})
	if a.active != commentsView || cmd == nil {
		t.Fatalf("expected comment panel to open and load")
	}

	a, _ = step(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if a.active != commentsView {
		t.Fatalf("q inside the panel should not quit the app")
	}
	a, _ = step(t, a, comments.ClosedMsg{})
	if a.active != feedView {
		t.Fatalf("expected feed view after closing")
	}
}
