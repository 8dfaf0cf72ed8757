package feed

import (
	"strings"
	"testing"

	"github.com/CrestNiraj12/issuefeed/domain"
)

func TestUpdateKey_RepoInputEnter_SwitchesAndEmitsSelection(t *testing.T) {
	threads := twoPages()
	m := loaded(t, threads)

	m, _ = press(m, "/")
	if !m.InputActive() {
		t.Fatalf("expected repository input to open")
	}
	if m.input.Value() != "octo/hello" {
		t.Fatalf("input should start from the current repository, got %q", m.input.Value())
	}
	m.input.SetValue("golang/go")

	m, cmd := press(m, "enter")
	if m.InputActive() {
		t.Fatalf("expected input to close on enter")
	}
	want := domain.RepositoryRef{Owner: "golang", Repo: "go"}
	if m.Ref() != want || m.feed.Len() != 0 || !m.feed.Loading() {
		t.Fatalf("expected a fresh load of %s, got ref=%s len=%d", want, m.Ref(), m.feed.Len())
	}

	var selected, page bool
	for _, msg := range collect(cmd) {
		switch msg := msg.(type) {
		case RepoSelectedMsg:
			selected = msg.Ref == want
		case PageLoadedMsg:
			page = msg.Ticket.Ref == want && msg.Ticket.First
		}
	}
	if !selected || !page {
		t.Fatalf("expected selection and first page fetch, selected=%v page=%v", selected, page)
	}
}

func TestUpdateKey_RepoInputRejectsMalformedRef(t *testing.T) {
	m := loaded(t, twoPages())
	m, _ = press(m, "/")
	m.input.SetValue("not a repo")

	m, cmd := press(m, "enter")
	if cmd != nil || !m.InputActive() {
		t.Fatalf("malformed input must keep the input open without switching")
	}
	if m.Ref() != testRef {
		t.Fatalf("feed must stay on %s", testRef)
	}
	if !strings.Contains(m.status, "owner/repo") {
		t.Fatalf("expected format hint, got %q", m.status)
	}

	m, _ = press(m, "esc")
	if m.InputActive() {
		t.Fatalf("esc should close the input")
	}
}

func TestUpdateKey_RepoSwitcherDisabled(t *testing.T) {
	m := newTestModel(twoPages(), false)
	m, _ = press(m, "/")
	if m.InputActive() {
		t.Fatalf("input must not open when switching is disabled")
	}
}

func TestUpdateKey_CommentsNeedLogin(t *testing.T) {
	m := loaded(t, twoPages())

	_, cmd := press(m, "enter")
	if _, ok := cmd().(LoginRequestedMsg); !ok {
		t.Fatalf("signed-out users should be asked to log in")
	}

	m, _ = m.Update(SessionChangedMsg{Login: "me"})
	m, _ = press(m, "j")
	_, cmd = press(m, "enter")
	open, ok := cmd().(OpenCommentsMsg)
	if !ok || open.Thread.ID != "t2" {
		t.Fatalf("expected comments for t2, got %#v", open)
	}
}

func TestUpdateKey_LoginLogoutRequests(t *testing.T) {
	m := loaded(t, twoPages())

	if _, cmd := press(m, "X"); cmd != nil {
		t.Fatalf("logout is a no-op while signed out")
	}
	_, cmd := press(m, "L")
	if _, ok := cmd().(LoginRequestedMsg); !ok {
		t.Fatalf("expected login request")
	}

	m, _ = m.Update(SessionChangedMsg{Login: "me"})
	_, cmd = press(m, "X")
	if _, ok := cmd().(LogoutRequestedMsg); !ok {
		t.Fatalf("expected logout request")
	}
}

func TestUpdateKey_RefreshReappliesRepository(t *testing.T) {
	threads := twoPages()
	m := loaded(t, threads)
	epoch := m.feed.Epoch()

	m, cmd := press(m, "r")
	if cmd == nil || m.feed.Epoch() != epoch+1 {
		t.Fatalf("refresh should start a new epoch and fetch")
	}
	m, _ = m.Update(cmd())
	if m.feed.Len() != 2 || len(threads.queries) != 2 {
		t.Fatalf("expected reload of first page, len=%d queries=%d", m.feed.Len(), len(threads.queries))
	}
}

func TestUpdateKey_OpenUsesBrowser(t *testing.T) {
	var opened []string
	prev := openExternal
	openExternal = func(u string) error { opened = append(opened, u); return nil }
	defer func() { openExternal = prev }()

	m := loaded(t, twoPages())
	_, cmd := press(m, "o")
	if cmd == nil {
		t.Fatalf("expected open command")
	}
	cmd()
	if len(opened) != 1 || opened[0] != "https://github.com/octo/hello/issues/1" {
		t.Fatalf("unexpected opened urls: %v", opened)
	}
}

func TestIsSafeExternalURL(t *testing.T) {
	cases := map[string]bool{
		"https://github.com/a/b": true,
		"http://example.com":     true,
		"javascript:alert(1)":    false,
		"file:///etc/passwd":     false,
		"":                       false,
	}
	for in, want := range cases {
		if got := isSafeExternalURL(in); got != want {
			t.Fatalf("isSafeExternalURL(%q) = %v, want %v", in, got, want)
		}
	}
}
