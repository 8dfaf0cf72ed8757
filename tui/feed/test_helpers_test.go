package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
)

var testRef = domain.RepositoryRef{Owner: "octo", Repo: "hello"}

type stubThreads struct {
	mu          sync.Mutex
	pages       map[string]domain.FeedPage // keyed by cursor
	listErr     error
	reactionErr error
	queries     []app.ThreadQuery
	added       []string
	removed     []string
}

func (s *stubThreads) ListThreads(_ context.Context, q app.ThreadQuery) (domain.FeedPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.listErr != nil {
		return domain.FeedPage{}, s.listErr
	}
	return s.pages[q.Cursor], nil
}

func (s *stubThreads) AddReaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, id)
	return s.reactionErr
}

func (s *stubThreads) RemoveReaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, id)
	return s.reactionErr
}

func makeThread(id string, number int) domain.Thread {
	return domain.Thread{
		ID:        id,
		Number:    number,
		Title:     "Issue " + id,
		Body:      "body of " + id,
		Author:    domain.Author{Login: "author" + id},
		CreatedAt: time.Now().Add(-time.Duration(number) * time.Hour),
		Reactions: domain.Reactions{TotalCount: 2, HeartCount: 2, HeartLogins: []string{"a", "b"}},
		URL:       fmt.Sprintf("https://github.com/octo/hello/issues/%d", number),
	}
}

// twoPages serves threads t1,t2 then t3,t4.
func twoPages() *stubThreads {
	return &stubThreads{pages: map[string]domain.FeedPage{
		"": {
			HasNextPage: true,
			EndCursor:   "c1",
			Nodes:       []domain.Thread{makeThread("t1", 1), makeThread("t2", 2)},
		},
		"c1": {
			Nodes: []domain.Thread{makeThread("t3", 3), makeThread("t4", 4)},
		},
	}}
}

func newTestModel(threads app.ThreadService, switcher bool) Model {
	m := New(threads, Options{Ref: testRef, PageSize: 2, RepoSwitcher: switcher})
	m.width = 100
	m.height = 60
	m.feed.Scheduler().Quiescence = time.Millisecond
	return m
}

func press(m Model, k string) (Model, tea.Cmd) {
	switch k {
	case "enter":
		return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	}
	return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// loaded returns a model with the first page applied.
func loaded(t *testing.T, threads app.ThreadService) Model {
	t.Helper()
	m := newTestModel(threads, true)
	m, cmd := m.Update(SwitchRepoMsg{Ref: testRef})
	if cmd == nil {
		t.Fatalf("expected a fetch command after switching")
	}
	m, _ = m.Update(cmd())
	return m
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}
