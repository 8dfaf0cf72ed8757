package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/CrestNiraj12/issuefeed/domain"
)

type stubLabels struct {
	mu    sync.Mutex
	err   error
	calls []domain.RepositoryRef
}

func (s *stubLabels) ListLabels(_ context.Context, ref domain.RepositoryRef) ([]domain.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ref)
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Label{
		{Name: "idea", Color: "a2eeef"},
		{Name: "dependencies", Color: "0366d6"},
		{Name: "bug", Color: "d73a4a"},
	}, nil
}

func aboutModel(t *testing.T, labels *stubLabels) Model {
	t.Helper()
	m := New(twoPages(), Options{Ref: testRef, PageSize: 2, RepoSwitcher: true, Labels: labels})
	m.width = 100
	m.height = 60
	m, cmd := m.Update(SwitchRepoMsg{Ref: testRef})
	m, _ = m.Update(cmd())
	return m
}

func TestAbout_ListsLabelsWithoutHousekeeping(t *testing.T) {
	svc := &stubLabels{}
	m := aboutModel(t, svc)

	m, cmd := press(m, "a")
	if !m.aboutOpen || !m.aboutLoading || cmd == nil {
		t.Fatalf("expected the panel to open and load")
	}
	m, _ = m.Update(cmd())

	if len(m.aboutLabels) != 2 || m.aboutLabels[0].Name != "idea" || m.aboutLabels[1].Name != "bug" {
		t.Fatalf("unexpected labels %+v", m.aboutLabels)
	}
	view := m.View()
	if !strings.Contains(view, "2 labels") || strings.Contains(view, "dependencies") {
		t.Fatalf("unexpected about view:\n%s", view)
	}

	m, _ = press(m, "esc")
	m, cmd = press(m, "a")
	if cmd != nil || len(svc.calls) != 1 {
		t.Fatalf("reopening for the same repository should not refetch, calls=%v", svc.calls)
	}
}

func TestAbout_HidesCardsAndIgnoresFocusKeys(t *testing.T) {
	m := aboutModel(t, &stubLabels{})
	m, cmd := press(m, "a")
	m, _ = m.Update(cmd())

	m, _ = press(m, "j")
	if m.cursor != 0 {
		t.Fatalf("focus moved behind the about panel")
	}
	if strings.Contains(m.View(), "Issue t1") {
		t.Fatalf("cards should be hidden while the panel is open")
	}
	m, _ = press(m, "a")
	if m.aboutOpen || !strings.Contains(m.View(), "Issue t1") {
		t.Fatalf("expected the feed back after closing the panel")
	}
}

func TestAbout_StaleResponseIgnoredAfterSwitch(t *testing.T) {
	svc := &stubLabels{}
	m := aboutModel(t, svc)
	m, first := press(m, "a")

	other := domain.RepositoryRef{Owner: "golang", Repo: "go"}
	m, cmd := m.Update(SwitchRepoMsg{Ref: other})
	if m.aboutRef != other || cmd == nil {
		t.Fatalf("switching with the panel open should load the new repository's labels")
	}

	m, _ = m.Update(first())
	if !m.aboutLoading || m.aboutLabels != nil {
		t.Fatalf("labels of the previous repository must not land, got %+v", m.aboutLabels)
	}
}

func TestAbout_FailureRetriedOnReopen(t *testing.T) {
	svc := &stubLabels{err: domain.ErrTransport}
	m := aboutModel(t, svc)
	m, cmd := press(m, "a")
	m, _ = m.Update(cmd())
	if !errors.Is(m.aboutErr, domain.ErrTransport) || !strings.Contains(m.View(), "Couldn't reach GitHub") {
		t.Fatalf("expected the error in the panel, got %v", m.aboutErr)
	}

	svc.mu.Lock()
	svc.err = nil
	svc.mu.Unlock()
	m, _ = press(m, "a")
	m, cmd = press(m, "a")
	if cmd == nil {
		t.Fatalf("expected a retry after a failed load")
	}
	m, _ = m.Update(cmd())
	if m.aboutErr != nil || len(m.aboutLabels) != 2 {
		t.Fatalf("retry did not load labels: %v %+v", m.aboutErr, m.aboutLabels)
	}
}

func TestAbout_DisabledWithoutLabelService(t *testing.T) {
	m := loaded(t, twoPages())
	m, cmd := press(m, "a")
	if m.aboutOpen || cmd != nil || m.status != "The about panel is disabled." {
		t.Fatalf("about must stay closed without a label service")
	}
}
