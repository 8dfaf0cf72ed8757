package feed

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/issuefeed/domain"
)

func TestRenderCard_ShowsLabelUnlessDefault(t *testing.T) {
	m := newTestModel(twoPages(), true)
	th := makeThread("t1", 1)
	th.CommentCount = 4

	th.Label = &domain.Label{Name: "bug", Color: "d73a4a"}
	card := m.renderCard(th, true, 60)
	if !strings.Contains(card, "bug") || !strings.Contains(card, "↩ 4") || !strings.Contains(card, "#1") {
		t.Fatalf("card missing label or counts:\n%s", card)
	}

	th.Label = &domain.Label{Name: "default", Color: "1da1f2"}
	if strings.Contains(m.renderCard(th, true, 60), "default") {
		t.Fatalf("the placeholder label must not render")
	}
}

func TestRenderCard_SelectionDoesNotChangeHeight(t *testing.T) {
	m := newTestModel(twoPages(), true)
	th := makeThread("t1", 1)
	th.Body = strings.Repeat("long body text ", 40)
	a := lipgloss.Height(m.renderCard(th, true, 60))
	b := lipgloss.Height(m.renderCard(th, false, 60))
	if a != b {
		t.Fatalf("selected and unselected cards differ in height: %d vs %d", a, b)
	}
}

func TestTruncateToLines(t *testing.T) {
	if got := truncateToLines("\n\n  \n", 40, 3); got != "" {
		t.Fatalf("blank body should render nothing, got %q", got)
	}
	got := truncateToLines(strings.Repeat("word ", 100), 20, 3)
	if n := len(strings.Split(got, "\n")); n != 3 || !strings.HasSuffix(got, "…") {
		t.Fatalf("expected 3 lines ending with an ellipsis, got %d lines: %q", n, got)
	}
}

func TestRenderAuthor_MarksSelf(t *testing.T) {
	if !strings.Contains(renderAuthor("Me", "me"), "(you)") {
		t.Fatalf("own threads should be marked")
	}
	if strings.Contains(renderAuthor("other", "me"), "(you)") {
		t.Fatalf("other authors must not be marked")
	}
}
