package feed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/CrestNiraj12/issuefeed/domain"
)

func TestToggleHeart_AppliesThenConfirms(t *testing.T) {
	threads := twoPages()
	m := loaded(t, threads)
	m, _ = m.Update(SessionChangedMsg{Login: "me"})

	m, cmd := press(m, "l")
	got, _ := m.feed.Find("t1")
	if !got.Reactions.UserReacted || got.Reactions.HeartCount != 3 {
		t.Fatalf("expected optimistic heart, got %+v", got.Reactions)
	}
	if !strings.Contains(m.View(), "saving…") {
		t.Fatalf("expected pending marker while the mutation is in flight")
	}

	m, _ = m.Update(cmd())
	got, _ = m.feed.Find("t1")
	if !got.Reactions.UserReacted || got.Reactions.HeartCount != 3 {
		t.Fatalf("confirmed heart should stick, got %+v", got.Reactions)
	}
	if len(threads.added) != 1 || threads.added[0] != "t1" {
		t.Fatalf("expected AddReaction on t1, got %v", threads.added)
	}
	if m.inter.InFlight("t1") {
		t.Fatalf("in-flight guard should be released")
	}
}

func TestToggleHeart_RollsBackOnFailure(t *testing.T) {
	threads := twoPages()
	threads.reactionErr = fmt.Errorf("%w: boom", domain.ErrMutation)
	m := loaded(t, threads)
	m, _ = m.Update(SessionChangedMsg{Login: "me"})

	m, cmd := press(m, "l")
	m, _ = m.Update(cmd())

	got, _ := m.feed.Find("t1")
	if got.Reactions.UserReacted || got.Reactions.HeartCount != 2 || got.Reactions.TotalCount != 2 {
		t.Fatalf("expected rollback to the original counts, got %+v", got.Reactions)
	}
	if !strings.Contains(m.status, "Couldn't update reaction") {
		t.Fatalf("expected rollback status, got %q", m.status)
	}
}

func TestToggleHeart_SecondPressWhileInFlightIgnored(t *testing.T) {
	threads := twoPages()
	m := loaded(t, threads)
	m, _ = m.Update(SessionChangedMsg{Login: "me"})

	m, first := press(m, "l")
	m, second := press(m, "l")
	if first == nil || second != nil {
		t.Fatalf("expected exactly one mutation command")
	}
	got, _ := m.feed.Find("t1")
	if got.Reactions.HeartCount != 3 {
		t.Fatalf("second press must not change counts, got %d", got.Reactions.HeartCount)
	}
}

func TestToggleHeart_WithoutLoginRequestsLogin(t *testing.T) {
	m := loaded(t, twoPages())

	m, cmd := press(m, "l")
	if cmd == nil {
		t.Fatalf("expected login request")
	}
	if _, ok := cmd().(LoginRequestedMsg); !ok {
		t.Fatalf("expected LoginRequestedMsg")
	}
	got, _ := m.feed.Find("t1")
	if got.Reactions.HeartCount != 2 || got.Reactions.UserReacted {
		t.Fatalf("signed-out toggle must not touch counts, got %+v", got.Reactions)
	}
}

func TestReactionResult_AfterSwitchIsDiscarded(t *testing.T) {
	threads := twoPages()
	threads.reactionErr = fmt.Errorf("%w: boom", domain.ErrMutation)
	m := loaded(t, threads)
	m, _ = m.Update(SessionChangedMsg{Login: "me"})

	m, cmd := press(m, "l")
	m, fetch := m.Update(SwitchRepoMsg{Ref: testRef})
	m, _ = m.Update(fetch())
	m, _ = m.Update(cmd())

	if m.status != "" {
		t.Fatalf("a result for a superseded feed must be silent, got %q", m.status)
	}
	got, _ := m.feed.Find("t1")
	if got.Reactions.HeartCount != 2 {
		t.Fatalf("reloaded record must keep server counts, got %d", got.Reactions.HeartCount)
	}
}

func TestSessionChanged_RecomputesUserReacted(t *testing.T) {
	m := loaded(t, twoPages())
	m, _ = m.Update(SessionChangedMsg{Login: "A"})
	got, _ := m.feed.Find("t1")
	if !got.Reactions.UserReacted {
		t.Fatalf("login a left a heart on t1")
	}
	m, _ = m.Update(SessionChangedMsg{})
	got, _ = m.feed.Find("t1")
	if got.Reactions.UserReacted {
		t.Fatalf("signed-out user cannot have reacted")
	}
}
