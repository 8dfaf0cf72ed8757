package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
)

var (
	refA = domain.RepositoryRef{Owner: "acme", Repo: "feedback"}
	refB = domain.RepositoryRef{Owner: "acme", Repo: "ideas"}
)

func thread(id string, hearts int, logins ...string) domain.Thread {
	return domain.Thread{
		ID:     id,
		Number: len(id),
		Title:  "thread " + id,
		Reactions: domain.Reactions{
			TotalCount:  hearts,
			HeartCount:  hearts,
			HeartLogins: logins,
		},
	}
}

func page(next bool, cursor string, ids ...string) domain.FeedPage {
	p := domain.FeedPage{HasNextPage: next, EndCursor: cursor, TotalCount: len(ids)}
	for _, id := range ids {
		p.Nodes = append(p.Nodes, thread(id, 0))
	}
	return p
}

func ids(f *FeedState) []string {
	out := make([]string, 0, f.Len())
	for _, r := range f.Records() {
		out = append(out, r.ID)
	}
	return out
}

func readyFeed(t *testing.T, p domain.FeedPage) *FeedState {
	t.Helper()
	f := NewFeedState(6, nil)
	tk, err := f.Switch(refA)
	require.NoError(t, err)
	require.Equal(t, PageApplied, f.ApplyPage(tk, p, nil))
	return f
}

func TestFeed_FirstPageThenNextPageAppends(t *testing.T) {
	f := readyFeed(t, page(true, "c1", "a", "b"))
	assert.Equal(t, PhaseReady, f.Phase())
	assert.Equal(t, "c1", f.Cursor())
	assert.True(t, f.Scheduler().Attached())

	tk, ok := f.NextPage()
	require.True(t, ok)
	assert.Equal(t, "c1", tk.Cursor)
	assert.False(t, tk.First)

	_, again := f.NextPage()
	assert.False(t, again, "only one load may be in flight")

	f.ApplyPage(tk, page(false, "c2", "b", "c"), nil)
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids(f)); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, f.HasMore())
	assert.False(t, f.Scheduler().Attached(), "listener detaches after the last page")

	_, ok = f.NextPage()
	assert.False(t, ok)
}

func TestFeed_InvalidRefNeverIssuesTicket(t *testing.T) {
	f := NewFeedState(0, nil)
	_, err := f.Switch(domain.RepositoryRef{Owner: "acme"})
	require.ErrorIs(t, err, domain.ErrMissingRepository)
	assert.Equal(t, PhaseError, f.Phase())
	assert.False(t, f.Loading())

	_, ok := f.NextPage()
	assert.False(t, ok)
}

func TestFeed_StaleResponseAfterSwitchIsDropped(t *testing.T) {
	f := NewFeedState(6, nil)
	first, err := f.Switch(refA)
	require.NoError(t, err)
	second, err := f.Switch(refB)
	require.NoError(t, err)

	assert.Equal(t, PageStale, f.ApplyPage(first, page(true, "x", "a1", "a2"), nil))
	assert.Equal(t, 0, f.Len())
	assert.True(t, f.Loading())

	assert.Equal(t, PageApplied, f.ApplyPage(second, page(false, "y", "b1"), nil))
	assert.Equal(t, []string{"b1"}, ids(f))
	assert.Equal(t, refB, f.Ref())
}

func TestFeed_LateResponseForPreviousRepoAfterNewRepoApplied(t *testing.T) {
	f := NewFeedState(6, nil)
	first, err := f.Switch(refA)
	require.NoError(t, err)
	second, err := f.Switch(refB)
	require.NoError(t, err)

	require.Equal(t, PageApplied, f.ApplyPage(second, page(false, "", "b1", "b2"), nil))
	assert.Equal(t, PageStale, f.ApplyPage(first, page(true, "x", "a1"), nil))

	assert.Equal(t, []string{"b1", "b2"}, ids(f))
	assert.False(t, f.HasMore())
	assert.False(t, f.Loading())
	assert.Equal(t, refB, f.Ref())
}

func TestFeed_TransportFailureOnNextPageKeepsHasMore(t *testing.T) {
	f := readyFeed(t, page(true, "c1", "a"))
	tk, ok := f.NextPage()
	require.True(t, ok)

	out := f.ApplyPage(tk, domain.FeedPage{}, fmt.Errorf("%w: reset by peer", domain.ErrTransport))
	assert.Equal(t, PageFailed, out)
	assert.True(t, f.HasMore())
	assert.False(t, f.Loading())
	assert.Equal(t, PhaseReady, f.Phase())
	assert.Equal(t, "c1", f.Cursor())

	retry, ok := f.NextPage()
	require.True(t, ok)
	assert.Equal(t, "c1", retry.Cursor)
}

func TestFeed_NotFoundClearsFeed(t *testing.T) {
	f := NewFeedState(6, nil)
	tk, _ := f.Switch(refA)
	f.ApplyPage(tk, domain.FeedPage{}, domain.ErrRepositoryNotFound)

	assert.Equal(t, PhaseError, f.Phase())
	assert.False(t, f.HasMore())
	assert.Equal(t, 0, f.Len())
	assert.ErrorIs(t, f.Err(), domain.ErrRepositoryNotFound)
	assert.Contains(t, f.Err().Error(), "acme/feedback")
}

func TestFeed_SwitchResetsScheduler(t *testing.T) {
	f := readyFeed(t, page(true, "c1", "a"))
	tok, ok := f.Scroll()
	require.True(t, ok)

	_, err := f.Switch(refB)
	require.NoError(t, err)
	assert.False(t, f.Scheduler().Attached())
	assert.False(t, f.Scheduler().Triggered())

	_, ok = f.SettleScroll(tok, Viewport{Offset: 10, SentinelTop: 0, Height: 20})
	assert.False(t, ok, "token from the old repository must not load")
}

func TestFeed_ReidentifyRecomputesUserReacted(t *testing.T) {
	f := NewFeedState(6, nil)
	tk, _ := f.Switch(refA)
	f.ApplyPage(tk, domain.FeedPage{Nodes: []domain.Thread{thread("a", 1, "octocat"), thread("b", 0)}}, nil)

	f.Reidentify("OctoCat")
	a, _ := f.Find("a")
	assert.True(t, a.Reactions.UserReacted)

	f.Reidentify("")
	a, _ = f.Find("a")
	assert.False(t, a.Reactions.UserReacted)
}

func TestFeed_SetCommentCount(t *testing.T) {
	f := readyFeed(t, page(false, "", "a"))
	assert.True(t, f.SetCommentCount("a", 4))
	assert.False(t, f.SetCommentCount("missing", 1))
	assert.False(t, f.SetCommentCount("a", -1))
	a, _ := f.Find("a")
	assert.Equal(t, 4, a.CommentCount)
}

func TestScheduler_CoalescesBurstIntoOneLoad(t *testing.T) {
	f := readyFeed(t, page(true, "c1", "a", "b"))
	var last uint64
	for range 5 {
		tok, ok := f.Scroll()
		require.True(t, ok)
		last = tok
	}
	vp := Viewport{Offset: 12, SentinelTop: 5, Height: 20}

	_, ok := f.SettleScroll(last-1, vp)
	assert.False(t, ok, "superseded token")

	tk, ok := f.SettleScroll(last, vp)
	require.True(t, ok)
	assert.Equal(t, "c1", tk.Cursor)
	assert.True(t, f.Scheduler().Triggered())

	tok, _ := f.Scroll()
	_, ok = f.SettleScroll(tok, Viewport{Offset: 15, SentinelTop: 2, Height: 20})
	assert.False(t, ok, "triggered flag blocks a second load")

	f.ApplyPage(tk, page(true, "c2", "c"), nil)
	assert.False(t, f.Scheduler().Triggered())
}

func TestScheduler_RequiresDownwardMotionAndVisibleSentinel(t *testing.T) {
	f := readyFeed(t, page(true, "c1", "a"))

	tok, _ := f.Scroll()
	_, ok := f.SettleScroll(tok, Viewport{Offset: 5, SentinelTop: 30, Height: 20})
	assert.False(t, ok, "sentinel below the viewport")

	tok, _ = f.Scroll()
	_, ok = f.SettleScroll(tok, Viewport{Offset: 3, SentinelTop: 0, Height: 20})
	assert.False(t, ok, "upward scroll")

	tok, _ = f.Scroll()
	_, ok = f.SettleScroll(tok, Viewport{Offset: 3, SentinelTop: 0, Height: 20})
	assert.False(t, ok, "no motion")

	tok, _ = f.Scroll()
	_, ok = f.SettleScroll(tok, Viewport{Offset: 4, SentinelTop: 0, Height: 20})
	assert.True(t, ok)
}

func TestScheduler_DetachedIgnoresScroll(t *testing.T) {
	s := NewScheduler()
	_, ok := s.Observe()
	assert.False(t, ok)

	s.Sync(true, true, 0)
	assert.False(t, s.Attached(), "empty feed keeps the listener detached")
	s.Sync(true, true, 3)
	assert.True(t, s.Attached())
	s.Sync(true, false, 3)
	assert.False(t, s.Attached())
}

func TestInteractions_RollbackRestoresSnapshot(t *testing.T) {
	f := NewFeedState(6, nil)
	f.Reidentify("octocat")
	tk, _ := f.Switch(refA)
	f.ApplyPage(tk, domain.FeedPage{Nodes: []domain.Thread{thread("a", 3, "x", "y", "z")}}, nil)

	in := NewInteractions()
	ticket, out := in.Toggle(f, true, "a", true)
	require.Equal(t, ToggleApplied, out)

	a, _ := f.Find("a")
	assert.True(t, a.Reactions.UserReacted)
	assert.Equal(t, 4, a.Reactions.HeartCount)
	assert.Contains(t, a.Reactions.HeartLogins, "octocat")
	assert.True(t, in.InFlight("a"))

	_, out = in.Toggle(f, true, "a", false)
	assert.Equal(t, ToggleInFlight, out)

	res := in.Settle(f, ticket, fmt.Errorf("%w: boom", domain.ErrMutation))
	assert.Equal(t, RolledBack, res)
	a, _ = f.Find("a")
	assert.False(t, a.Reactions.UserReacted)
	assert.Equal(t, 3, a.Reactions.HeartCount)
	assert.Equal(t, []string{"x", "y", "z"}, a.Reactions.HeartLogins)
	assert.False(t, in.InFlight("a"))
}

func TestInteractions_SuccessKeepsOptimisticState(t *testing.T) {
	f := NewFeedState(6, nil)
	f.Reidentify("octocat")
	tk, _ := f.Switch(refA)
	f.ApplyPage(tk, domain.FeedPage{Nodes: []domain.Thread{thread("a", 1, "octocat")}}, nil)

	in := NewInteractions()
	ticket, out := in.Toggle(f, true, "a", false)
	require.Equal(t, ToggleApplied, out)
	assert.Equal(t, Confirmed, in.Settle(f, ticket, nil))

	a, _ := f.Find("a")
	assert.False(t, a.Reactions.UserReacted)
	assert.Equal(t, 0, a.Reactions.HeartCount)
	assert.Empty(t, a.Reactions.HeartLogins)
}

func TestInteractions_Guards(t *testing.T) {
	f := readyFeed(t, page(false, "", "a"))
	in := NewInteractions()

	_, out := in.Toggle(f, false, "a", true)
	assert.Equal(t, ToggleNeedsLogin, out)
	_, out = in.Toggle(f, true, "missing", true)
	assert.Equal(t, ToggleUnknownThread, out)
	_, out = in.Toggle(f, true, "a", false)
	assert.Equal(t, ToggleNoChange, out)
}

func TestInteractions_StaleTicketDiscarded(t *testing.T) {
	f := readyFeed(t, page(false, "", "a"))
	in := NewInteractions()
	ticket, out := in.Toggle(f, true, "a", true)
	require.Equal(t, ToggleApplied, out)

	tk, _ := f.Switch(refB)
	f.ApplyPage(tk, page(false, "", "a"), nil)

	assert.Equal(t, Discarded, in.Settle(f, ticket, errors.New("late failure")))
	a, _ := f.Find("a")
	assert.Equal(t, 0, a.Reactions.HeartCount)
	assert.False(t, in.InFlight("a"))
}

func TestInteractions_LateSettleKeepsNewerGuard(t *testing.T) {
	f := readyFeed(t, page(false, "", "a"))
	in := NewInteractions()
	old, out := in.Toggle(f, true, "a", true)
	require.Equal(t, ToggleApplied, out)

	// Refreshing the same repository resets guards and starts a new epoch.
	in.Reset()
	tk, err := f.Switch(refA)
	require.NoError(t, err)
	f.ApplyPage(tk, page(false, "", "a"), nil)

	current, out := in.Toggle(f, true, "a", true)
	require.Equal(t, ToggleApplied, out)

	assert.Equal(t, Discarded, in.Settle(f, old, errors.New("late failure")))
	assert.True(t, in.InFlight("a"), "a superseded response must not release the current guard")
	_, out = in.Toggle(f, true, "a", false)
	assert.Equal(t, ToggleInFlight, out)

	assert.Equal(t, Confirmed, in.Settle(f, current, nil))
	assert.False(t, in.InFlight("a"))
}

func TestSnapshot_Restore(t *testing.T) {
	var target int
	s := Take(7, func(v int) bool { target = v; return true })
	assert.Equal(t, 7, s.Value())
	assert.True(t, s.Restore())
	assert.Equal(t, 7, target)
	assert.False(t, Snapshot[int]{}.Restore())
}

type fakeThreads struct {
	app.ThreadService
	calls []app.ThreadQuery
	page  domain.FeedPage
	err   error
}

func (f *fakeThreads) ListThreads(_ context.Context, q app.ThreadQuery) (domain.FeedPage, error) {
	f.calls = append(f.calls, q)
	return f.page, f.err
}

func TestController_InvalidRefSkipsNetwork(t *testing.T) {
	svc := &fakeThreads{}
	c := NewController(svc, true)
	_, err := c.ResetAndLoadFirstPage(context.Background(), domain.RepositoryRef{}, 6)
	require.ErrorIs(t, err, domain.ErrMissingRepository)
	assert.Empty(t, svc.calls)
}

func TestController_FetchPassesQuery(t *testing.T) {
	svc := &fakeThreads{page: page(true, "c2", "a")}
	c := NewController(svc, true)
	got, err := c.Fetch(context.Background(), Ticket{Ref: refA, Cursor: "c1", PageSize: 6})
	require.NoError(t, err)
	assert.Equal(t, "c2", got.EndCursor)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, app.ThreadQuery{Ref: refA, Cursor: "c1", PageSize: 6, FilterByAuthor: true}, svc.calls[0])

	_, err = c.Fetch(context.Background(), Ticket{Ref: refA, Cursor: "ignored", PageSize: 6, First: true})
	require.NoError(t, err)
	assert.Equal(t, "", svc.calls[1].Cursor)
}

func TestController_ErrorClassification(t *testing.T) {
	svc := &fakeThreads{err: errors.New("dial tcp: refused")}
	c := NewController(svc, false)
	_, err := c.LoadNextPage(context.Background(), refA, "", 6)
	assert.ErrorIs(t, err, domain.ErrTransport)

	svc.err = fmt.Errorf("acme/nope: %w", domain.ErrRepositoryNotFound)
	_, err = c.LoadNextPage(context.Background(), refA, "", 6)
	assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
	assert.NotErrorIs(t, err, domain.ErrTransport)

	svc.err = nil
	svc.page = domain.FeedPage{Nodes: []domain.Thread{{Title: "no id"}}}
	_, err = c.LoadNextPage(context.Background(), refA, "", 6)
	assert.ErrorIs(t, err, domain.ErrTransport)
}
