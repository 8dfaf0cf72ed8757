// Package engine holds the feed's synchronization state machines: cursor
// pagination, repository switching, scroll-triggered loading and optimistic
// reactions. It has no I/O of its own; callers run fetches and feed the
// results back, which keeps every decision on a single goroutine.
package engine

import (
	"errors"
	"fmt"

	"github.com/CrestNiraj12/issuefeed/domain"
)

// Phase is the Repository Switch Coordinator's state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Ticket identifies one page request. Responses are applied only while the
// ticket's epoch is still current.
type Ticket struct {
	Epoch    uint64
	Ref      domain.RepositoryRef
	Cursor   string
	PageSize int
	First    bool
}

// PageOutcome reports what ApplyPage did with a response.
type PageOutcome int

const (
	PageApplied PageOutcome = iota
	PageStale
	PageFailed
)

// FeedState is the accumulated thread list for the selected repository.
// Only FeedState methods change the list shape; Interactions touches
// reaction fields through setReactions.
type FeedState struct {
	ref      domain.RepositoryRef
	epoch    uint64
	phase    Phase
	err      error
	records  []domain.Thread
	index    map[string]int
	cursor   string
	hasMore  bool
	loading  bool
	pageSize int
	login    string
	sched    *Scheduler
}

// NewFeedState creates an empty feed. A nil scheduler gets a default one.
func NewFeedState(pageSize int, sched *Scheduler) *FeedState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if sched == nil {
		sched = NewScheduler()
	}
	return &FeedState{
		index:    make(map[string]int),
		hasMore:  true,
		pageSize: pageSize,
		sched:    sched,
	}
}

// DefaultPageSize matches the web client's page size.
const DefaultPageSize = 6

// Switch tears down the current feed and returns the first-page ticket for
// ref. An invalid ref moves the feed to PhaseError without a ticket.
func (f *FeedState) Switch(ref domain.RepositoryRef) (Ticket, error) {
	f.sched.Detach()
	f.epoch++
	f.ref = ref
	f.records = nil
	f.index = make(map[string]int)
	f.cursor = ""
	f.sched.Release()
	f.sched.Reset(0)

	if !ref.Valid() {
		f.hasMore = false
		f.loading = false
		f.phase = PhaseError
		f.err = domain.ErrMissingRepository
		return Ticket{}, f.err
	}

	f.hasMore = true
	f.loading = true
	f.phase = PhaseLoading
	f.err = nil
	return Ticket{Epoch: f.epoch, Ref: ref, PageSize: f.pageSize, First: true}, nil
}

// NextPage admits one incremental load. It refuses while a load is in
// flight, after the last page, or outside PhaseReady.
func (f *FeedState) NextPage() (Ticket, bool) {
	if f.phase != PhaseReady || f.loading || !f.hasMore || !f.ref.Valid() {
		return Ticket{}, false
	}
	f.loading = true
	return Ticket{Epoch: f.epoch, Ref: f.ref, Cursor: f.cursor, PageSize: f.pageSize}, true
}

// ApplyPage folds a page response into the feed. Responses for a superseded
// epoch are dropped untouched.
func (f *FeedState) ApplyPage(t Ticket, page domain.FeedPage, err error) PageOutcome {
	if t.Epoch != f.epoch {
		return PageStale
	}
	f.loading = false
	f.sched.Release()
	defer f.syncScheduler()

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRepositoryNotFound):
			f.records = nil
			f.index = make(map[string]int)
			f.cursor = ""
			f.hasMore = false
			f.phase = PhaseError
			f.err = fmt.Errorf("repository %s: %w", t.Ref, domain.ErrRepositoryNotFound)
		case errors.Is(err, domain.ErrMissingRepository):
			f.hasMore = false
			f.phase = PhaseError
			f.err = err
		default:
			// hasMore is kept so a later scroll can retry.
			f.err = err
			if t.First {
				f.phase = PhaseError
			}
		}
		return PageFailed
	}

	if t.First {
		f.records = make([]domain.Thread, 0, len(page.Nodes))
		f.index = make(map[string]int, len(page.Nodes))
	}
	for _, n := range page.Nodes {
		if _, dup := f.index[n.ID]; dup {
			continue
		}
		n.Reactions.UserReacted = n.Reactions.ReactedBy(f.login)
		f.index[n.ID] = len(f.records)
		f.records = append(f.records, n)
	}
	f.cursor = page.EndCursor
	f.hasMore = page.HasNextPage
	f.phase = PhaseReady
	f.err = nil
	return PageApplied
}

func (f *FeedState) syncScheduler() {
	f.sched.Sync(f.phase == PhaseReady, f.hasMore, len(f.records))
}

// Scroll records a raw scroll event and returns the debounce token the
// caller must hand back to SettleScroll once the quiescence window elapses.
func (f *FeedState) Scroll() (uint64, bool) {
	return f.sched.Observe()
}

// SettleScroll evaluates a debounced scroll. When the scheduler admits the
// load it returns the next-page ticket.
func (f *FeedState) SettleScroll(token uint64, vp Viewport) (Ticket, bool) {
	if !f.sched.Settle(token, vp, f) {
		return Ticket{}, false
	}
	t, ok := f.NextPage()
	if !ok {
		f.sched.Release()
	}
	return t, ok
}

// Teardown detaches the scroll listener and cancels any pending debounce.
func (f *FeedState) Teardown() {
	f.sched.Detach()
}

// SetCommentCount mirrors a count reported by the comment subsystem.
func (f *FeedState) SetCommentCount(threadID string, count int) bool {
	i, ok := f.index[threadID]
	if !ok || count < 0 {
		return false
	}
	f.records[i].CommentCount = count
	return true
}

// Reidentify recomputes UserReacted for every record after login or logout.
func (f *FeedState) Reidentify(login string) {
	f.login = login
	for i := range f.records {
		f.records[i].Reactions.UserReacted = f.records[i].Reactions.ReactedBy(login)
	}
}

func (f *FeedState) setReactions(threadID string, r domain.Reactions) bool {
	i, ok := f.index[threadID]
	if !ok {
		return false
	}
	f.records[i].Reactions = r
	return true
}

// Find returns the record with the given node id.
func (f *FeedState) Find(threadID string) (domain.Thread, bool) {
	i, ok := f.index[threadID]
	if !ok {
		return domain.Thread{}, false
	}
	return f.records[i], true
}

// Records returns the accumulated threads in fetch order. Callers must not
// modify the returned slice.
func (f *FeedState) Records() []domain.Thread { return f.records }

func (f *FeedState) Len() int                  { return len(f.records) }
func (f *FeedState) Cursor() string            { return f.cursor }
func (f *FeedState) HasMore() bool             { return f.hasMore }
func (f *FeedState) Loading() bool             { return f.loading }
func (f *FeedState) Phase() Phase              { return f.phase }
func (f *FeedState) Err() error                { return f.err }
func (f *FeedState) Ref() domain.RepositoryRef { return f.ref }
func (f *FeedState) Epoch() uint64             { return f.epoch }
func (f *FeedState) Login() string             { return f.login }
func (f *FeedState) Scheduler() *Scheduler     { return f.sched }
