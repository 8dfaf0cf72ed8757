package engine

import "strings"

// Snapshot captures a value so an optimistic change can be undone.
type Snapshot[T any] struct {
	value   T
	restore func(T) bool
}

// Take records value and the function that writes it back.
func Take[T any](value T, restore func(T) bool) Snapshot[T] {
	return Snapshot[T]{value: value, restore: restore}
}

func (s Snapshot[T]) Value() T { return s.value }

// Restore writes the captured value back. It reports false when the target
// no longer exists.
func (s Snapshot[T]) Restore() bool {
	if s.restore == nil {
		return false
	}
	return s.restore(s.value)
}

// ToggleOutcome reports what Toggle did.
type ToggleOutcome int

const (
	ToggleApplied ToggleOutcome = iota
	ToggleInFlight
	ToggleNeedsLogin
	ToggleUnknownThread
	ToggleNoChange
)

// SettleResult reports what Settle did with a mutation response.
type SettleResult int

const (
	Confirmed SettleResult = iota
	RolledBack
	Discarded
)

func (r SettleResult) String() string {
	switch r {
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled back"
	default:
		return "discarded"
	}
}

// ReactionTicket describes one in-flight heart mutation.
type ReactionTicket struct {
	Epoch    uint64
	ThreadID string
	Add      bool

	snapshot Snapshot[reactionsValue]
}

type reactionsValue struct {
	userReacted bool
	heartCount  int
	total       int
	logins      []string
}

// Interactions tracks optimistic heart toggles. At most one mutation per
// thread is in flight. Each guard remembers the feed epoch it was taken in.
type Interactions struct {
	inFlight map[string]uint64
}

func NewInteractions() *Interactions {
	return &Interactions{inFlight: make(map[string]uint64)}
}

// InFlight reports whether a mutation for threadID is pending.
func (in *Interactions) InFlight(threadID string) bool {
	_, ok := in.inFlight[threadID]
	return ok
}

// Toggle applies the heart change to the feed immediately and returns the
// ticket the caller settles once the mutation resolves.
func (in *Interactions) Toggle(f *FeedState, authenticated bool, threadID string, target bool) (ReactionTicket, ToggleOutcome) {
	if !authenticated {
		return ReactionTicket{}, ToggleNeedsLogin
	}
	if in.InFlight(threadID) {
		return ReactionTicket{}, ToggleInFlight
	}
	t, ok := f.Find(threadID)
	if !ok {
		return ReactionTicket{}, ToggleUnknownThread
	}
	r := t.Reactions
	if r.UserReacted == target {
		return ReactionTicket{}, ToggleNoChange
	}

	prev := reactionsValue{
		userReacted: r.UserReacted,
		heartCount:  r.HeartCount,
		total:       r.TotalCount,
		logins:      append([]string(nil), r.HeartLogins...),
	}
	epoch := f.Epoch()
	snap := Take(prev, func(v reactionsValue) bool {
		if f.Epoch() != epoch {
			return false
		}
		cur, ok := f.Find(threadID)
		if !ok {
			return false
		}
		cur.Reactions.UserReacted = v.userReacted
		cur.Reactions.HeartCount = v.heartCount
		cur.Reactions.TotalCount = v.total
		cur.Reactions.HeartLogins = v.logins
		return f.setReactions(threadID, cur.Reactions)
	})

	next := r
	next.UserReacted = target
	next.HeartLogins = append([]string(nil), r.HeartLogins...)
	if target {
		next.HeartCount++
		next.TotalCount++
		if f.Login() != "" {
			next.HeartLogins = append(next.HeartLogins, f.Login())
		}
	} else {
		next.HeartCount = max(next.HeartCount-1, 0)
		next.TotalCount = max(next.TotalCount-1, 0)
		next.HeartLogins = removeLogin(next.HeartLogins, f.Login())
	}
	f.setReactions(threadID, next)
	in.inFlight[threadID] = epoch

	return ReactionTicket{Epoch: epoch, ThreadID: threadID, Add: target, snapshot: snap}, ToggleApplied
}

// Settle resolves a mutation. A failure restores the snapshot; tickets whose
// epoch was superseded or whose thread vanished are discarded.
func (in *Interactions) Settle(f *FeedState, t ReactionTicket, err error) SettleResult {
	if owner, ok := in.inFlight[t.ThreadID]; ok && owner == t.Epoch {
		delete(in.inFlight, t.ThreadID)
	}
	if t.Epoch != f.Epoch() {
		return Discarded
	}
	if _, ok := f.Find(t.ThreadID); !ok {
		return Discarded
	}
	if err == nil {
		return Confirmed
	}
	if !t.snapshot.Restore() {
		return Discarded
	}
	return RolledBack
}

// Reset drops all in-flight guards, used when the feed switches repository.
func (in *Interactions) Reset() {
	clear(in.inFlight)
}

func removeLogin(logins []string, login string) []string {
	if login == "" {
		return logins
	}
	out := logins[:0]
	for _, l := range logins {
		if !strings.EqualFold(l, login) {
			out = append(out, l)
		}
	}
	return out
}
