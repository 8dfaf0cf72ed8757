package engine

import "time"

// DefaultQuiescence is how long scroll events must pause before a load
// decision is evaluated.
const DefaultQuiescence = 200 * time.Millisecond

// Viewport is the scroll geometry sampled when a debounce window closes.
type Viewport struct {
	// Offset is the scroll position of the viewport's top edge, in lines.
	Offset int
	// SentinelTop is the top of the last rendered record relative to the
	// viewport's top edge. It is visible when smaller than Height.
	SentinelTop int
	Height      int
}

type loadState interface {
	Loading() bool
	HasMore() bool
	Len() int
}

// Scheduler decides when scrolling should pull the next page.
//
// Raw scroll events only bump a token; the caller arms a timer per event and
// hands the token back after the quiescence window. Only the newest token is
// evaluated, which coalesces bursts into a single decision.
type Scheduler struct {
	Quiescence time.Duration

	attached   bool
	triggered  bool
	armed      bool
	token      uint64
	lastOffset int
}

// NewScheduler returns a detached scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{Quiescence: DefaultQuiescence}
}

// Observe records a raw scroll event. It returns false while detached.
func (s *Scheduler) Observe() (uint64, bool) {
	if !s.attached {
		return 0, false
	}
	s.token++
	s.armed = true
	return s.token, true
}

// Settle evaluates the scroll once the window for token has elapsed and
// reports whether a load should start. A true result sets the triggered flag.
func (s *Scheduler) Settle(token uint64, vp Viewport, feed loadState) bool {
	if !s.attached || !s.armed || token != s.token {
		return false
	}
	s.armed = false

	down := vp.Offset > s.lastOffset
	s.lastOffset = vp.Offset
	switch {
	case !down:
		return false
	case feed.Loading(), s.triggered, !feed.HasMore():
		return false
	case feed.Len() == 0:
		return false
	case vp.SentinelTop >= vp.Height:
		return false
	}
	s.triggered = true
	return true
}

// Sync attaches the listener when the feed is initialized, has more pages
// and has at least one record, and detaches it otherwise.
func (s *Scheduler) Sync(initialized, hasMore bool, count int) {
	want := initialized && hasMore && count > 0
	switch {
	case want && !s.attached:
		s.attached = true
	case !want && s.attached:
		s.Detach()
	}
}

// Detach stops listening and invalidates any pending debounce token.
func (s *Scheduler) Detach() {
	s.attached = false
	s.armed = false
	s.token++
}

// Release clears the triggered flag once a load resolves.
func (s *Scheduler) Release() { s.triggered = false }

// Reset sets the baseline used to tell downward from upward motion.
func (s *Scheduler) Reset(offset int) { s.lastOffset = offset }

func (s *Scheduler) Attached() bool  { return s.attached }
func (s *Scheduler) Triggered() bool { return s.triggered }
func (s *Scheduler) Pending() bool   { return s.armed }
