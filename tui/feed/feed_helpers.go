package feed

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/issuefeed/engine"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	minCardWidth   = 40
)

type feedItemSpan struct {
	idx    int
	top    int
	bottom int
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func (m Model) termSize() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = fallbackWidth
	}
	if h <= 0 {
		h = fallbackHeight
	}
	return w, h
}

func (m Model) feedCardWidth() int {
	w, _ := m.termSize()
	return max(w-4, minCardWidth)
}

func (m Model) feedViewportHeight() int {
	_, h := m.termSize()
	return max(h-m.feedChromeLines(), 4)
}

// feedChromeLines counts everything View draws around the card list. The
// loader/notice row and the status row are always reserved so the viewport
// height does not drift while pages load.
func (m Model) feedChromeLines() int {
	top := lineCount(m.renderHeader()) + 1
	if m.inputActive {
		top += lineCount(m.renderRepoInput())
	}
	bottom := 1 + 1 + 1 // spacer, loader/notice, status
	bottom += lineCount(m.helpView())
	return top + bottom
}

// feedSpans lays every record out as it is rendered, one blank line apart.
func (m Model) feedSpans() []feedItemSpan {
	records := m.feed.Records()
	if len(records) == 0 {
		return nil
	}
	cardWidth := m.feedCardWidth()
	spans := make([]feedItemSpan, 0, len(records))
	line := 0
	for i, t := range records {
		h := lipgloss.Height(m.renderCard(t, i == m.cursor, cardWidth))
		spans = append(spans, feedItemSpan{idx: i, top: line, bottom: line + h - 1})
		line += h + 1
	}
	return spans
}

func (m *Model) ensureFeedCursorVisible() {
	spans := m.feedSpans()
	if len(spans) == 0 {
		m.cursor = 0
		m.scrollLine = 0
		return
	}
	m.cursor = min(max(m.cursor, 0), len(spans)-1)

	viewHeight := m.feedViewportHeight()
	totalLines := spans[len(spans)-1].bottom + 1
	maxScroll := max(totalLines-viewHeight, 0)
	sel := spans[m.cursor]

	switch {
	case sel.top < m.scrollLine:
		m.scrollLine = sel.top
	case sel.bottom >= m.scrollLine+viewHeight:
		// Cards taller than the viewport are aligned to their top.
		m.scrollLine = min(sel.top, sel.bottom-viewHeight+1)
	}
	m.scrollLine = min(max(m.scrollLine, 0), maxScroll)
}

// viewport samples the geometry the scroll scheduler evaluates. Offset is the
// focused card's top line plus any presses past the last card, so moving the
// focus down, or pushing against the end of the feed, counts as scrolling down
// even when every card already fits on screen.
func (m Model) viewport() engine.Viewport {
	vp := engine.Viewport{Height: m.feedViewportHeight()}
	spans := m.feedSpans()
	if len(spans) == 0 {
		vp.SentinelTop = vp.Height
		return vp
	}
	pos := min(max(m.cursor, 0), len(spans)-1)
	vp.Offset = spans[pos].top + m.overscroll
	vp.SentinelTop = spans[len(spans)-1].top - m.scrollLine
	return vp
}

func (m *Model) setCursorByID(id string) {
	for i, t := range m.feed.Records() {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}
