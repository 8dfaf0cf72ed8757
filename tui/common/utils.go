package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// CommentCountChangedMsg reports a thread's new comment total to the feed.
type CommentCountChangedMsg struct {
	ThreadID string
	Count    int
}

// RelativeTime renders t relative to now the way social feeds do:
// "now", "5m", "3h", then "Jan 02" within the year and "Jan 02 2006" before.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 2006")
	}
}

// ClampLines cuts every line of text to width cells, keeping ANSI styling intact.
func ClampLines(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		if ansi.StringWidth(ln) > width {
			lines[i] = ansi.Truncate(ln, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}
