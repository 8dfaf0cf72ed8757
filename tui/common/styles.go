package common

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// AppTitleStyle styles the application title. Rendered at call site with content.
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1DA1F2")).
			Padding(1, 0, 0, 1)

	// RepoStyle styles the owner/repo badge next to the title.
	RepoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95")).
			Bold(true)

	// TaglineStyle styles dimmed header text.
	TaglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Italic(true).
			MarginLeft(1)

	AuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7DC4E4"))

	TimestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// TitleStyle styles the thread title block under the author line.
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B8C0E0")).
			Bold(true)

	ContentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	MetadataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// HeartActiveStyle marks a heart the current user left.
	HeartActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F91880")).
				Bold(true)

	CommentActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1D9BF0"))

	// SelectedStyle highlights the focused card.
	SelectedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1DA1F2")).
			Padding(0, 1)

	// UnselectedStyle gives other cards a subtle border.
	UnselectedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Padding(1, 0, 0, 0)

	PendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EED49F")).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95")).
			Bold(true)

	// InputStyle frames the repository and comment inputs.
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#1DA1F2")).
			Padding(0, 1)
)

// LabelStyle renders a label chip on the label's own background color.
// Colors arrive as bare hex ("1da1f2"); anything else falls back to grey.
func LabelStyle(color string) lipgloss.Style {
	color = strings.TrimPrefix(strings.TrimSpace(color), "#")
	if !isHex(color) {
		color = "45475a"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(contrastText(color))).
		Background(lipgloss.Color("#" + color)).
		Padding(0, 1)
}

func isHex(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// contrastText picks black or white text using the YIQ brightness of the background.
func contrastText(hex string) string {
	v := func(i int) int {
		var n int
		for _, r := range strings.ToLower(hex[i : i+2]) {
			n <<= 4
			if r >= 'a' {
				n += int(r-'a') + 10
			} else {
				n += int(r - '0')
			}
		}
		return n
	}
	yiq := (v(0)*299 + v(2)*587 + v(4)*114) / 1000
	if yiq >= 128 {
		return "#000000"
	}
	return "#FFFFFF"
}
