package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// AppTitle is the display name used in the terminal header and callback pages.
const AppTitle = "IssueFeed"

// HeartReaction is the only reaction kind the feed toggles.
const HeartReaction = "HEART"

var refPartRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// RepositoryRef identifies the repository whose issues make up the feed.
// The zero value means "not configured" and suppresses all fetching.
type RepositoryRef struct {
	Owner string
	Repo  string
}

// ParseRepositoryRef parses "owner/repo". Surrounding whitespace and a
// trailing ".git" or "/" are tolerated.
func ParseRepositoryRef(s string) (RepositoryRef, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")
	owner, repo, ok := strings.Cut(s, "/")
	ref := RepositoryRef{Owner: strings.TrimSpace(owner), Repo: strings.TrimSpace(repo)}
	if !ok || !ref.Valid() {
		return RepositoryRef{}, fmt.Errorf("%w: %q is not owner/repo", ErrMissingRepository, s)
	}
	return ref, nil
}

// Valid reports whether both parts are present and URL-safe.
func (r RepositoryRef) Valid() bool {
	return refPartRe.MatchString(r.Owner) && refPartRe.MatchString(r.Repo)
}

// IsZero reports whether the ref is the unconfigured zero value.
func (r RepositoryRef) IsZero() bool {
	return r.Owner == "" && r.Repo == ""
}

func (r RepositoryRef) String() string {
	if r.IsZero() {
		return ""
	}
	return r.Owner + "/" + r.Repo
}

// Author is the identity that opened a thread or wrote a comment.
type Author struct {
	Login     string
	AvatarURL string
	URL       string
}

// Reactions aggregates the reactions on a thread.
type Reactions struct {
	TotalCount  int
	UserReacted bool
	HeartCount  int
	HeartLogins []string // logins behind HeartCount, used to recompute UserReacted
}

// ReactedBy reports whether login left a heart.
func (r Reactions) ReactedBy(login string) bool {
	if login == "" {
		return false
	}
	for _, l := range r.HeartLogins {
		if strings.EqualFold(l, login) {
			return true
		}
	}
	return false
}

// Label is the single display label shown next to a thread.
type Label struct {
	Name  string
	Color string
}

// Thread is one issue rendered as a feed post.
type Thread struct {
	ID           string // GraphQL node id
	Number       int
	Title        string
	Author       Author
	CreatedAt    time.Time
	BodyHTML     string
	Body         string // plain text, HTML stripped
	Reactions    Reactions
	CommentCount int
	Label        *Label
	URL          string
}

// FeedPage is one page of threads as returned by the remote API.
// An empty EndCursor stands for a null cursor.
type FeedPage struct {
	HasNextPage bool
	EndCursor   string
	TotalCount  int
	Nodes       []Thread
}

// Identity is the authenticated GitHub user.
type Identity struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}

// Comment is one reply on a thread.
type Comment struct {
	ID        string
	Author    Author
	Body      string
	BodyHTML  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
