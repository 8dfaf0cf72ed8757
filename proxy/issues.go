package proxy

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

var defaultLabel = exportLabel{Name: "default", Color: "1da1f2"}

type exportAuthor struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
	URL       string `json:"url"`
}

type exportReactions struct {
	TotalCount  int  `json:"totalCount"`
	UserReacted bool `json:"userReacted"`
	HeartCount  int  `json:"heartCount"`
}

type exportLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type exportIssue struct {
	ID        string          `json:"id"`
	Number    int             `json:"number"`
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"createdAt"`
	Author    exportAuthor    `json:"author"`
	Reactions exportReactions `json:"reactions"`
	Comments  int             `json:"comments"`
	Label     exportLabel     `json:"label"`
	URL       string          `json:"url"`
}

type exportPage struct {
	Repository  string        `json:"repository"`
	ExportedAt  string        `json:"exportedAt"`
	TotalIssues int           `json:"totalIssues"`
	HasMore     bool          `json:"hasMore"`
	CurrentPage int           `json:"currentPage"`
	PerPage     int           `json:"perPage"`
	Issues      []exportIssue `json:"issues"`
}

func (s *Server) listIssues(c echo.Context) error {
	wantJSON := c.QueryParam("format") == "json" || strings.HasSuffix(c.Path(), ".json")
	if !wantJSON {
		return c.JSON(http.StatusOK, documentation(c.Scheme()+"://"+c.Request().Host))
	}

	ref := domain.RepositoryRef{Owner: c.QueryParam("owner"), Repo: c.QueryParam("repo")}
	if ref.Owner == "" || ref.Repo == "" {
		return c.JSON(http.StatusOK, usage())
	}
	perPage := clampInt(c.QueryParam("perPage"), defaultPerPage, 1, maxPerPage)
	page := clampInt(c.QueryParam("page"), 1, 1, 1<<20)

	out, err := s.exportPage(c, ref, perPage, page)
	if err != nil {
		s.log.Warn().Err(err).Str("repo", ref.String()).Int("page", page).Msg("export failed")
		return s.failure(c, "Failed to fetch issues", err)
	}
	return c.JSON(http.StatusOK, out)
}

// exportPage walks cursors forward to the requested page.
func (s *Server) exportPage(c echo.Context, ref domain.RepositoryRef, perPage, page int) (exportPage, error) {
	ctx := c.Request().Context()
	out := exportPage{
		Repository:  ref.String(),
		CurrentPage: page,
		PerPage:     perPage,
		Issues:      []exportIssue{},
	}

	cursor := ""
	for p := 1; ; p++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return exportPage{}, err
		}
		fp, err := s.issues.ListThreads(ctx, app.ThreadQuery{Ref: ref, Cursor: cursor, PageSize: perPage})
		if err != nil {
			return exportPage{}, err
		}
		out.TotalIssues = fp.TotalCount
		if p == page {
			out.HasMore = fp.HasNextPage
			for _, t := range fp.Nodes {
				out.Issues = append(out.Issues, toExport(t))
			}
			break
		}
		if !fp.HasNextPage {
			break
		}
		cursor = fp.EndCursor
	}
	out.ExportedAt = s.now().UTC().Format(time.RFC3339)
	return out, nil
}

func toExport(t domain.Thread) exportIssue {
	label := defaultLabel
	if t.Label != nil {
		label = exportLabel{Name: t.Label.Name, Color: t.Label.Color}
	}
	return exportIssue{
		ID:        t.ID,
		Number:    t.Number,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		Author:    exportAuthor{Login: t.Author.Login, AvatarURL: t.Author.AvatarURL, URL: t.Author.URL},
		Reactions: exportReactions{
			TotalCount: t.Reactions.TotalCount,
			// No viewer on the proxy; "reacted" means anyone left a heart.
			UserReacted: t.Reactions.HeartCount > 0,
			HeartCount:  t.Reactions.HeartCount,
		},
		Comments: t.CommentCount,
		Label:    label,
		URL:      t.URL,
	}
}

func clampInt(raw string, def, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return min(max(n, lo), hi)
}

func (s *Server) failure(c echo.Context, summary string, err error) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error":     summary,
		"message":   err.Error(),
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func usage() map[string]any {
	return map[string]any{
		"usage":   "GitHub Issues API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"getIssues":          "/api/issues.json?format=json&owner=owner&repo=repo",
			"getIssuesPaginated": "/api/issues.json?format=json&owner=owner&repo=repo&page=1&perPage=20",
		},
		"parameters": map[string]string{
			"owner":   "repository owner (required)",
			"repo":    "repository name (required)",
			"perPage": "issues per page (default 20, max 100)",
			"page":    "page number (default 1)",
		},
	}
}

func documentation(origin string) map[string]any {
	return map[string]any{
		"name":    domain.AppTitle + " Issues API",
		"version": "1.0.0",
		"endpoints": map[string]any{
			"getIssues": map[string]any{
				"path":       "/api/issues.json",
				"method":     http.MethodGet,
				"parameters": []string{"format", "owner", "repo", "perPage", "page"},
			},
			"exchangeToken": map[string]any{
				"path":   "/oauth/access_token",
				"method": http.MethodPost,
				"body":   []string{"client_id", "client_secret", "code"},
			},
		},
		"example": "curl \"" + origin + "/api/issues.json?owner=facebook&repo=react&page=2&perPage=10\"",
	}
}
