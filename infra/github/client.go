// Package github talks to the GitHub GraphQL API on behalf of the feed.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/CrestNiraj12/issuefeed/domain"
)

// DefaultEndpoint is the public GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// Client wraps a githubv4 client.
type Client struct {
	gql *githubv4.Client
	log zerolog.Logger
}

// NewHTTPClient returns an HTTP client that authenticates every request with
// a token from ts.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, ts)
}

// NewClient creates a GraphQL client posting to endpoint.
func NewClient(httpClient *http.Client, endpoint string, log zerolog.Logger) *Client {
	var gql *githubv4.Client
	if endpoint == "" || endpoint == DefaultEndpoint {
		gql = githubv4.NewClient(httpClient)
	} else {
		gql = githubv4.NewEnterpriseClient(endpoint, httpClient)
	}
	return &Client{gql: gql, log: log}
}

func (c *Client) query(ctx context.Context, q any, vars map[string]any) error {
	return c.gql.Query(ctx, q, vars)
}

func (c *Client) mutate(ctx context.Context, m any, input githubv4.Input) error {
	return c.gql.Mutate(ctx, m, input, nil)
}

// classify maps a query error onto the domain taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case strings.Contains(err.Error(), "Could not resolve to a Repository"):
		return fmt.Errorf("%w: %w", domain.ErrRepositoryNotFound, err)
	case errors.Is(err, domain.ErrUnauthorized), strings.Contains(err.Error(), "401 Unauthorized"):
		return fmt.Errorf("%w: %w: %w", domain.ErrTransport, domain.ErrUnauthorized, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
}

var crRe = regexp.MustCompile(`\r\n?`)

// sanitize removes terminal control sequences from user-authored text.
func sanitize(s string) string {
	s = crRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(ansi.Strip(s))
}

type actor struct {
	Login     string
	AvatarURL string `graphql:"avatarUrl"`
	URL       string
}

func (a actor) toDomain() domain.Author {
	if a.Login == "" {
		return domain.Author{Login: "ghost"}
	}
	return domain.Author{Login: a.Login, AvatarURL: a.AvatarURL, URL: a.URL}
}

func idString(id githubv4.ID) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}
