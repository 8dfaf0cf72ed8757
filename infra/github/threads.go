package github

import (
	"context"
	"fmt"
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
)

// threadService implements app.ThreadService over GraphQL.
type threadService struct {
	c *Client
}

func NewThreadService(c *Client) *threadService {
	return &threadService{c: c}
}

type issueNode struct {
	ID        githubv4.ID
	Number    int
	Title     string
	URL       string
	CreatedAt time.Time
	Body      string
	BodyHTML  string `graphql:"bodyHTML"`
	Author    actor
	Reactions struct {
		TotalCount int
		Nodes      []struct {
			Content githubv4.ReactionContent
			User    struct {
				Login string
			}
		}
	} `graphql:"reactions(first: 100)"`
	Comments struct {
		TotalCount int
	}
	Labels struct {
		Nodes []struct {
			Name  string
			Color string
		}
	} `graphql:"labels(first: 1)"`
}

type issuesQuery struct {
	Repository *struct {
		Issues struct {
			TotalCount int
			PageInfo   struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []issueNode
		} `graphql:"issues(first: $first, after: $cursor, orderBy: $orderBy, filterBy: $filterBy)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func (s *threadService) ListThreads(ctx context.Context, q app.ThreadQuery) (domain.FeedPage, error) {
	if !q.Ref.Valid() {
		return domain.FeedPage{}, domain.ErrMissingRepository
	}
	first := q.PageSize
	if first <= 0 || first > 100 {
		first = 6
	}
	var cursor *githubv4.String
	if q.Cursor != "" {
		cursor = githubv4.NewString(githubv4.String(q.Cursor))
	}
	filter := githubv4.IssueFilters{
		States: &[]githubv4.IssueState{githubv4.IssueStateOpen},
	}
	if q.FilterByAuthor {
		filter.CreatedBy = githubv4.NewString(githubv4.String(q.Ref.Owner))
	}
	vars := map[string]any{
		"owner":  githubv4.String(q.Ref.Owner),
		"name":   githubv4.String(q.Ref.Repo),
		"first":  githubv4.Int(first),
		"cursor": cursor,
		"orderBy": githubv4.IssueOrder{
			Field:     githubv4.IssueOrderFieldCreatedAt,
			Direction: githubv4.OrderDirectionDesc,
		},
		"filterBy": filter,
	}

	var res issuesQuery
	if err := s.c.query(ctx, &res, vars); err != nil {
		s.c.log.Warn().Err(err).Str("repo", q.Ref.String()).Msg("listing threads failed")
		return domain.FeedPage{}, classify(err)
	}
	if res.Repository == nil {
		return domain.FeedPage{}, fmt.Errorf("%s: %w", q.Ref, domain.ErrRepositoryNotFound)
	}

	issues := res.Repository.Issues
	page := domain.FeedPage{
		HasNextPage: issues.PageInfo.HasNextPage,
		EndCursor:   string(issues.PageInfo.EndCursor),
		TotalCount:  issues.TotalCount,
		Nodes:       make([]domain.Thread, 0, len(issues.Nodes)),
	}
	for _, n := range issues.Nodes {
		page.Nodes = append(page.Nodes, n.toDomain())
	}
	s.c.log.Debug().
		Str("repo", q.Ref.String()).
		Int("count", len(page.Nodes)).
		Bool("has_next", page.HasNextPage).
		Msg("listed threads")
	return page, nil
}

func (n issueNode) toDomain() domain.Thread {
	t := domain.Thread{
		ID:           idString(n.ID),
		Number:       n.Number,
		Title:        sanitize(n.Title),
		Author:       n.Author.toDomain(),
		CreatedAt:    n.CreatedAt,
		BodyHTML:     n.BodyHTML,
		Body:         sanitize(n.Body),
		CommentCount: n.Comments.TotalCount,
		URL:          n.URL,
		Reactions:    domain.Reactions{TotalCount: n.Reactions.TotalCount},
	}
	for _, r := range n.Reactions.Nodes {
		if r.Content != githubv4.ReactionContentHeart {
			continue
		}
		t.Reactions.HeartCount++
		if r.User.Login != "" {
			t.Reactions.HeartLogins = append(t.Reactions.HeartLogins, r.User.Login)
		}
	}
	if len(n.Labels.Nodes) > 0 {
		l := n.Labels.Nodes[0]
		t.Label = &domain.Label{Name: l.Name, Color: l.Color}
	}
	return t
}

type addReactionMutation struct {
	AddReaction struct {
		Reaction struct {
			Content githubv4.ReactionContent
		}
	} `graphql:"addReaction(input: $input)"`
}

type removeReactionMutation struct {
	RemoveReaction struct {
		Reaction struct {
			Content githubv4.ReactionContent
		}
	} `graphql:"removeReaction(input: $input)"`
}

func (s *threadService) AddReaction(ctx context.Context, subjectID string) error {
	var m addReactionMutation
	input := githubv4.AddReactionInput{SubjectID: githubv4.ID(subjectID), Content: githubv4.ReactionContentHeart}
	if err := s.c.mutate(ctx, &m, input); err != nil {
		return fmt.Errorf("%w: adding reaction: %w", domain.ErrMutation, err)
	}
	return nil
}

func (s *threadService) RemoveReaction(ctx context.Context, subjectID string) error {
	var m removeReactionMutation
	input := githubv4.RemoveReactionInput{SubjectID: githubv4.ID(subjectID), Content: githubv4.ReactionContentHeart}
	if err := s.c.mutate(ctx, &m, input); err != nil {
		return fmt.Errorf("%w: removing reaction: %w", domain.ErrMutation, err)
	}
	return nil
}
