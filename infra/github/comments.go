package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/CrestNiraj12/issuefeed/domain"
)

// commentService implements app.CommentService over GraphQL.
type commentService struct {
	c *Client
}

func NewCommentService(c *Client) *commentService {
	return &commentService{c: c}
}

type commentNode struct {
	ID        githubv4.ID
	Body      string
	BodyHTML  string `graphql:"bodyHTML"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Author    actor
}

func (n commentNode) toDomain() domain.Comment {
	return domain.Comment{
		ID:        idString(n.ID),
		Author:    n.Author.toDomain(),
		Body:      sanitize(n.Body),
		BodyHTML:  n.BodyHTML,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

type commentsQuery struct {
	Repository *struct {
		Issue *struct {
			Comments struct {
				Nodes    []commentNode
				PageInfo struct {
					HasNextPage bool
					EndCursor   githubv4.String
				}
			} `graphql:"comments(first: 100, after: $cursor)"`
		} `graphql:"issue(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// ListComments returns every comment on the issue, oldest first.
func (s *commentService) ListComments(ctx context.Context, ref domain.RepositoryRef, number int) ([]domain.Comment, error) {
	if !ref.Valid() {
		return nil, domain.ErrMissingRepository
	}
	vars := map[string]any{
		"owner":  githubv4.String(ref.Owner),
		"name":   githubv4.String(ref.Repo),
		"number": githubv4.Int(number),
		"cursor": (*githubv4.String)(nil),
	}

	var out []domain.Comment
	for {
		var res commentsQuery
		if err := s.c.query(ctx, &res, vars); err != nil {
			return nil, classify(err)
		}
		if res.Repository == nil || res.Repository.Issue == nil {
			return nil, fmt.Errorf("%s#%d: %w", ref, number, domain.ErrRepositoryNotFound)
		}
		cs := res.Repository.Issue.Comments
		for _, n := range cs.Nodes {
			out = append(out, n.toDomain())
		}
		if !cs.PageInfo.HasNextPage {
			break
		}
		vars["cursor"] = githubv4.NewString(cs.PageInfo.EndCursor)
	}
	return out, nil
}

func (s *commentService) AddComment(ctx context.Context, subjectID, body string) (domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Comment{}, domain.ErrEmptyComment
	}
	var m struct {
		AddComment struct {
			CommentEdge struct {
				Node commentNode
			}
		} `graphql:"addComment(input: $input)"`
	}
	input := githubv4.AddCommentInput{SubjectID: githubv4.ID(subjectID), Body: githubv4.String(body)}
	if err := s.c.mutate(ctx, &m, input); err != nil {
		return domain.Comment{}, fmt.Errorf("%w: adding comment: %w", domain.ErrMutation, err)
	}
	return m.AddComment.CommentEdge.Node.toDomain(), nil
}

func (s *commentService) UpdateComment(ctx context.Context, commentID, body string) (domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Comment{}, domain.ErrEmptyComment
	}
	var m struct {
		UpdateIssueComment struct {
			IssueComment commentNode
		} `graphql:"updateIssueComment(input: $input)"`
	}
	input := githubv4.UpdateIssueCommentInput{ID: githubv4.ID(commentID), Body: githubv4.String(body)}
	if err := s.c.mutate(ctx, &m, input); err != nil {
		return domain.Comment{}, fmt.Errorf("%w: updating comment: %w", domain.ErrMutation, err)
	}
	return m.UpdateIssueComment.IssueComment.toDomain(), nil
}

func (s *commentService) DeleteComment(ctx context.Context, commentID string) error {
	var m struct {
		DeleteIssueComment struct {
			ClientMutationID string `graphql:"clientMutationId"`
		} `graphql:"deleteIssueComment(input: $input)"`
	}
	input := githubv4.DeleteIssueCommentInput{ID: githubv4.ID(commentID)}
	if err := s.c.mutate(ctx, &m, input); err != nil {
		return fmt.Errorf("%w: deleting comment: %w", domain.ErrMutation, err)
	}
	return nil
}
