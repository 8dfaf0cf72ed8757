package github

import (
	"context"
	"fmt"

	"github.com/shurcooL/githubv4"

	"github.com/CrestNiraj12/issuefeed/domain"
)

type labelsQuery struct {
	Repository *struct {
		Labels struct {
			Nodes []struct {
				Name  string
				Color string
			}
		} `graphql:"labels(first: 100)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// ListLabels returns up to 100 labels defined on the repository.
func (s *threadService) ListLabels(ctx context.Context, ref domain.RepositoryRef) ([]domain.Label, error) {
	if !ref.Valid() {
		return nil, domain.ErrMissingRepository
	}
	vars := map[string]any{
		"owner": githubv4.String(ref.Owner),
		"name":  githubv4.String(ref.Repo),
	}
	var res labelsQuery
	if err := s.c.query(ctx, &res, vars); err != nil {
		s.c.log.Warn().Err(err).Str("repo", ref.String()).Msg("listing labels failed")
		return nil, classify(err)
	}
	if res.Repository == nil {
		return nil, fmt.Errorf("%s: %w", ref, domain.ErrRepositoryNotFound)
	}
	labels := make([]domain.Label, 0, len(res.Repository.Labels.Nodes))
	for _, n := range res.Repository.Labels.Nodes {
		labels = append(labels, domain.Label{Name: sanitize(n.Name), Color: n.Color})
	}
	return labels, nil
}
