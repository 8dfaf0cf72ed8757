package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
)

// Controller issues page queries for the feed. It never touches FeedState;
// results go back through FeedState.ApplyPage.
type Controller struct {
	threads        app.ThreadService
	filterByAuthor bool
}

// NewController creates a pagination controller. With filterByAuthor set the
// feed only shows threads opened by the repository owner.
func NewController(threads app.ThreadService, filterByAuthor bool) *Controller {
	return &Controller{threads: threads, filterByAuthor: filterByAuthor}
}

// LoadNextPage fetches the page after cursor. An invalid ref is reported as
// a configuration error without contacting the network.
func (c *Controller) LoadNextPage(ctx context.Context, ref domain.RepositoryRef, cursor string, pageSize int) (domain.FeedPage, error) {
	if !ref.Valid() {
		return domain.FeedPage{}, fmt.Errorf("loading page: %w", domain.ErrMissingRepository)
	}
	page, err := c.threads.ListThreads(ctx, app.ThreadQuery{
		Ref:            ref,
		Cursor:         cursor,
		PageSize:       pageSize,
		FilterByAuthor: c.filterByAuthor,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRepositoryNotFound) || errors.Is(err, domain.ErrTransport) {
			return domain.FeedPage{}, err
		}
		return domain.FeedPage{}, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	if err := checkPage(page); err != nil {
		return domain.FeedPage{}, err
	}
	return page, nil
}

// ResetAndLoadFirstPage fetches the first page, ignoring any stored cursor.
func (c *Controller) ResetAndLoadFirstPage(ctx context.Context, ref domain.RepositoryRef, pageSize int) (domain.FeedPage, error) {
	return c.LoadNextPage(ctx, ref, "", pageSize)
}

// Fetch runs the query a ticket describes.
func (c *Controller) Fetch(ctx context.Context, t Ticket) (domain.FeedPage, error) {
	if t.First {
		return c.ResetAndLoadFirstPage(ctx, t.Ref, t.PageSize)
	}
	return c.LoadNextPage(ctx, t.Ref, t.Cursor, t.PageSize)
}

// checkPage rejects malformed responses; they count as transport failures.
func checkPage(page domain.FeedPage) error {
	if page.HasNextPage && page.EndCursor == "" {
		return fmt.Errorf("%w: next page advertised without a cursor", domain.ErrTransport)
	}
	for i, n := range page.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has no id", domain.ErrTransport, i)
		}
	}
	return nil
}
