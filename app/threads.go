package app

import (
	"context"

	"github.com/CrestNiraj12/issuefeed/domain"
)

// ThreadQuery parameterizes one page of the feed.
type ThreadQuery struct {
	Ref      domain.RepositoryRef
	Cursor   string // empty requests the first page
	PageSize int
	// FilterByAuthor restricts the feed to threads opened by the repository owner.
	FilterByAuthor bool
}

// ThreadService lists threads and toggles reactions on the remote tracker.
type ThreadService interface {
	// ListThreads returns open threads, newest first.
	ListThreads(ctx context.Context, q ThreadQuery) (domain.FeedPage, error)

	// AddReaction adds the heart reaction to the subject node.
	AddReaction(ctx context.Context, subjectID string) error

	// RemoveReaction removes the heart reaction from the subject node.
	RemoveReaction(ctx context.Context, subjectID string) error
}

// LabelService lists the labels a repository defines.
type LabelService interface {
	ListLabels(ctx context.Context, ref domain.RepositoryRef) ([]domain.Label, error)
}

// CommentService manages replies on a single thread.
type CommentService interface {
	ListComments(ctx context.Context, ref domain.RepositoryRef, number int) ([]domain.Comment, error)
	AddComment(ctx context.Context, subjectID, body string) (domain.Comment, error)
	UpdateComment(ctx context.Context, commentID, body string) (domain.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
}
