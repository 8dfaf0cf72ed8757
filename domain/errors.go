package domain

import (
	"context"
	"errors"
)

var (
	// ErrMissingRepository indicates an empty or malformed repository reference.
	ErrMissingRepository = errors.New("repository owner and name are required")

	// ErrRepositoryNotFound indicates the remote has no such repository or it is private.
	ErrRepositoryNotFound = errors.New("repository not found or private")

	// ErrTransport indicates a network, status, or response-shape failure.
	ErrTransport = errors.New("transport failure")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPopupBlocked indicates the authorization window could not be opened.
	ErrPopupBlocked = errors.New("failed to open authentication window")

	// ErrWindowClosed indicates the user closed the authorization window.
	ErrWindowClosed = errors.New("window closed by user")

	// ErrAuthorizationDenied indicates the provider returned an error instead of a code.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrExchangeFailed indicates the code-for-token exchange did not yield a token.
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrMutation marks a failed reaction or comment call that was rolled back.
	ErrMutation = errors.New("mutation failed")

	// ErrEmptyComment indicates the user submitted an empty comment.
	ErrEmptyComment = errors.New("comment cannot be empty")
)

// ErrorKind buckets errors by how the feed reacts to them.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConfiguration
	KindNotFound
	KindTransport
	KindAuthorization
	KindMutation
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNotFound:
		return "not-found"
	case KindTransport:
		return "transport"
	case KindAuthorization:
		return "authorization"
	case KindMutation:
		return "mutation"
	default:
		return "none"
	}
}

// Classify maps an error onto its ErrorKind. Unknown errors are treated as
// transport failures since they are the only retryable kind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMutation):
		return KindMutation
	case errors.Is(err, ErrMissingRepository):
		return KindConfiguration
	case errors.Is(err, ErrRepositoryNotFound):
		return KindNotFound
	case errors.Is(err, ErrPopupBlocked),
		errors.Is(err, ErrWindowClosed),
		errors.Is(err, ErrAuthorizationDenied),
		errors.Is(err, ErrExchangeFailed),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, context.Canceled):
		return KindAuthorization
	default:
		return KindTransport
	}
}
