package app

import (
	"context"

	"github.com/CrestNiraj12/issuefeed/domain"
)

// IdentityService resolves the user behind a bearer credential.
type IdentityService interface {
	CurrentIdentity(ctx context.Context, credential string) (domain.Identity, error)
}

// Authenticator starts the delegated login flow.
// Implemented by infrastructure (the OAuth popup broker).
type Authenticator interface {
	Login(ctx context.Context) (string, error)
	Cancel()
}
