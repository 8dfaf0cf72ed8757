package github

import (
	"context"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/CrestNiraj12/issuefeed/domain"
)

// identityService resolves the login behind a token through the REST API.
type identityService struct {
	baseURL string
	base    *http.Client
}

// NewIdentityService creates an identity resolver. baseURL is empty for
// github.com or the enterprise root URL otherwise. base, when set, is the
// transport underneath the token.
func NewIdentityService(baseURL string, base *http.Client) *identityService {
	return &identityService{baseURL: baseURL, base: base}
}

func (s *identityService) CurrentIdentity(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	if s.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.base)
	}
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	client := gh.NewClient(hc)
	if s.baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(s.baseURL, s.baseURL)
		if err != nil {
			return domain.Identity{}, fmt.Errorf("configuring api url: %w", err)
		}
	}

	user, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
		}
		return domain.Identity{}, fmt.Errorf("%w: fetching user: %w", domain.ErrTransport, err)
	}
	if user.GetLogin() == "" {
		return domain.Identity{}, fmt.Errorf("%w: user response missing login", domain.ErrTransport)
	}
	return domain.Identity{Login: user.GetLogin(), AvatarURL: user.GetAvatarURL()}, nil
}
