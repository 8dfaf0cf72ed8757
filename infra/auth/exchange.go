package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ProxyExchanger trades the authorization code for a token at the
// token-exchange proxy, which holds the client secret on the server side.
type ProxyExchanger struct {
	URL          string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	HTTPClient   *http.Client
}

func (p *ProxyExchanger) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURL,
		Endpoint: oauth2.Endpoint{
			TokenURL:  p.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (p *ProxyExchanger) Exchange(ctx context.Context, code string) (string, error) {
	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	tok, err := p.config().Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorDescription != "" {
			return "", errors.New(re.ErrorDescription)
		}
		return "", fmt.Errorf("exchanging oauth code: %w", err)
	}
	token := strings.TrimSpace(tok.AccessToken)
	if token == "" {
		return "", errors.New("oauth token response missing access token")
	}
	return token, nil
}
