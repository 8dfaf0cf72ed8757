package proxy

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// exchangeRequest binds either a JSON body or an OAuth form post.
type exchangeRequest struct {
	ClientID     string `json:"client_id" form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
	Code         string `json:"code" form:"code"`
	RedirectURI  string `json:"redirect_uri" form:"redirect_uri"`
}

// exchangeToken forwards an authorization code to GitHub and relays the
// token response unchanged.
func (s *Server) exchangeToken(c echo.Context) error {
	var req exchangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ClientID == "" {
		req.ClientID = s.opts.ClientID
	}
	if req.ClientSecret == "" {
		req.ClientSecret = s.opts.ClientSecret
	}
	if strings.TrimSpace(req.Code) == "" || req.ClientID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "client_id and code are required"})
	}

	ctx := c.Request().Context()
	if err := s.limiter.Wait(ctx); err != nil {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
	}

	form := url.Values{}
	form.Set("client_id", req.ClientID)
	form.Set("client_secret", req.ClientSecret)
	form.Set("code", req.Code)
	if req.RedirectURI != "" {
		form.Set("redirect_uri", req.RedirectURI)
	}
	upstream, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return s.failure(c, "Failed to exchange code", err)
	}
	upstream.Header.Set(echo.HeaderContentType, "application/x-www-form-urlencoded")
	upstream.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)

	resp, err := s.opts.HTTPClient.Do(upstream)
	if err != nil {
		return s.failure(c, "Failed to exchange code", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return s.failure(c, "Failed to exchange code", err)
	}

	contentType := resp.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = "application/x-www-form-urlencoded"
	}
	s.log.Info().Int("status", resp.StatusCode).Msg("token exchange relayed")
	return c.Blob(resp.StatusCode, contentType, body)
}
