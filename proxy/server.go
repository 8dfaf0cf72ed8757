// Package proxy serves the OAuth token exchange and a read-only JSON export
// of a repository's open issues.
package proxy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/CrestNiraj12/issuefeed/app"
)

// Options configures the proxy.
type Options struct {
	// ClientID and ClientSecret are used when the caller omits them.
	ClientID     string
	ClientSecret string
	// TokenURL is GitHub's access token endpoint.
	TokenURL   string
	RatePerSec float64
	HTTPClient *http.Client
}

// Server is the proxy HTTP server.
type Server struct {
	echo    *echo.Echo
	issues  app.ThreadService
	opts    Options
	limiter *rate.Limiter
	log     zerolog.Logger
	now     func() time.Time
}

// NewServer wires routes and middleware.
func NewServer(issues app.ThreadService, opts Options, log zerolog.Logger) *Server {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.TokenURL == "" {
		opts.TokenURL = "https://github.com/login/oauth/access_token"
	}
	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		echo:    e,
		issues:  issues,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 5),
		log:     log,
		now:     time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	s.echo.POST("/oauth/access_token", s.exchangeToken)
	s.echo.GET("/api/issues", s.listIssues)
	s.echo.GET("/api/issues.json", s.listIssues)
	for _, p := range []string{"/oauth/access_token", "/api/issues", "/api/issues.json"} {
		s.echo.OPTIONS(p, func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	}
}

// ServeHTTP lets tests and embedders drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("proxy listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
