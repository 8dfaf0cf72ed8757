package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/infra/storage"
)

// KV is the durable storage the credential store writes through.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Session is the current authentication state. The zero value is logged out.
type Session struct {
	Credential string
	Identity   *domain.Identity
}

// Authenticated reports whether both a credential and an identity are known.
func (s Session) Authenticated() bool {
	return s.Credential != "" && s.Identity != nil
}

// Login returns the identity's login, or "" when logged out.
func (s Session) Login() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Login
}

// CredentialStore holds the session in memory and mirrors it to KV.
type CredentialStore struct {
	mu      sync.RWMutex
	kv      KV
	session Session
	log     zerolog.Logger
}

func NewCredentialStore(kv KV, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{kv: kv, log: log}
}

// Load restores the session from storage. A token without a stored user, a
// user without a token, or an unreadable user record all yield an empty
// session.
func (c *CredentialStore) Load() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = Session{}
	token, okToken, err := c.kv.Get(storage.KeyToken)
	if err != nil {
		c.log.Warn().Err(err).Msg("reading stored token")
		return c.session
	}
	raw, okUser, err := c.kv.Get(storage.KeyUser)
	if err != nil {
		c.log.Warn().Err(err).Msg("reading stored user")
		return c.session
	}
	if !okToken || !okUser || strings.TrimSpace(token) == "" {
		return c.session
	}
	var id domain.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || id.Login == "" {
		c.log.Warn().Msg("stored user record is unreadable; ignoring session")
		return c.session
	}
	c.session = Session{Credential: strings.TrimSpace(token), Identity: &id}
	c.log.Info().Str("login", id.Login).Msg("restored session")
	return c.session
}

// Save persists credential and identity, then publishes the new session.
func (c *CredentialStore) Save(credential string, id domain.Identity) error {
	credential = strings.TrimSpace(credential)
	if credential == "" || id.Login == "" {
		return errors.New("credential and identity are required")
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("serializing identity: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Set(storage.KeyToken, credential); err != nil {
		return err
	}
	if err := c.kv.Set(storage.KeyUser, string(raw)); err != nil {
		_ = c.kv.Delete(storage.KeyToken)
		return err
	}
	c.session = Session{Credential: credential, Identity: &id}
	return nil
}

// Clear removes the stored session.
func (c *CredentialStore) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = Session{}
	return c.kv.Delete(storage.KeyToken, storage.KeyUser)
}

// Session returns a copy of the current session.
func (c *CredentialStore) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.session
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

// Token implements oauth2.TokenSource over the stored credential.
func (c *CredentialStore) Token() (*oauth2.Token, error) {
	s := c.Session()
	if s.Credential == "" {
		return nil, domain.ErrUnauthorized
	}
	return &oauth2.Token{AccessToken: s.Credential, TokenType: "Bearer"}, nil
}

// TokenSource returns a source that prefers the logged-in credential and
// falls back to a configured read token. Anonymous GraphQL is not allowed,
// so an empty fallback yields ErrUnauthorized when nobody is logged in.
func (c *CredentialStore) TokenSource(fallback string) oauth2.TokenSource {
	return fallbackSource{store: c, fallback: strings.TrimSpace(fallback)}
}

type fallbackSource struct {
	store    *CredentialStore
	fallback string
}

func (f fallbackSource) Token() (*oauth2.Token, error) {
	if tok, err := f.store.Token(); err == nil {
		return tok, nil
	}
	if f.fallback == "" {
		return nil, domain.ErrUnauthorized
	}
	return &oauth2.Token{AccessToken: f.fallback, TokenType: "Bearer"}, nil
}
