package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/CrestNiraj12/issuefeed/app"
	"github.com/CrestNiraj12/issuefeed/domain"
)

const (
	DefaultAuthorizeURL = "https://github.com/login/oauth/authorize"
	DefaultScope        = "public_repo"
	DefaultPollInterval = 500 * time.Millisecond
)

// Window is an authorization window opened for the user.
type Window interface {
	Closed() bool
	Close() error
}

// Opener shows the authorization page. It returns a nil window or an error
// when no window could be shown.
type Opener interface {
	Open(ctx context.Context, authURL string, g Geometry) (Window, error)
}

// Exchanger trades an authorization code for an access token.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
}

// BrokerConfig configures the authorization flow.
type BrokerConfig struct {
	ClientID     string
	RedirectURL  string
	Scope        string
	AuthorizeURL string
	// Origin is the only message origin the broker accepts.
	Origin       string
	PollInterval time.Duration
	Frame        Frame
}

// Broker runs the popup authorization flow. At most one authorization is
// pending; concurrent Login calls share its outcome.
type Broker struct {
	cfg       BrokerConfig
	oauth     *oauth2.Config
	opener    Opener
	bus       *MessageBus
	exchanger Exchanger
	identity  app.IdentityService
	store     *CredentialStore
	log       zerolog.Logger

	mu      sync.Mutex
	pending *attempt
}

type attempt struct {
	done   chan struct{}
	token  string
	err    error
	window Window
}

type callbackPayload struct {
	Result *string `json:"result"`
	Error  *string `json:"error"`
}

type outcome struct {
	code string
	err  error
}

func NewBroker(cfg BrokerConfig, opener Opener, bus *MessageBus, exchanger Exchanger, identity app.IdentityService, store *CredentialStore, log zerolog.Logger) *Broker {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Broker{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      strings.Fields(cfg.Scope),
			Endpoint:    oauth2.Endpoint{AuthURL: cfg.AuthorizeURL},
		},
		opener:    opener,
		bus:       bus,
		exchanger: exchanger,
		identity:  identity,
		store:     store,
		log:       log,
	}
}

// Login authorizes the user and returns the new credential. The session is
// stored only when every step succeeds.
func (b *Broker) Login(ctx context.Context) (string, error) {
	b.mu.Lock()
	if a := b.pending; a != nil {
		b.mu.Unlock()
		b.log.Debug().Msg("joining pending authorization")
		select {
		case <-a.done:
			return a.token, a.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	a := &attempt{done: make(chan struct{})}
	b.pending = a
	b.mu.Unlock()

	a.token, a.err = b.run(ctx, a)

	b.mu.Lock()
	b.pending = nil
	b.mu.Unlock()
	close(a.done)

	if a.err != nil {
		b.log.Warn().Err(a.err).Msg("authorization failed")
	}
	return a.token, a.err
}

// Pending reports whether an authorization is in progress.
func (b *Broker) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != nil
}

// Cancel closes the pending authorization window, which fails the attempt
// with ErrWindowClosed on the next poll.
func (b *Broker) Cancel() {
	b.mu.Lock()
	a := b.pending
	var w Window
	if a != nil {
		w = a.window
	}
	b.mu.Unlock()
	if w != nil {
		_ = w.Close()
	}
}

// Logout clears the stored session.
func (b *Broker) Logout() error {
	if err := b.store.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	b.log.Info().Msg("logged out")
	return nil
}

func (b *Broker) run(ctx context.Context, a *attempt) (string, error) {
	code, err := b.authorize(ctx, a)
	if err != nil {
		return "", err
	}

	token, err := b.exchanger.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExchangeFailed, err)
	}
	id, err := b.identity.CurrentIdentity(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: fetching identity: %w", domain.ErrExchangeFailed, err)
	}
	if err := b.store.Save(token, id); err != nil {
		return "", fmt.Errorf("%w: storing session: %w", domain.ErrExchangeFailed, err)
	}
	b.log.Info().Str("login", id.Login).Msg("authorized")
	return token, nil
}

func (b *Broker) authorize(ctx context.Context, a *attempt) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", fmt.Errorf("generating oauth state: %w", err)
	}
	authURL := b.oauth.AuthCodeURL(state)
	geom := PopupGeometry(b.cfg.Frame)

	win, err := b.opener.Open(ctx, authURL, geom)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPopupBlocked, err)
	}
	if win == nil {
		return "", domain.ErrPopupBlocked
	}
	b.mu.Lock()
	a.window = win
	b.mu.Unlock()

	results := make(chan outcome, 1)
	unsubscribe := b.bus.Subscribe(func(m Message) {
		if m.Origin != b.cfg.Origin {
			return
		}
		var p callbackPayload
		if err := json.Unmarshal(m.Data, &p); err != nil {
			return
		}
		var o outcome
		switch {
		case p.Result != nil && *p.Result == "":
			o.err = fmt.Errorf("%w: %w", domain.ErrAuthorizationDenied, errEmptyCode)
		case p.Result != nil:
			o.code = *p.Result
		case p.Error != nil:
			o.err = fmt.Errorf("%w: %s", domain.ErrAuthorizationDenied, *p.Error)
		default:
			return
		}
		select {
		case results <- o:
		default:
		}
	})

	poll := time.NewTicker(b.cfg.PollInterval)
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			poll.Stop()
			unsubscribe()
			_ = win.Close()
		})
	}
	defer cleanup()

	b.log.Info().
		Int("width", geom.Width).
		Int("height", geom.Height).
		Int("left", geom.Left).
		Int("top", geom.Top).
		Msg("authorization window opened")

	for {
		select {
		case o := <-results:
			return o.code, o.err
		case <-poll.C:
			if !win.Closed() {
				continue
			}
			select {
			case o := <-results:
				return o.code, o.err
			default:
			}
			return "", domain.ErrWindowClosed
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Message is a cross-window message as delivered to the broker.
type Message struct {
	Origin string
	Data   []byte
}

// MessageBus fans messages out to subscribers.
type MessageBus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Message)
}

func NewMessageBus() *MessageBus {
	return &MessageBus{subs: make(map[int]func(Message))}
}

// Subscribe registers fn and returns its unsubscribe function, which is safe
// to call more than once.
func (m *MessageBus) Subscribe(fn func(Message)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Publish delivers msg to every current subscriber.
func (m *MessageBus) Publish(msg Message) {
	m.mu.Lock()
	fns := make([]func(Message), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(msg)
	}
}

// Subscribers returns the number of registered listeners.
func (m *MessageBus) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

var errEmptyCode = errors.New("authorization callback carried an empty code")
