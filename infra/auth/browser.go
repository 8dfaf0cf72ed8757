package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/issuefeed/domain"
)

// DefaultCallbackTimeout bounds how long a callback window stays open.
const DefaultCallbackTimeout = 2 * time.Minute

// LoopbackOrigin is the origin callback messages are published under.
func LoopbackOrigin(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

// RedirectURL is the OAuth redirect served by the callback window.
func RedirectURL(port int) string {
	return LoopbackOrigin(port) + "/callback"
}

// CallbackOpener opens the authorize URL in the user's browser and serves
// the OAuth redirect on a loopback port. The redirect is turned into a
// Message on Bus, which is how the browser tab talks back to the broker.
type CallbackOpener struct {
	Port    int
	Bus     *MessageBus
	Timeout time.Duration
	// OpenURL launches the browser. Nil uses the platform default.
	OpenURL func(string) error
	Log     zerolog.Logger
}

func (o *CallbackOpener) Open(ctx context.Context, authURL string, g Geometry) (Window, error) {
	u, err := url.Parse(authURL)
	if err != nil {
		return nil, fmt.Errorf("parsing authorize url: %w", err)
	}
	state := u.Query().Get("state")
	origin := LoopbackOrigin(o.Port)

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", o.Port))
	if err != nil {
		return nil, fmt.Errorf("oauth callback server: %w", err)
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}
	w := &callbackWindow{deadline: time.Now().Add(timeout)}
	w.srv = &http.Server{Handler: http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(rw, r)
			return
		}
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(rw, "invalid oauth state", http.StatusBadRequest)
			o.publish(origin, "error", "oauth state mismatch")
		case q.Get("error") != "":
			http.Error(rw, "authorization denied", http.StatusBadRequest)
			msg := q.Get("error")
			if d := q.Get("error_description"); d != "" {
				msg = d
			}
			o.publish(origin, "error", msg)
		case q.Get("code") == "":
			http.Error(rw, "missing oauth code", http.StatusBadRequest)
			o.publish(origin, "error", "oauth callback missing code")
		default:
			_, _ = io.WriteString(rw, domain.AppTitle+" login complete. You can return to the terminal.")
			o.publish(origin, "result", q.Get("code"))
		}
	})}

	go func() {
		if err := w.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.Log.Error().Err(err).Msg("oauth callback server stopped")
		}
	}()

	open := o.OpenURL
	if open == nil {
		open = OpenBrowser
	}
	o.Log.Debug().Int("width", g.Width).Int("height", g.Height).Msg("opening authorization page")
	if err := open(authURL); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (o *CallbackOpener) publish(origin, field, value string) {
	data, _ := json.Marshal(map[string]string{field: value})
	o.Bus.Publish(Message{Origin: origin, Data: data})
}

// callbackWindow counts as closed once shut down or past its deadline.
type callbackWindow struct {
	srv      *http.Server
	deadline time.Time
	closed   atomic.Bool
	once     sync.Once
}

func (w *callbackWindow) Closed() bool {
	return w.closed.Load() || time.Now().After(w.deadline)
}

func (w *callbackWindow) Close() error {
	var err error
	w.once.Do(func() {
		w.closed.Store(true)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = w.srv.Shutdown(ctx)
	})
	return err
}

// OpenBrowser launches the platform URL handler without waiting for it.
func OpenBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}

func randomState() (string, error) {
	return randomToken(24)
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
