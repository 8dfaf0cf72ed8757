package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/CrestNiraj12/issuefeed/domain"
	"github.com/CrestNiraj12/issuefeed/infra/auth"
	"github.com/CrestNiraj12/issuefeed/infra/config"
	"github.com/CrestNiraj12/issuefeed/infra/editor"
	"github.com/CrestNiraj12/issuefeed/infra/github"
	"github.com/CrestNiraj12/issuefeed/infra/logging"
	"github.com/CrestNiraj12/issuefeed/infra/storage"
	"github.com/CrestNiraj12/issuefeed/proxy"
	"github.com/CrestNiraj12/issuefeed/tui"
	"github.com/CrestNiraj12/issuefeed/tui/feed"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

// resolveRef picks the feed repository: an explicit flag wins, then the
// last repository chosen in the switcher, then the configured one.
func resolveRef(flag, last string, switcher bool, configured domain.RepositoryRef) (domain.RepositoryRef, error) {
	if strings.TrimSpace(flag) != "" {
		return domain.ParseRepositoryRef(flag)
	}
	if switcher && last != "" {
		if ref, err := domain.ParseRepositoryRef(last); err == nil {
			return ref, nil
		}
	}
	return configured, nil
}

// restBaseURL derives the REST root for go-github from the GraphQL endpoint.
// It is empty for github.com.
func restBaseURL(graphqlURL string) string {
	if graphqlURL == "" || graphqlURL == github.DefaultEndpoint {
		return ""
	}
	u, err := url.Parse(graphqlURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}

func newApp() *cli.App {
	v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
	cli.VersionPrinter = func(ctx *cli.Context) {
		fmt.Fprintf(ctx.App.Writer, "%s %s\ncommit: %s\nbuilt: %s\n", domain.AppTitle, v, c, d)
	}
	return &cli.App{
		Name:    "issuefeed",
		Usage:   "Browse a GitHub repository's issues as a social feed",
		Version: v,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:    "repo",
				Aliases: []string{"r"},
				Usage:   "Show issues of `OWNER/REPO`",
			},
		},
		Action: runFeed,
		Commands: []*cli.Command{
			{
				Name:   "proxy",
				Usage:  "Run the OAuth exchange and issues export proxy",
				Action: runProxy,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored GitHub session",
				Action: runLogout,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "issuefeed: %v\n", err)
		os.Exit(1)
	}
}

// services bundles the infrastructure shared by every command.
type services struct {
	kv    *storage.Store
	store *auth.CredentialStore
	gh    *github.Client
}

func openServices(ctx context.Context, cfg config.Config, log zerolog.Logger) (*services, error) {
	kv, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	store := auth.NewCredentialStore(kv, log)
	store.Load()

	httpClient := github.NewHTTPClient(ctx, store.TokenSource(cfg.GitHub.Token))
	return &services{
		kv:    kv,
		store: store,
		gh:    github.NewClient(httpClient, cfg.GitHub.APIURL, log),
	}, nil
}

func runFeed(c *cli.Context) error {
	ctx := c.Context
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, closer, err := logging.OpenFile(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	svc, err := openServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.kv.Close()

	last, _, err := svc.kv.Get(storage.KeyLastRepo)
	if err != nil {
		log.Warn().Err(err).Msg("reading last repository")
	}
	ref, err := resolveRef(c.String("repo"), last, cfg.Feed.EnableRepoSwitcher, cfg.Repository())
	if err != nil {
		return err
	}

	identity := github.NewIdentityService(restBaseURL(cfg.GitHub.APIURL), nil)
	port := cfg.Auth.CallbackPort
	bus := auth.NewMessageBus()
	broker := auth.NewBroker(auth.BrokerConfig{
		ClientID:     cfg.GitHub.ClientID,
		RedirectURL:  auth.RedirectURL(port),
		Scope:        cfg.Auth.Scope,
		AuthorizeURL: cfg.Auth.AuthorizeURL,
		Origin:       auth.LoopbackOrigin(port),
	},
		&auth.CallbackOpener{Port: port, Bus: bus, Log: log},
		bus,
		&auth.ProxyExchanger{URL: cfg.GitHub.ProxyURL, ClientID: cfg.GitHub.ClientID, RedirectURL: auth.RedirectURL(port)},
		identity,
		svc.store,
		log,
	)

	threads := github.NewThreadService(svc.gh)
	feedOpts := feed.Options{
		Ref:            ref,
		PageSize:       cfg.Feed.PageSize,
		FilterByAuthor: cfg.Feed.OnlyShowOwner,
		RepoSwitcher:   cfg.Feed.EnableRepoSwitcher,
	}
	if cfg.Feed.EnableAbout {
		feedOpts.Labels = threads
	}

	log.Info().Str("repo", ref.String()).Str("login", svc.store.Session().Login()).Msg("starting feed")
	root := tui.NewApp(tui.Deps{
		Threads:  threads,
		Comments: github.NewCommentService(svc.gh),
		Auth:     broker,
		Sessions: svc.store,
		Prefs:    svc.kv,
		Editor:   editor.NewEnvEditor(),
		Feed:     feedOpts,
		Log:      log,
	})

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runProxy(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logging.Console(os.Stderr, cfg.Log.Level)
	svc, err := openServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.kv.Close()

	srv := proxy.NewServer(github.NewThreadService(svc.gh), proxy.Options{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		TokenURL:     cfg.Proxy.TokenURL,
		RatePerSec:   cfg.Proxy.RatePerSec,
	}, log)
	return srv.Run(ctx, cfg.Proxy.Addr)
}

func runLogout(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	kv, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer kv.Close()

	store := auth.NewCredentialStore(kv, zerolog.Nop())
	login := store.Load().Login()
	if err := store.Clear(); err != nil {
		return err
	}
	return printLogout(c.App.Writer, login)
}

func printLogout(w io.Writer, login string) error {
	if login == "" {
		_, err := fmt.Fprintln(w, "No stored session.")
		return err
	}
	_, err := fmt.Fprintf(w, "Logged out @%s.\n", login)
	return err
}
