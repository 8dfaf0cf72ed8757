package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/CrestNiraj12/issuefeed/domain"
)

// EnvPrefix prefixes every environment override, e.g.
// ISSUEFEED_FEED_PAGE_SIZE=10 sets feed.page_size.
const EnvPrefix = "ISSUEFEED_"

// Config holds application-level configuration. It is loaded once and
// passed by value to the components that need it.
type Config struct {
	GitHub struct {
		ClientID     string `koanf:"client_id"`
		ClientSecret string `koanf:"client_secret"`
		// Token is a read-only token used while nobody is logged in.
		Token    string `koanf:"token"`
		ProxyURL string `koanf:"proxy_url"`
		APIURL   string `koanf:"api_url"`
	} `koanf:"github"`

	Feed struct {
		Owner              string `koanf:"owner"`
		Repo               string `koanf:"repo"`
		PageSize           int    `koanf:"page_size"`
		OnlyShowOwner      bool   `koanf:"only_show_owner"`
		EnableRepoSwitcher bool   `koanf:"enable_repo_switcher"`
		EnableAbout        bool   `koanf:"enable_about"`
	} `koanf:"feed"`

	Auth struct {
		CallbackPort int    `koanf:"callback_port"`
		Scope        string `koanf:"scope"`
		AuthorizeURL string `koanf:"authorize_url"`
	} `koanf:"auth"`

	Storage struct {
		Path string `koanf:"path"`
	} `koanf:"storage"`

	Log struct {
		Path  string `koanf:"path"`
		Level string `koanf:"level"`
	} `koanf:"log"`

	Proxy struct {
		Addr       string  `koanf:"addr"`
		RatePerSec float64 `koanf:"rate_per_sec"`
		TokenURL   string  `koanf:"token_url"`
	} `koanf:"proxy"`
}

// Repository returns the configured feed repository, which may be zero.
func (c Config) Repository() domain.RepositoryRef {
	return domain.RepositoryRef{Owner: strings.TrimSpace(c.Feed.Owner), Repo: strings.TrimSpace(c.Feed.Repo)}
}

// DefaultDir returns the platform config directory for the client.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "issuefeed")
	}
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "issuefeed")
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "issuefeed")
		}
	}
	return filepath.Join(home, ".config", "issuefeed")
}

func defaults(dir string) map[string]interface{} {
	return map[string]interface{}{
		"github.api_url":            "https://api.github.com/graphql",
		"github.proxy_url":          "http://127.0.0.1:8787/oauth/access_token",
		"feed.page_size":            6,
		"feed.only_show_owner":      true,
		"feed.enable_repo_switcher": true,
		"feed.enable_about":         false,
		"auth.callback_port":        45145,
		"auth.scope":                "public_repo",
		"auth.authorize_url":        "https://github.com/login/oauth/authorize",
		"storage.path":              filepath.Join(dir, "state.db"),
		"log.path":                  filepath.Join(dir, "issuefeed.log"),
		"log.level":                 "info",
		"proxy.addr":                "127.0.0.1:8787",
		"proxy.rate_per_sec":        5.0,
		"proxy.token_url":           "https://github.com/login/oauth/access_token",
	}
}

// Load reads defaults, then the TOML file at path (or config.toml in the
// default directory when path is empty and the file exists), then
// environment overrides.
func Load(path string) (Config, error) {
	dir := DefaultDir()
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(dir), "."), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		candidate := filepath.Join(dir, "config.toml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("error loading config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps ISSUEFEED_FEED_ONLY_SHOW_OWNER to feed.only_show_owner: the
// first segment is the section, the rest is the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + key
}

// Validate checks values that would otherwise fail far from their source.
func Validate(cfg Config) error {
	if cfg.Feed.PageSize <= 0 || cfg.Feed.PageSize > 100 {
		return fmt.Errorf("feed.page_size must be between 1 and 100, got %d", cfg.Feed.PageSize)
	}
	if cfg.Auth.CallbackPort <= 0 || cfg.Auth.CallbackPort > 65535 {
		return fmt.Errorf("auth.callback_port out of range: %d", cfg.Auth.CallbackPort)
	}
	for name, raw := range map[string]string{
		"github.api_url":     cfg.GitHub.APIURL,
		"github.proxy_url":   cfg.GitHub.ProxyURL,
		"auth.authorize_url": cfg.Auth.AuthorizeURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s: must be an absolute URL", name)
		}
	}
	ref := cfg.Repository()
	if !ref.IsZero() && !ref.Valid() {
		return fmt.Errorf("invalid feed repository %q: %w", ref.Owner+"/"+ref.Repo, domain.ErrMissingRepository)
	}
	return nil
}
