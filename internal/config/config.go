// Package config loads the service configuration from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Addr   string `toml:"addr"`
	WebDir string `toml:"web_dir"`
	// DatabaseURL selects PostgreSQL. Empty means the in-memory store.
	DatabaseURL string `toml:"database_url"`
	// SeedFile is a JSON weight export loaded into the in-memory store.
	SeedFile string `toml:"seed_file"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// auth
	SessionTTL    Duration `toml:"session_ttl"`
	PurgeInterval Duration `toml:"purge_interval"`
	DisableAuth   bool     `toml:"disable_auth"`
	OIDC          OIDC     `toml:"oidc"`
	// metrics
	MetricsNamespace string `toml:"metrics_namespace"`
}

// OIDC configures single sign-on. It is enabled when Issuer is set.
type OIDC struct {
	Issuer       string `toml:"issuer"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

func (o OIDC) Enabled() bool {
	return o.Issuer != ""
}

// Duration is a time.Duration written as "24h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var c *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		c = t.Development
	case "prod", "production":
		c = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if c == nil {
		return nil, fmt.Errorf("no [%s] section in config", strings.ToLower(env))
	}
	return c, nil
}

// Default is the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Addr:             ":8080",
		WebDir:           "web",
		LogLevel:         "info",
		LogToStdout:      true,
		SessionTTL:       Duration{24 * time.Hour},
		PurgeInterval:    Duration{time.Hour},
		MetricsNamespace: "vitals",
	}
}

// Load reads the env section of the TOML file at path, fills unset values
// from Default and applies environment overrides. A missing file is not an
// error.
func Load(env, path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var t Toml
		_, err := toml.DecodeFile(path, &t)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			fromFile, err := t.Get(env)
			if err != nil {
				return nil, err
			}
			cfg = merge(fromFile, cfg)
		}
	}
	applyEnv(cfg, os.LookupEnv)
	return cfg, nil
}

func merge(c, defaults *Config) *Config {
	out := *c
	if out.Addr == "" {
		out.Addr = defaults.Addr
	}
	if out.WebDir == "" {
		out.WebDir = defaults.WebDir
	}
	if out.LogLevel == "" {
		out.LogLevel = defaults.LogLevel
	}
	if out.SessionTTL.Duration <= 0 {
		out.SessionTTL = defaults.SessionTTL
	}
	if out.PurgeInterval.Duration <= 0 {
		out.PurgeInterval = defaults.PurgeInterval
	}
	if out.MetricsNamespace == "" {
		out.MetricsNamespace = defaults.MetricsNamespace
	}
	return &out
}

func applyEnv(c *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Addr, "ADDR")
	set(&c.WebDir, "WEB_DIR")
	set(&c.DatabaseURL, "DATABASE_URL")
	set(&c.SeedFile, "SEED_FILE")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.OIDC.Issuer, "OIDC_ISSUER")
	set(&c.OIDC.ClientID, "OIDC_CLIENT_ID")
	set(&c.OIDC.ClientSecret, "OIDC_CLIENT_SECRET")
	set(&c.OIDC.RedirectURL, "OIDC_REDIRECT_URL")
}
