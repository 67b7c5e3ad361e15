package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GOALFORM_BACKEND_URL.
const EnvPrefix = "GOALFORM"

// Config holds the goal form server and CLI settings.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Templates TemplatesConfig
	Theme     ThemeConfig
	Fixtures  FixturesConfig
}

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Addr  string
	Grace time.Duration
}

// BackendConfig points at the breakdown service.
type BackendConfig struct {
	URL      string
	Timeout  time.Duration
	Contract bool
}

// TemplatesConfig overrides the embedded page templates from disk.
type TemplatesConfig struct {
	Dir   string
	Watch bool
}

// ThemeConfig selects go-theme tokens for the page. Path is a manifest file;
// without it no theme is applied.
type ThemeConfig struct {
	Path    string
	Name    string
	Variant string
}

// FixturesConfig enables the built-in fixture backend. Watch reloads the
// fixture file when it changes.
type FixturesConfig struct {
	Path  string
	Watch bool
}

// Load reads configuration from defaults, an optional config file and env.
// The file is GOALFORM_CONFIG when set, else $HOME/.config/goalform/config.yaml.
func Load() (Config, error) {
	v := newViper()

	if cfgPath := os.Getenv(EnvPrefix + "_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", cfgPath, err)
		}
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "goalform"))
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: read config: %w", err)
			}
		}
	}
	return decode(v)
}

// LoadFile reads configuration from path plus env overrides. The file must
// exist.
func LoadFile(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return decode(v)
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Fixtures.Path == "" {
		parsed, err := url.Parse(c.Backend.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("config: backend.url %q must be an absolute http(s) URL", c.Backend.URL)
		}
	}
	if c.Backend.Timeout < 0 {
		return errors.New("config: backend.timeout must not be negative")
	}
	if c.Templates.Watch && c.Templates.Dir == "" {
		return errors.New("config: templates.watch requires templates.dir")
	}
	if c.Fixtures.Watch && c.Fixtures.Path == "" {
		return errors.New("config: fixtures.watch requires fixtures.path")
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()

	// default values
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.grace", "5s")
	v.SetDefault("backend.url", "http://127.0.0.1:5000")
	v.SetDefault("backend.timeout", "0s")
	v.SetDefault("backend.contract", true)
	v.SetDefault("templates.dir", "")
	v.SetDefault("templates.watch", false)
	v.SetDefault("theme.path", "")
	v.SetDefault("theme.name", "")
	v.SetDefault("theme.variant", "")
	v.SetDefault("fixtures.path", "")
	v.SetDefault("fixtures.watch", false)

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal config: %w", err)
	}
	return c, nil
}
