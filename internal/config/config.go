// Package config handles loading and parsing application configuration.
// Values come from (in priority order):
//  1. Environment variables, e.g. APP_URL=http://localhost:3000
//  2. An optional YAML file named by CONFIG_PATH or the --config flag
//  3. The env-default tags below
//
// A missing or malformed required value is a startup error: Load returns
// it, MustLoad exits the process.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the configuration of the admin client.
//
// env-required:"true" means the app refuses to start if that value is
// missing.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// AppURL is the origin of the backend API, e.g. "http://localhost:3000".
	// Every request is built from it.
	AppURL string `yaml:"app_url" env:"APP_URL" env-required:"true"`

	// RequestTimeout bounds every backend request.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"10s"`

	// RedirectDelay is how long a form shows its success message before
	// navigating back to the list.
	RedirectDelay time.Duration `yaml:"redirect_delay" env:"REDIRECT_DELAY" env-default:"2s"`
}

// StubConfig is the configuration of the local stub backend.
type StubConfig struct {
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`

	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:3000".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// Path resolves the config file path: CONFIG_PATH wins over flagValue.
// An empty result means "environment only".
func Path(flagValue string) string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return flagValue
}

// Load reads the client config from path (optional) and the environment,
// then checks AppURL.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := read(path, &cfg); err != nil {
		return nil, err
	}

	if err := ValidateAppURL(cfg.AppURL); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		return nil, errors.New("config: request_timeout must be positive")
	}
	if cfg.RedirectDelay < 0 {
		return nil, errors.New("config: redirect_delay must not be negative")
	}

	return &cfg, nil
}

// LoadStub reads the stub backend config from path (optional) and the
// environment.
func LoadStub(path string) (*StubConfig, error) {
	var cfg StubConfig
	if err := read(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load that exits the process on failure.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}
	return cfg
}

// MustLoadStub is LoadStub that exits the process on failure.
func MustLoadStub(path string) *StubConfig {
	cfg, err := LoadStub(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}
	return cfg
}

// ValidateAppURL accepts only absolute http or https origins.
func ValidateAppURL(raw string) error {
	if raw == "" {
		return errors.New("config: app_url is not set: use APP_URL env var or app_url in the config file")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("config: app_url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: app_url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("config: app_url %q: host is missing", raw)
	}
	return nil
}

func read(path string, cfg any) error {
	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("config: read env: %w", err)
		}
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config: file does not exist: %s", path)
	}

	// ReadConfig also applies env:"..." overrides and env-required checks.
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}
