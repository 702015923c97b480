// Package config loads the viewer's settings from the environment, an
// optional .env file and an optional remote store document.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"pvpleaderboard.com/viewer/internal/logging"
	"pvpleaderboard.com/viewer/internal/source"
)

const defaultIssueRepo string = "kenziedev/wowtbc_arena_anni"

// Config holds every setting the viewer reads at startup.
type Config struct {
	Addr             string        `env:"VIEWER_ADDR"            envDefault:":8080"`
	DataDir          string        `env:"VIEWER_DATA_DIR"        envDefault:"data"`
	RemoteURL        string        `env:"SUPABASE_URL"`
	RemoteKey        string        `env:"SUPABASE_ANON_KEY"`
	RemoteConfigFile string        `env:"VIEWER_REMOTE_CONFIG"   envDefault:"config/supabase.json"`
	DatabaseURL      string        `env:"DB_URL"`
	FetchTimeout     time.Duration `env:"VIEWER_FETCH_TIMEOUT"   envDefault:"10s"`
	SearchDebounce   time.Duration `env:"VIEWER_SEARCH_DEBOUNCE" envDefault:"200ms"`
	MaxRetryAttempts int           `env:"MAX_RETRY_ATTEMPTS"     envDefault:"3"`
	RetryWait        time.Duration `env:"VIEWER_RETRY_WAIT"      envDefault:"1s"`
	IssueRepo        string        `env:"VIEWER_ISSUE_REPO"      envDefault:"kenziedev/wowtbc_arena_anni"`
}

// remoteDocument : the deployed remote store config, {url, anon_key}
type remoteDocument struct {
	URL     string `json:"url"`
	AnonKey string `json:"anon_key"`
}

// Load reads an optional .env file, then the environment. When the remote
// endpoint or key is unset it is filled from the remote config document, if
// one exists.
func Load(logger *log.Logger) (Config, error) {
	logger = logging.OrDefault(logger)
	if err := godotenv.Load(); err != nil {
		logger.Println("No .env file found; using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.IssueRepo == "" {
		cfg.IssueRepo = defaultIssueRepo
	}
	if cfg.MaxRetryAttempts < 0 {
		logger.Printf("%s MAX_RETRY_ATTEMPTS %d is negative, not retrying", logging.WarnPrefix, cfg.MaxRetryAttempts)
		cfg.MaxRetryAttempts = 0
	}

	if cfg.RemoteURL == "" || cfg.RemoteKey == "" {
		if err := cfg.applyRemoteDocument(cfg.RemoteConfigFile); err != nil {
			logger.Printf("%s Remote config '%s' unusable: %s", logging.WarnPrefix, cfg.RemoteConfigFile, err)
		}
	}
	return cfg, nil
}

func (c *Config) applyRemoteDocument(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var doc remoteDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("json parsing failed: %w", err)
	}
	if c.RemoteURL == "" {
		c.RemoteURL = doc.URL
	}
	if c.RemoteKey == "" {
		c.RemoteKey = doc.AnonKey
	}
	return nil
}

// Remote converts the remote store settings for source.NewRemote.
func (c Config) Remote() source.RemoteConfig {
	return source.RemoteConfig{
		URL:              c.RemoteURL,
		Key:              c.RemoteKey,
		DatabaseURL:      c.DatabaseURL,
		Timeout:          c.FetchTimeout,
		MaxRetryAttempts: c.MaxRetryAttempts,
		RetryWait:        c.RetryWait,
	}
}
