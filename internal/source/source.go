// Package source reads the viewer's data: the bundled dataset on disk and the
// remote store holding character identities and rating history. Every source
// is read-only.
package source

import (
	"context"
	"log"
	"strings"
	"time"

	"pvpleaderboard.com/viewer/internal/logging"
	"pvpleaderboard.com/viewer/internal/model"
)

// Remote : a queryable store of characters and their rating history
type Remote interface {
	// FindCharacter returns the row matching name and realm exactly, or nil.
	FindCharacter(ctx context.Context, name, realm string) (*model.CharacterRecord, error)
	// Snapshots returns the character's history ordered by recorded time ascending.
	Snapshots(ctx context.Context, characterID int64) ([]model.RatingSnapshot, error)
	Name() string
}

// RemoteConfig : how to reach the remote store
type RemoteConfig struct {
	URL              string
	Key              string
	DatabaseURL      string
	Timeout          time.Duration
	MaxRetryAttempts int // retries after the first request; 0 disables retrying
	RetryWait        time.Duration
}

// NewRemote picks the configured remote store. It returns nil when neither a
// REST endpoint with key nor a database URL is set; callers then run on the
// local dataset alone.
func NewRemote(cfg RemoteConfig, logger *log.Logger) (Remote, error) {
	logger = logging.OrDefault(logger)
	if cfg.URL != "" && cfg.Key != "" {
		logger.Printf("Remote store: REST endpoint %s", cfg.URL)
		return NewREST(cfg, logger), nil
	}
	if cfg.DatabaseURL != "" {
		logger.Println("Remote store: Postgres")
		pg, err := OpenPostgres(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	logger.Printf("%s Remote store not configured, using local dataset only", logging.WarnPrefix)
	return nil, nil
}

// IconKey reduces an icon reference (URL, path, or bare name) to its lower-cased
// file stem, the key talent definitions use.
func IconKey(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	start := strings.LastIndex(ref, "/") + 1
	end := strings.LastIndex(ref, ".")
	if end < start {
		end = len(ref)
	}
	return strings.ToLower(ref[start:end])
}
