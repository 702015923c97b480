package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pvpleaderboard.com/viewer/internal/logging"
	"pvpleaderboard.com/viewer/internal/model"
)

const restPrefix string = "/rest/v1/"
const defaultRetryWait time.Duration = 2 * time.Second
const defaultTimeout time.Duration = 10 * time.Second

// errNotFound : the endpoint answered 404, treated as "no rows"
var errNotFound = errors.New("not found")

// REST reads the remote store through its PostgREST interface.
type REST struct {
	baseURL     string
	key         string
	client      *http.Client
	retryWait   time.Duration
	maxAttempts int
	logger      *log.Logger
}

// NewREST : REST client with an explicit request timeout
func NewREST(cfg RemoteConfig, logger *log.Logger) *REST {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	wait := cfg.RetryWait
	if wait <= 0 {
		wait = defaultRetryWait
	}
	// zero or less disables retrying
	attempts := max(cfg.MaxRetryAttempts, 0)
	return &REST{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		key:         cfg.Key,
		client:      &http.Client{Timeout: timeout},
		retryWait:   wait,
		maxAttempts: attempts,
		logger:      logging.OrDefault(logger),
	}
}

func (r *REST) Name() string {
	return "rest"
}

// FindCharacter looks a character up by exact name and realm.
func (r *REST) FindCharacter(ctx context.Context, name, realm string) (*model.CharacterRecord, error) {
	path := fmt.Sprintf("characters?name=eq.%s&realm=eq.%s&limit=1",
		url.QueryEscape(name), url.QueryEscape(realm))
	var rows []model.CharacterRecord
	if err := r.get(ctx, path, &rows); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Snapshots loads a character's rating history, oldest first.
func (r *REST) Snapshots(ctx context.Context, characterID int64) ([]model.RatingSnapshot, error) {
	path := fmt.Sprintf("rating_snapshots?character_id=eq.%d&order=recorded_at.asc", characterID)
	var rows []model.RatingSnapshot
	if err := r.get(ctx, path, &rows); err != nil {
		if errors.Is(err, errNotFound) {
			return []model.RatingSnapshot{}, nil
		}
		return nil, err
	}
	return rows, nil
}

func (r *REST) get(ctx context.Context, path string, v any) error {
	body, err := r.getWithRetry(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		r.logger.Printf("%s json parsing of '%s' failed: %s", logging.ErrPrefix, path, err)
		return fmt.Errorf("%s: %w: %w", path, model.ErrSourceUnavailable, err)
	}
	return nil
}

// getWithRetry retries rate-limited and failed responses up to maxAttempts
// times, waiting retryWait between attempts. With maxAttempts 0 it makes a
// single request.
func (r *REST) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	endpoint := r.baseURL + restPrefix + path
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			r.logger.Printf("%s Failed to create request for '%s': %s", logging.ErrPrefix, path, err)
			return nil, fmt.Errorf("%s: %w: %w", path, model.ErrSourceUnavailable, err)
		}
		req.Header.Set("apikey", r.key)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.key))
		req.Header.Set("Accept", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			r.logger.Printf("%s GET '%s' failed: %s", logging.ErrPrefix, path, err)
			return nil, fmt.Errorf("%s: %w: %w", path, model.ErrSourceUnavailable, err)
		}
		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				r.logger.Printf("%s reading body of '%s' failed: %s", logging.ErrPrefix, path, err)
				return nil, fmt.Errorf("%s: %w: %w", path, model.ErrSourceUnavailable, err)
			}
			return body, nil
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, errNotFound
		}
		if attempt > r.maxAttempts {
			r.logger.Printf("%s Received %d for '%s' %d times, NOT retrying", logging.WarnPrefix, resp.StatusCode, path, attempt)
			return nil, fmt.Errorf("%s: status %d: %w", path, resp.StatusCode, model.ErrSourceUnavailable)
		}
		r.logger.Printf("Received %d - retrying '%s'", resp.StatusCode, path)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w: %w", path, model.ErrSourceUnavailable, ctx.Err())
		case <-time.After(r.retryWait):
		}
	}
}
