package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pvpleaderboard.com/viewer/internal/logging"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VIEWER_REMOTE_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	cfg, err := Load(logging.Discard())
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected Addr=:8080, got %s", cfg.Addr)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("expected FetchTimeout=10s, got %v", cfg.FetchTimeout)
	}
	if cfg.SearchDebounce != 200*time.Millisecond {
		t.Errorf("expected SearchDebounce=200ms, got %v", cfg.SearchDebounce)
	}
	if cfg.MaxRetryAttempts != 3 {
		t.Errorf("expected MaxRetryAttempts=3, got %d", cfg.MaxRetryAttempts)
	}
	if cfg.IssueRepo != defaultIssueRepo {
		t.Errorf("expected IssueRepo=%s, got %s", defaultIssueRepo, cfg.IssueRepo)
	}
	if cfg.RemoteURL != "" || cfg.RemoteKey != "" {
		t.Errorf("expected no remote, got %s / %s", cfg.RemoteURL, cfg.RemoteKey)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("VIEWER_ADDR", ":9090")
	t.Setenv("VIEWER_FETCH_TIMEOUT", "2s")
	t.Setenv("MAX_RETRY_ATTEMPTS", "5")
	t.Setenv("DB_URL", "postgres://viewer@localhost/pvp")
	t.Setenv("VIEWER_REMOTE_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := Load(logging.Discard())
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("expected Addr=:9090 after env override, got %s", cfg.Addr)
	}
	remote := cfg.Remote()
	if remote.Timeout != 2*time.Second || remote.MaxRetryAttempts != 5 {
		t.Errorf("unexpected remote config %+v", remote)
	}
	if remote.DatabaseURL != "postgres://viewer@localhost/pvp" {
		t.Errorf("expected DB_URL to pass through, got %s", remote.DatabaseURL)
	}
}

func TestLoadRetryAttempts(t *testing.T) {
	t.Setenv("VIEWER_REMOTE_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	for value, expected := range map[string]int{"0": 0, "-4": 0, "1": 1} {
		t.Setenv("MAX_RETRY_ATTEMPTS", value)
		cfg, err := Load(logging.Discard())
		if err != nil {
			t.Fatalf("Load failed: %s", err)
		}
		if got := cfg.Remote().MaxRetryAttempts; got != expected {
			t.Errorf("MAX_RETRY_ATTEMPTS=%s gave %d, expected %d", value, got, expected)
		}
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("VIEWER_FETCH_TIMEOUT", "soon")
	if _, err := Load(logging.Discard()); err == nil {
		t.Error("expected an error for an invalid duration")
	}
}

func TestRemoteDocumentFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supabase.json")
	doc := `{"url": "https://example.supabase.co", "anon_key": "from-file"}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VIEWER_REMOTE_CONFIG", path)
	t.Setenv("SUPABASE_ANON_KEY", "from-env")

	cfg, err := Load(logging.Discard())
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if cfg.RemoteURL != "https://example.supabase.co" {
		t.Errorf("expected URL from document, got %s", cfg.RemoteURL)
	}
	if cfg.RemoteKey != "from-env" {
		t.Errorf("expected env key to win, got %s", cfg.RemoteKey)
	}
}

func TestRemoteDocumentMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supabase.json")
	if err := os.WriteFile(path, []byte(`{url`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VIEWER_REMOTE_CONFIG", path)
	cfg, err := Load(logging.Discard())
	if err != nil {
		t.Fatalf("A malformed document should not fail Load: %s", err)
	}
	if cfg.RemoteURL != "" {
		t.Errorf("expected no remote URL, got %s", cfg.RemoteURL)
	}
}
