package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"pvpleaderboard.com/viewer/internal/logging"
	"pvpleaderboard.com/viewer/internal/model"
)

const testMeta = `{
  "region": "kr",
  "updated_at": "2026-10-18T09:30:00+00:00",
  "total_characters_scanned": 812,
  "total_with_pvp": 301,
  "brackets": {"2v2": {"count": 2, "file": "2v2.json"}, "3v3": {"count": 0, "file": "three.json"}}
}`

const testBracket = `[
  {"name": "Exupery", "realm": "fengus-ferocity", "class": "전사", "guild": "Foo", "rating": 2400, "won": 30, "lost": 10, "winrate": 12.3, "rank": 1},
  {"name": "Thrall", "realm": "moldars-moxie", "class": "주술사", "rating": 2200, "won": 0, "lost": 0, "rank": 2}
]`

const testExtras = `[
  {"name": "Exupery", "realm": "fengus-ferocity", "guild": "Foo",
   "spec_groups": [{"active": true, "trees": [{"name": "무기", "points": 41,
     "talents": [{"name": "굴절", "rank": 5, "icon": "https://render.example.com/icons/56/Ability_Parry.jpg"}]}]}],
   "equipment": [{"slot_type": "HEAD", "name": "Gladiator's Plate Helm", "enchants": [{"type": "GEM", "text": "+12 Str"}]}]}
]`

const testDefs = `{"Warrior": {"ko": "전사", "trees": [{"name": "Arms", "ko": "무기", "grid": [null, {"name": "Deflection", "icon": "ability_parry", "max_rank": 5, "descriptions": ["a","b","c","d","e"], "prereq": null}]}]}}`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"meta.json":           {Data: []byte(testMeta)},
		"2v2.json":            {Data: []byte(testBracket)},
		"three.json":          {Data: []byte(`[]`)},
		"all_characters.json": {Data: []byte(testExtras)},
		"talent_defs.json":    {Data: []byte(testDefs)},
		"5v5.json":            {Data: []byte(`{not json`)},
	}
}

func TestLocalMeta(t *testing.T) {
	local := NewLocal(testFS(), logging.Discard())
	meta, err := local.Meta(context.Background())
	if err != nil {
		t.Fatalf("Loading meta failed: %s", err)
	}
	if meta.TotalCharactersScanned != 812 || meta.Brackets[model.Bracket3v3].File != "three.json" {
		t.Errorf("Unexpected meta %+v", meta)
	}
	if meta.UpdatedAt.IsZero() {
		t.Error("updated_at not parsed")
	}
}

func TestLocalBracketDerivesWinrate(t *testing.T) {
	local := NewLocal(testFS(), logging.Discard())
	entries, err := local.Bracket(context.Background(), model.Bracket2v2, "")
	if err != nil {
		t.Fatalf("Loading bracket failed: %s", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Found %d entries, expected 2", len(entries))
	}
	if entries[0].Winrate != 75 {
		t.Errorf("Winrate %f, expected it derived as 75", entries[0].Winrate)
	}
	if entries[1].Winrate != 0 {
		t.Errorf("Winrate %f with no games, expected 0", entries[1].Winrate)
	}
}

func TestLocalUnavailable(t *testing.T) {
	local := NewLocal(testFS(), logging.Discard())
	_, err := local.Bracket(context.Background(), model.Bracket5v5, "")
	if !errors.Is(err, model.ErrSourceUnavailable) {
		t.Errorf("Malformed bracket should be unavailable, got %v", err)
	}
	_, err = local.Bracket(context.Background(), "1v1", "")
	if !errors.Is(err, model.ErrSourceUnavailable) {
		t.Errorf("Missing bracket should be unavailable, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := local.Meta(ctx); !errors.Is(err, model.ErrSourceUnavailable) {
		t.Errorf("Cancelled load should be unavailable, got %v", err)
	}
}

func TestLocalExtrasNormalizesIcons(t *testing.T) {
	local := NewLocal(testFS(), logging.Discard())
	extras, err := local.Extras(context.Background())
	if err != nil {
		t.Fatalf("Loading extras failed: %s", err)
	}
	icon := extras[0].SpecGroups[0].Trees[0].Talents[0].Icon
	if icon != "ability_parry" {
		t.Errorf("Icon %q, expected ability_parry", icon)
	}
	if extras[0].Equipment[0].Enchants[0].Kind != model.EnchantGem {
		t.Errorf("Enchant kind %q, expected GEM", extras[0].Equipment[0].Enchants[0].Kind)
	}
}

func TestLocalTalentDefinitions(t *testing.T) {
	local := NewLocal(testFS(), logging.Discard())
	defs, err := local.TalentDefinitions(context.Background())
	if err != nil {
		t.Fatalf("Loading definitions failed: %s", err)
	}
	grid := defs["Warrior"].Trees[0].Grid
	if len(grid) != 2 || grid[0] != nil || grid[1].MaxRank != 5 {
		t.Errorf("Unexpected grid %+v", grid)
	}
}

func TestIconKey(t *testing.T) {
	cases := map[string]string{
		"https://render.example.com/icons/56/Ability_Parry.jpg": "ability_parry",
		"icons/inv_helmet_03.jpg":                                "inv_helmet_03",
		"Spell_Nature_Purge":                                     "spell_nature_purge",
		"":                                                       "",
	}
	for in, expected := range cases {
		if got := IconKey(in); got != expected {
			t.Errorf("IconKey(%q) = %q, expected %q", in, got, expected)
		}
	}
}

func testREST(t *testing.T, handler http.HandlerFunc) *REST {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewREST(RemoteConfig{URL: srv.URL, Key: "anon", RetryWait: time.Millisecond, MaxRetryAttempts: 2}, logging.Discard())
}

func TestRESTFindCharacter(t *testing.T) {
	r := testREST(t, func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("apikey") != "anon" || req.Header.Get("Authorization") != "Bearer anon" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if req.URL.Path != "/rest/v1/characters" || req.URL.Query().Get("name") != "eq.Exupery" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"id": 42, "name": "Exupery", "realm": "fengus-ferocity", "class": "Warrior"}]`))
	})
	c, err := r.FindCharacter(context.Background(), "Exupery", "fengus-ferocity")
	if err != nil {
		t.Fatalf("Lookup failed: %s", err)
	}
	if c == nil || c.ID != 42 || c.Class != "Warrior" {
		t.Errorf("Unexpected character %+v", c)
	}
	missing, err := r.FindCharacter(context.Background(), "Nobody", "fengus-ferocity")
	if err != nil || missing != nil {
		t.Errorf("Expected no row and no error, got %+v, %v", missing, err)
	}
}

func TestRESTSnapshots(t *testing.T) {
	r := testREST(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("order") != "recorded_at.asc" || req.URL.Query().Get("character_id") != "eq.42" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`[
		  {"id": 1, "character_id": 42, "bracket": "2v2", "rating": 1500, "won": 1, "lost": 0, "recorded_at": "2026-09-01T18:00:00+00:00"},
		  {"id": 2, "character_id": 42, "bracket": "2v2", "rating": 1516, "won": 2, "lost": 0, "recorded_at": "2026-09-02T18:00:00.123456+00:00"}
		]`))
	})
	snaps, err := r.Snapshots(context.Background(), 42)
	if err != nil {
		t.Fatalf("Loading snapshots failed: %s", err)
	}
	if len(snaps) != 2 || snaps[1].Rating != 1516 || snaps[1].Bracket != model.Bracket2v2 {
		t.Errorf("Unexpected snapshots %+v", snaps)
	}
}

func TestRESTRetriesThenGivesUp(t *testing.T) {
	var calls int32
	r := testREST(t, func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := r.FindCharacter(context.Background(), "Exupery", "fengus-ferocity")
	if !errors.Is(err, model.ErrSourceUnavailable) {
		t.Errorf("Expected unavailable after retries, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Made %d requests, expected 3", got)
	}
}

func TestRESTZeroRetriesMakesOneRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	r := NewREST(RemoteConfig{URL: srv.URL, Key: "anon", RetryWait: time.Millisecond}, logging.Discard())
	if _, err := r.Snapshots(context.Background(), 42); !errors.Is(err, model.ErrSourceUnavailable) {
		t.Errorf("Expected unavailable, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Made %d requests, expected 1", got)
	}
}

func TestRESTRetryRecovers(t *testing.T) {
	var calls int32
	r := testREST(t, func(w http.ResponseWriter, req *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	})
	snaps, err := r.Snapshots(context.Background(), 1)
	if err != nil || len(snaps) != 0 {
		t.Errorf("Expected empty history after a retry, got %v, %v", snaps, err)
	}
}

func TestNewRemoteDisabled(t *testing.T) {
	remote, err := NewRemote(RemoteConfig{URL: "https://example.supabase.co"}, logging.Discard())
	if err != nil || remote != nil {
		t.Errorf("Endpoint without key should disable the remote, got %v, %v", remote, err)
	}
	remote, err = NewRemote(RemoteConfig{URL: "https://example.supabase.co", Key: "anon"}, logging.Discard())
	if err != nil || remote == nil || remote.Name() != "rest" {
		t.Errorf("Expected REST remote, got %v, %v", remote, err)
	}
}
