package server

import (
	"errors"
	"net/url"
	"testing"
)

func TestIssueURL(t *testing.T) {
	raw, err := IssueURL("kenziedev/wowtbc_arena_anni", KindCharacter, " Exupery ", "펜구스의 흉포")
	if err != nil {
		t.Fatalf("IssueURL failed: %s", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Invalid URL %q: %s", raw, err)
	}
	if u.Host != "github.com" || u.Path != "/kenziedev/wowtbc_arena_anni/issues/new" {
		t.Errorf("Unexpected target %s%s", u.Host, u.Path)
	}
	q := u.Query()
	if got := q.Get("title"); got != "[추가] 캐릭터: Exupery" {
		t.Errorf("Unexpected title %q", got)
	}
	if got := q.Get("body"); got != "캐릭터:\n- Exupery / 펜구스의 흉포" {
		t.Errorf("Unexpected body %q", got)
	}
	if got := q.Get("labels"); got != "add-source" {
		t.Errorf("Unexpected labels %q", got)
	}
}

func TestIssueURLGuild(t *testing.T) {
	raw, err := IssueURL("/owner/repo/", ParseKind("GUILD"), "Foo", "moldars-moxie")
	if err != nil {
		t.Fatalf("IssueURL failed: %s", err)
	}
	u, _ := url.Parse(raw)
	if u.Path != "/owner/repo/issues/new" {
		t.Errorf("Unexpected path %s", u.Path)
	}
	if got := u.Query().Get("title"); got != "[추가] 길드: Foo" {
		t.Errorf("Unexpected title %q", got)
	}
}

func TestIssueURLRequiresName(t *testing.T) {
	if _, err := IssueURL("owner/repo", KindCharacter, "  ", "realm"); !errors.Is(err, ErrMissingName) {
		t.Errorf("Expected ErrMissingName, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if ParseKind("") != KindCharacter || ParseKind("anything") != KindCharacter {
		t.Error("Unknown kinds should default to character")
	}
	if ParseKind("guild") != KindGuild {
		t.Error("guild not parsed")
	}
}
