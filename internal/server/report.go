package server

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind : what the user wants tracked, for the pre-filled issue link that asks
// for a character or guild to be added to the scraper's sources
type Kind string

const (
	KindCharacter Kind = "character"
	KindGuild     Kind = "guild"
)

// ErrMissingName is returned when no name was given.
var ErrMissingName = errors.New("name is required")

const addSourceLabel string = "add-source"

// ParseKind defaults to KindCharacter for anything but "guild".
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), string(KindGuild)) {
		return KindGuild
	}
	return KindCharacter
}

// Label returns the kind as shown to users.
func (k Kind) Label() string {
	if k == KindGuild {
		return "길드"
	}
	return "캐릭터"
}

// IssueURL : new-issue link on repo with title, body and label filled in
func IssueURL(repo string, kind Kind, name, realmLabel string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrMissingName
	}
	q := url.Values{}
	q.Set("title", fmt.Sprintf("[추가] %s: %s", kind.Label(), name))
	q.Set("body", fmt.Sprintf("%s:\n- %s / %s", kind.Label(), name, realmLabel))
	q.Set("labels", addSourceLabel)
	u := url.URL{
		Scheme:   "https",
		Host:     "github.com",
		Path:     "/" + strings.Trim(repo, "/") + "/issues/new",
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}
