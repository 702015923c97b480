package leaderboard

import (
	"fmt"
	"time"

	"pvpleaderboard.com/viewer/internal/model"
)

// RealmLabels maps realm slugs to their localized display names.
var RealmLabels = map[string]string{
	"fengus-ferocity": "펜구스의 흉포",
	"moldars-moxie":   "몰다르의 투지",
}

// RealmDisplayName returns the entry's realm name, falling back to the label
// table and finally the slug.
func RealmDisplayName(e model.LeaderboardEntry) string {
	if e.RealmName != "" {
		return e.RealmName
	}
	return RealmLabel(e.Realm)
}

// RealmLabel returns the localized label for a realm slug, or the slug itself.
func RealmLabel(slug string) string {
	if label, ok := RealmLabels[slug]; ok {
		return label
	}
	return slug
}

// RatingTier buckets a rating for display.
func RatingTier(rating int) string {
	switch {
	case rating >= 2000:
		return "high"
	case rating >= 1500:
		return "mid"
	}
	return "low"
}

// WinrateTier buckets a winrate percentage for display.
func WinrateTier(winrate float64) string {
	switch {
	case winrate >= 60:
		return "high"
	case winrate >= 45:
		return "mid"
	}
	return "low"
}

// MetaLine : summary shown above a bracket's table
type MetaLine struct {
	Count     int       `json:"count"`
	Scanned   int       `json:"scanned"`
	UpdatedAt time.Time `json:"updated_at"`
	Known     bool      `json:"known"`
}

// NewMetaLine summarizes meta for bracket. A nil meta yields an unknown line.
func NewMetaLine(meta *model.Meta, bracket model.Bracket) MetaLine {
	if meta == nil {
		return MetaLine{}
	}
	line := MetaLine{Scanned: meta.TotalCharactersScanned, UpdatedAt: meta.UpdatedAt, Known: true}
	if bm, ok := meta.Brackets[bracket]; ok {
		line.Count = bm.Count
	}
	return line
}

func (m MetaLine) String() string {
	if !m.Known {
		return ""
	}
	return fmt.Sprintf("%d명 · %d명 스캔 · %s", m.Count, m.Scanned, m.UpdatedAt.Local().Format("2006-01-02 15:04"))
}
