package leaderboard

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"pvpleaderboard.com/viewer/internal/model"
)

// SortKey : numeric column a leaderboard can be sorted by
type SortKey string

const (
	SortNone    SortKey = ""
	SortRating  SortKey = "rating"
	SortWinrate SortKey = "winrate"
)

// ParseSortKey maps a request value to a key; anything unknown is SortNone.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortRating:
		return SortRating
	case SortWinrate:
		return SortWinrate
	}
	return SortNone
}

// Direction multiplies the comparator result.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// ParseDirection maps "asc"/"desc" to a Direction, defaulting to Descending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return Ascending
	}
	return Descending
}

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// SortState : the active sort column and direction
type SortState struct {
	Key SortKey   `json:"key"`
	Dir Direction `json:"dir"`
}

// Select returns the state after a column is chosen: a new key starts
// descending, re-selecting the current key flips direction.
func (s SortState) Select(key SortKey) SortState {
	if key == SortNone {
		return SortState{}
	}
	if s.Key == key {
		return SortState{Key: key, Dir: -s.dir()}
	}
	return SortState{Key: key, Dir: Descending}
}

func (s SortState) dir() Direction {
	if s.Dir == Ascending {
		return Ascending
	}
	return Descending
}

// Query : the free-text search and sort applied to one bracket
type Query struct {
	Text string
	Sort SortState
}

// Result : the ordered entries to display
type Result struct {
	Entries []model.LeaderboardEntry `json:"entries"`
	Empty   bool                     `json:"empty"`
}

// Apply filters then sorts entries. The input slice is never modified.
func Apply(entries []model.LeaderboardEntry, q Query) Result {
	out := Sort(Filter(entries, q.Text), q.Sort)
	return Result{Entries: out, Empty: len(out) == 0}
}

// Filter keeps entries whose name, guild, class or realm display name contains
// text, ignoring case. Blank text keeps everything.
func Filter(entries []model.LeaderboardEntry, text string) []model.LeaderboardEntry {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(text))
	filtered := make([]model.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if needle == "" || matches(folder, e, needle) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func matches(folder cases.Caser, e model.LeaderboardEntry, needle string) bool {
	fields := []string{e.Name, e.Guild, e.Class, RealmDisplayName(e)}
	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.Contains(folder.String(field), needle) {
			return true
		}
	}
	return false
}

// Sort returns a copy of entries ordered by state. With no key the bracket's
// rank order is kept. Ties stay in input order.
func Sort(entries []model.LeaderboardEntry, state SortState) []model.LeaderboardEntry {
	sorted := make([]model.LeaderboardEntry, len(entries))
	copy(sorted, entries)
	if state.Key == SortNone {
		sort.SliceStable(sorted, func(i, j int) bool {
			return rankOrder(sorted[i].Rank) < rankOrder(sorted[j].Rank)
		})
		return sorted
	}
	dir := float64(state.dir())
	sort.SliceStable(sorted, func(i, j int) bool {
		return (sortValue(sorted[i], state.Key)-sortValue(sorted[j], state.Key))*dir < 0
	})
	return sorted
}

// rankOrder puts entries without a rank after every ranked entry.
func rankOrder(rank int) int {
	if rank <= 0 {
		return int(^uint(0) >> 1)
	}
	return rank
}

func sortValue(e model.LeaderboardEntry, key SortKey) float64 {
	switch key {
	case SortRating:
		return float64(e.Rating)
	case SortWinrate:
		return e.Winrate
	}
	return 0
}
