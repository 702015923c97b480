// Package history projects a character's rating snapshots into the current
// standing per bracket, a chart series, and a newest-first table with deltas.
// It performs no I/O.
package history

import (
	"sort"
	"strconv"
	"time"

	"pvpleaderboard.com/viewer/internal/model"
)

// Card : latest standing in one bracket
type Card struct {
	Bracket    model.Bracket `json:"bracket"`
	Rating     int           `json:"rating"`
	Won        int           `json:"won"`
	Lost       int           `json:"lost"`
	Winrate    float64       `json:"winrate"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Point : one chart sample
type Point struct {
	RecordedAt time.Time `json:"recorded_at"`
	Rating     int       `json:"rating"`
}

// Row : one history table line
type Row struct {
	RecordedAt time.Time     `json:"recorded_at"`
	Bracket    model.Bracket `json:"bracket"`
	Rating     int           `json:"rating"`
	Won        int           `json:"won"`
	Lost       int           `json:"lost"`
	Winrate    float64       `json:"winrate"`
	Delta      int           `json:"delta"`
}

// DeltaLabel renders the delta as "+N", "-N", or "-" when unchanged.
func (r Row) DeltaLabel() string {
	switch {
	case r.Delta > 0:
		return "+" + strconv.Itoa(r.Delta)
	case r.Delta < 0:
		return strconv.Itoa(r.Delta)
	}
	return "-"
}

// Projection : everything the detail view shows for one selected bracket
type Projection struct {
	Cards    []Card          `json:"cards"`
	Brackets []model.Bracket `json:"brackets"`
	Active   model.Bracket   `json:"active"`
	Series   []Point         `json:"series"`
	Rows     []Row           `json:"rows"`
}

// Project builds the projection for bracket. An empty bracket selects the
// first bracket that has snapshots.
func Project(snapshots []model.RatingSnapshot, bracket model.Bracket) Projection {
	brackets := Brackets(snapshots)
	if bracket == "" && len(brackets) > 0 {
		bracket = brackets[0]
	}
	return Projection{
		Cards:    Cards(snapshots),
		Brackets: brackets,
		Active:   bracket,
		Series:   Series(snapshots, bracket),
		Rows:     Table(snapshots, bracket),
	}
}

// Brackets lists the brackets present in snapshots, known brackets first in
// display order, then any others alphabetically.
func Brackets(snapshots []model.RatingSnapshot) []model.Bracket {
	seen := make(map[model.Bracket]bool)
	brackets := make([]model.Bracket, 0)
	for _, s := range snapshots {
		if !seen[s.Bracket] {
			seen[s.Bracket] = true
			brackets = append(brackets, s.Bracket)
		}
	}
	sortBrackets(brackets)
	return brackets
}

func sortBrackets(brackets []model.Bracket) {
	sort.SliceStable(brackets, func(i, j int) bool {
		ii, jj := model.BracketIndex(brackets[i]), model.BracketIndex(brackets[j])
		if ii != jj {
			return ii < jj
		}
		return brackets[i] < brackets[j]
	})
}

// Cards returns the latest snapshot of each bracket. On equal timestamps the
// first one seen wins.
func Cards(snapshots []model.RatingSnapshot) []Card {
	latest := make(map[model.Bracket]model.RatingSnapshot)
	for _, s := range snapshots {
		current, ok := latest[s.Bracket]
		if !ok || s.RecordedAt.After(current.RecordedAt) {
			latest[s.Bracket] = s
		}
	}
	brackets := make([]model.Bracket, 0, len(latest))
	for b := range latest {
		brackets = append(brackets, b)
	}
	sortBrackets(brackets)
	cards := make([]Card, 0, len(brackets))
	for _, b := range brackets {
		s := latest[b]
		cards = append(cards, Card{
			Bracket:    b,
			Rating:     s.Rating,
			Won:        s.Won,
			Lost:       s.Lost,
			Winrate:    model.Winrate(s.Won, s.Lost),
			RecordedAt: s.RecordedAt,
		})
	}
	return cards
}

// Series returns the bracket's ratings in ascending time order.
func Series(snapshots []model.RatingSnapshot, bracket model.Bracket) []Point {
	filtered := forBracket(snapshots, bracket)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].RecordedAt.Before(filtered[j].RecordedAt)
	})
	points := make([]Point, 0, len(filtered))
	for _, s := range filtered {
		points = append(points, Point{RecordedAt: s.RecordedAt, Rating: s.Rating})
	}
	return points
}

// Table returns the bracket's snapshots newest first. Each row's delta is its
// rating minus the next older row's; the oldest row has delta 0.
func Table(snapshots []model.RatingSnapshot, bracket model.Bracket) []Row {
	filtered := forBracket(snapshots, bracket)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].RecordedAt.After(filtered[j].RecordedAt)
	})
	rows := make([]Row, 0, len(filtered))
	for i, s := range filtered {
		delta := 0
		if i+1 < len(filtered) {
			delta = s.Rating - filtered[i+1].Rating
		}
		rows = append(rows, Row{
			RecordedAt: s.RecordedAt,
			Bracket:    s.Bracket,
			Rating:     s.Rating,
			Won:        s.Won,
			Lost:       s.Lost,
			Winrate:    model.Winrate(s.Won, s.Lost),
			Delta:      delta,
		})
	}
	return rows
}

func forBracket(snapshots []model.RatingSnapshot, bracket model.Bracket) []model.RatingSnapshot {
	filtered := make([]model.RatingSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s.Bracket == bracket {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
