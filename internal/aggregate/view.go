package aggregate

import (
	"strings"

	"pvpleaderboard.com/viewer/internal/history"
	"pvpleaderboard.com/viewer/internal/identity"
	"pvpleaderboard.com/viewer/internal/model"
	"pvpleaderboard.com/viewer/internal/talents"
)

// Sections : which parts of the detail page have data to show
type Sections struct {
	History   bool `json:"history"`
	Equipment bool `json:"equipment"`
	Talents   bool `json:"talents"`
}

// CharacterView : the detail page view model
type CharacterView struct {
	NotFound   bool                    `json:"not_found"`
	Character  model.CharacterRecord   `json:"character"`
	Origin     identity.Origin         `json:"origin,omitempty"`
	Header     string                  `json:"header,omitempty"`
	History    *history.Projection     `json:"history,omitempty"`
	Equipment  []model.EquipmentItem   `json:"equipment,omitempty"`
	Talents    []talents.Layout        `json:"talents,omitempty"`
	ActiveSpec int                     `json:"active_spec"`
	Sections   Sections                `json:"sections"`
	Sources    map[string]SourceStatus `json:"sources,omitempty"`
	Notes      []string                `json:"notes,omitempty"`

	snapshots []model.RatingSnapshot
}

// WithBracket re-projects the history chart and table onto bracket.
func (v CharacterView) WithBracket(bracket model.Bracket) CharacterView {
	if v.History == nil || bracket == "" {
		return v
	}
	p := history.Project(v.snapshots, bracket)
	v.History = &p
	return v
}

// WithSpec selects which spec group's talents are shown. Out-of-range
// indexes leave the selection unchanged.
func (v CharacterView) WithSpec(index int) CharacterView {
	if index >= 0 && index < len(v.Talents) {
		v.ActiveSpec = index
	}
	return v
}

// SelectedTalents returns the layout for the active spec group.
func (v CharacterView) SelectedTalents() (talents.Layout, bool) {
	if v.ActiveSpec < 0 || v.ActiveSpec >= len(v.Talents) {
		return talents.Layout{}, false
	}
	return v.Talents[v.ActiveSpec], true
}

var factionLabels = map[string]string{
	model.FactionHorde:    "호드",
	model.FactionAlliance: "얼라이언스",
}

// HeaderLine joins race, class, guild and faction for the page header.
func HeaderLine(c model.CharacterRecord) string {
	parts := make([]string, 0, 4)
	if c.Race != "" {
		parts = append(parts, c.Race)
	}
	if c.Class != "" {
		parts = append(parts, c.Class)
	}
	if c.Guild != "" {
		parts = append(parts, "<"+c.Guild+">")
	}
	if label, ok := factionLabels[c.Faction]; ok {
		parts = append(parts, label)
	}
	return strings.Join(parts, " · ")
}
