// Package talents overlays a character's learned talents onto the static
// per-class tree layouts.
//
// The static definitions and the learned records are never modified; every
// call builds a fresh read-only layout. When a class has no definitions the
// reconstruction falls back to a flat list of learned talents (ModeFlat).
package talents

import (
	"fmt"
	"strings"

	"pvpleaderboard.com/viewer/internal/model"
)

// GridColumns is the number of slots per tier in a tree definition.
const GridColumns = 4

// NodeState : how far a node has been learned
type NodeState string

const (
	StateUnlearned NodeState = "unlearned"
	StatePartial   NodeState = "partial"
	StateFull      NodeState = "full"
)

// Mode : how a layout should be drawn
type Mode string

const (
	ModeGrid Mode = "grid"
	// ModeFlat is the degraded rendering used without static definitions.
	ModeFlat Mode = "flat"
)

// Node : one populated grid slot with its derived state
type Node struct {
	Row              int       `json:"row"`
	Column           int       `json:"column"`
	Name             string    `json:"name"`
	Icon             string    `json:"icon"`
	Rank             int       `json:"rank"`
	MaxRank          int       `json:"max_rank"`
	State            NodeState `json:"state"`
	Description      string    `json:"description"`
	DescriptionIndex int       `json:"description_index"`
	Prereq           string    `json:"prereq,omitempty"`
}

// Grid : one tree laid out on its fixed positions
type Grid struct {
	Name      string `json:"name"`
	Localized string `json:"localized"`
	Points    int    `json:"points"`
	Rows      int    `json:"rows"`
	Nodes     []Node `json:"nodes"`
}

// FlatTree : one tree's learned talents without positions
type FlatTree struct {
	Name    string                `json:"name"`
	Points  int                   `json:"points"`
	Talents []model.LearnedTalent `json:"talents"`
}

// Layout : the talents of one spec group, ready for display
type Layout struct {
	Mode       Mode       `json:"mode"`
	Active     bool       `json:"active"`
	PointSplit string     `json:"point_split"`
	Grids      []Grid     `json:"grids,omitempty"`
	Flat       []FlatTree `json:"flat,omitempty"`
}

// Degraded reports whether the layout is the flat fallback.
func (l Layout) Degraded() bool {
	return l.Mode == ModeFlat
}

// ClassDefinitions finds the definitions for class, accepting either the
// definition key or its localized class name.
func ClassDefinitions(defs model.TalentDefinitions, class string) (model.ClassTalents, bool) {
	if class == "" || defs == nil {
		return model.ClassTalents{}, false
	}
	if ct, ok := defs[class]; ok {
		return ct, true
	}
	folded := model.FoldName(class)
	for key, ct := range defs {
		if model.FoldName(key) == folded || (ct.Localized != "" && model.FoldName(ct.Localized) == folded) {
			return ct, true
		}
	}
	return model.ClassTalents{}, false
}

// Reconstruct lays out group's talents for class.
func Reconstruct(group model.SpecGroup, class string, defs model.TalentDefinitions) Layout {
	ct, ok := ClassDefinitions(defs, class)
	if !ok || len(ct.Trees) == 0 {
		return flatten(group)
	}
	layout := Layout{Mode: ModeGrid, Active: group.Active, Grids: make([]Grid, 0, len(ct.Trees))}
	points := make([]string, 0, len(ct.Trees))
	for _, def := range ct.Trees {
		grid := buildGrid(def, matchTree(group.Trees, def))
		layout.Grids = append(layout.Grids, grid)
		points = append(points, fmt.Sprint(grid.Points))
	}
	layout.PointSplit = strings.Join(points, "/")
	return layout
}

// ReconstructGroups lays out every spec group independently and returns the
// index of the active one (0 when none is flagged).
func ReconstructGroups(groups []model.SpecGroup, class string, defs model.TalentDefinitions) ([]Layout, int) {
	layouts := make([]Layout, 0, len(groups))
	active := 0
	for i, g := range groups {
		layouts = append(layouts, Reconstruct(g, class, defs))
		if g.Active && !groups[active].Active {
			active = i
		}
	}
	return layouts, active
}

// matchTree finds the character's tree for def by localized or English name.
// Nil means nothing was learned in that tree.
func matchTree(trees []model.TalentTree, def model.TalentTreeDefinition) *model.TalentTree {
	for i := range trees {
		name := trees[i].Name
		if name == "" {
			continue
		}
		if (def.Localized != "" && name == def.Localized) || name == def.Name {
			return &trees[i]
		}
	}
	return nil
}

func buildGrid(def model.TalentTreeDefinition, tree *model.TalentTree) Grid {
	learned := make(map[string]model.LearnedTalent)
	grid := Grid{
		Name:      def.Name,
		Localized: def.Localized,
		Rows:      (len(def.Grid) + GridColumns - 1) / GridColumns,
		Nodes:     make([]Node, 0, len(def.Grid)),
	}
	if tree != nil {
		grid.Points = tree.Points
		for _, t := range tree.Talents {
			if t.Icon != "" {
				learned[iconKey(t.Icon)] = t
			}
		}
	}
	for i, slot := range def.Grid {
		if slot == nil {
			continue
		}
		rank := 0
		if t, ok := learned[iconKey(slot.Icon)]; ok && slot.Icon != "" {
			rank = t.Rank
		}
		grid.Nodes = append(grid.Nodes, buildNode(i, slot, rank))
	}
	if tree == nil || grid.Points == 0 {
		grid.Points = spentPoints(grid.Nodes)
	}
	return grid
}

func buildNode(index int, def *model.TalentNodeDefinition, rank int) Node {
	if rank < 0 {
		rank = 0
	}
	maxRank := def.MaxRank
	if maxRank < 1 {
		maxRank = 1
	}
	node := Node{
		Row:     index/GridColumns + 1,
		Column:  index%GridColumns + 1,
		Name:    def.Name,
		Icon:    def.Icon,
		Rank:    min(rank, maxRank),
		MaxRank: maxRank,
		State:   state(rank, maxRank),
	}
	if def.Prereq != nil {
		node.Prereq = *def.Prereq
	}
	if n := len(def.Descriptions); n > 0 {
		node.DescriptionIndex = clamp(rank, 1, n) - 1
		node.Description = def.Descriptions[node.DescriptionIndex]
	}
	return node
}

func state(rank, maxRank int) NodeState {
	switch {
	case rank >= maxRank:
		return StateFull
	case rank > 0:
		return StatePartial
	}
	return StateUnlearned
}

func spentPoints(nodes []Node) int {
	total := 0
	for _, n := range nodes {
		total += n.Rank
	}
	return total
}

// flatten is the degraded path: learned talents only, grouped by tree.
func flatten(group model.SpecGroup) Layout {
	layout := Layout{Mode: ModeFlat, Active: group.Active, Flat: make([]FlatTree, 0, len(group.Trees))}
	points := make([]string, 0, len(group.Trees))
	for _, tree := range group.Trees {
		flat := FlatTree{Name: tree.Name, Points: tree.Points, Talents: make([]model.LearnedTalent, 0, len(tree.Talents))}
		for _, t := range tree.Talents {
			if t.Rank > 0 {
				flat.Talents = append(flat.Talents, t)
			}
		}
		layout.Flat = append(layout.Flat, flat)
		points = append(points, fmt.Sprint(tree.Points))
	}
	layout.PointSplit = strings.Join(points, "/")
	return layout
}

func iconKey(icon string) string {
	return strings.ToLower(strings.TrimSpace(icon))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
