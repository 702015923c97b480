package model

/* Structs shared across the aggregation layers */

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Bracket : group-size category with its own standings
type Bracket string

const (
	Bracket2v2 Bracket = "2v2"
	Bracket3v3 Bracket = "3v3"
	Bracket5v5 Bracket = "5v5"
)

// Brackets lists the known brackets in display order.
var Brackets = []Bracket{Bracket2v2, Bracket3v3, Bracket5v5}

// Valid reports whether b is one of the known brackets.
func (b Bracket) Valid() bool {
	for _, known := range Brackets {
		if b == known {
			return true
		}
	}
	return false
}

// BracketIndex returns the display position of b; unknown brackets sort last.
func BracketIndex(b Bracket) int {
	for i, known := range Brackets {
		if b == known {
			return i
		}
	}
	return len(Brackets)
}

const (
	FactionHorde    = "HORDE"
	FactionAlliance = "ALLIANCE"
)

// Winrate returns won/(won+lost)*100, or 0 when no games were played.
func Winrate(won, lost int) float64 {
	if won < 0 {
		won = 0
	}
	if lost < 0 {
		lost = 0
	}
	total := won + lost
	if total == 0 {
		return 0
	}
	return float64(won) / float64(total) * 100
}

// LeaderboardEntry : a single listing on a bracket's standings
type LeaderboardEntry struct {
	Name      string  `json:"name"`
	Realm     string  `json:"realm"`
	RealmName string  `json:"realm_name"`
	Class     string  `json:"class"`
	Race      string  `json:"race"`
	Faction   string  `json:"faction"`
	Guild     string  `json:"guild"`
	Rating    int     `json:"rating"`
	Won       int     `json:"won"`
	Lost      int     `json:"lost"`
	Played    int     `json:"played"`
	Winrate   float64 `json:"winrate"`
	Rank      int     `json:"rank"`
}

// BracketStanding : a character's standing in one bracket, as scraped
type BracketStanding struct {
	Rating   int `json:"rating"`
	Won      int `json:"won"`
	Lost     int `json:"lost"`
	Played   int `json:"played"`
	SeasonID int `json:"season_id,omitempty"`
}

// Key identifies a character: case-folded name plus exact realm slug.
type Key struct {
	Name  string
	Realm string
}

// KeyOf builds the identity key for name and realm.
func KeyOf(name, realm string) Key {
	return Key{Name: FoldName(name), Realm: realm}
}

// FoldName case-folds a character name for comparison.
// A fresh Caser is used per call since Casers are not safe for concurrent use.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// CharacterRecord : a character as seen by either source
type CharacterRecord struct {
	ID         int64                       `json:"id,omitempty"`
	Name       string                      `json:"name"`
	Realm      string                      `json:"realm"`
	RealmName  string                      `json:"realm_name,omitempty"`
	Level      int                         `json:"level,omitempty"`
	Race       string                      `json:"race,omitempty"`
	Class      string                      `json:"class,omitempty"`
	Guild      string                      `json:"guild,omitempty"`
	Faction    string                      `json:"faction,omitempty"`
	Avatar     string                      `json:"avatar,omitempty"`
	Brackets   map[Bracket]BracketStanding `json:"brackets,omitempty"`
	Equipment  []EquipmentItem             `json:"equipment,omitempty"`
	SpecGroups []SpecGroup                 `json:"spec_groups,omitempty"`
	UpdatedAt  *time.Time                  `json:"updated_at,omitempty"`
}

// Key returns the record's identity key.
func (c CharacterRecord) Key() Key {
	return KeyOf(c.Name, c.Realm)
}

// RatingSnapshot : point-in-time rating and win/loss counters for one bracket
type RatingSnapshot struct {
	ID          int64     `json:"id,omitempty"`
	CharacterID int64     `json:"character_id"`
	Bracket     Bracket   `json:"bracket"`
	Rating      int       `json:"rating"`
	Won         int       `json:"won"`
	Lost        int       `json:"lost"`
	Played      int       `json:"played,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// SpecGroup : one saved specialization configuration
type SpecGroup struct {
	Active bool         `json:"active"`
	Trees  []TalentTree `json:"trees"`
}

// TalentTree : points a character spent in one tree
type TalentTree struct {
	Name    string          `json:"name"`
	Points  int             `json:"points"`
	Talents []LearnedTalent `json:"talents"`
}

// LearnedTalent : a talent with at least the rank recorded by the scraper
type LearnedTalent struct {
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Rank    int    `json:"rank"`
	SpellID int    `json:"spell_id,omitempty"`
}

// TalentDefinitions : static talent layouts keyed by English class name
type TalentDefinitions map[string]ClassTalents

// ClassTalents : a class's localized name and tree layouts
type ClassTalents struct {
	Localized string                 `json:"ko"`
	Trees     []TalentTreeDefinition `json:"trees"`
}

// TalentTreeDefinition : fixed grid for one tree, 4 slots per tier; nil slots are empty
type TalentTreeDefinition struct {
	Name      string                  `json:"name"`
	Localized string                  `json:"ko"`
	Grid      []*TalentNodeDefinition `json:"grid"`
}

// TalentNodeDefinition : a learnable ability at a fixed grid slot
type TalentNodeDefinition struct {
	Name         string   `json:"name"`
	Icon         string   `json:"icon"`
	MaxRank      int      `json:"max_rank"`
	Descriptions []string `json:"descriptions"`
	Prereq       *string  `json:"prereq"`
}

// SlotType : equipment slot type as reported by the game API
type SlotType string

const (
	SlotHead     SlotType = "HEAD"
	SlotNeck     SlotType = "NECK"
	SlotShoulder SlotType = "SHOULDER"
	SlotBack     SlotType = "BACK"
	SlotChest    SlotType = "CHEST"
	SlotShirt    SlotType = "SHIRT"
	SlotTabard   SlotType = "TABARD"
	SlotWrist    SlotType = "WRIST"
	SlotHands    SlotType = "HANDS"
	SlotWaist    SlotType = "WAIST"
	SlotLegs     SlotType = "LEGS"
	SlotFeet     SlotType = "FEET"
	SlotFinger1  SlotType = "FINGER_1"
	SlotFinger2  SlotType = "FINGER_2"
	SlotTrinket1 SlotType = "TRINKET_1"
	SlotTrinket2 SlotType = "TRINKET_2"
	SlotMainHand SlotType = "MAIN_HAND"
	SlotOffHand  SlotType = "OFF_HAND"
	SlotRanged   SlotType = "RANGED"
)

// EnchantKind : permanent bonus or socketed gem
type EnchantKind string

const (
	EnchantPermanent EnchantKind = "PERMANENT"
	EnchantGem       EnchantKind = "GEM"
)

// Enchant : an enchantment or gem on an item
type Enchant struct {
	Kind   EnchantKind `json:"type"`
	Text   string      `json:"text"`
	Source string      `json:"source,omitempty"`
}

// EquipmentItem : an equipped item
type EquipmentItem struct {
	Slot        string    `json:"slot"`
	SlotType    SlotType  `json:"slot_type"`
	Name        string    `json:"name"`
	Quality     string    `json:"quality"`
	QualityType string    `json:"quality_type"`
	ItemID      int       `json:"item_id"`
	Icon        string    `json:"icon,omitempty"`
	Enchants    []Enchant `json:"enchants,omitempty"`
}

// BracketMeta : per-bracket summary
type BracketMeta struct {
	Count int    `json:"count"`
	File  string `json:"file"`
}

// Meta : summary document written alongside the bracket standings
type Meta struct {
	Region                 string                  `json:"region"`
	Namespace              string                  `json:"namespace"`
	Locale                 string                  `json:"locale"`
	UpdatedAt              time.Time               `json:"updated_at"`
	TotalCharactersScanned int                     `json:"total_characters_scanned"`
	TotalWithPvP           int                     `json:"total_with_pvp"`
	GuildsScanned          []string                `json:"guilds_scanned"`
	Brackets               map[Bracket]BracketMeta `json:"brackets"`
}
