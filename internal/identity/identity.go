package identity

import (
	"fmt"

	"pvpleaderboard.com/viewer/internal/model"
)

// Origin : which source an identity was established from
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// Resolution : the merged record and where its identity came from
type Resolution struct {
	Record model.CharacterRecord `json:"record"`
	Origin Origin                `json:"origin"`
}

// HasHistory reports whether rating history can be looked up, which needs a
// remote identity.
func (r Resolution) HasHistory() bool {
	return r.Origin == OriginRemote
}

// FindLocal scans the local dataset for name (case-insensitive) on realm
// (exact). Returns nil when absent.
func FindLocal(extras []model.CharacterRecord, name, realm string) *model.CharacterRecord {
	key := model.KeyOf(name, realm)
	for i := range extras {
		if extras[i].Key() == key {
			found := extras[i]
			return &found
		}
	}
	return nil
}

// Resolve merges the remote and local records found for one request.
// With neither present it returns model.ErrNotFound.
func Resolve(name, realm string, remote, local *model.CharacterRecord) (Resolution, error) {
	switch {
	case remote != nil:
		return Resolution{Record: Merge(*remote, local), Origin: OriginRemote}, nil
	case local != nil:
		record := Merge(model.CharacterRecord{}, local)
		record.ID = 0
		return Resolution{Record: record, Origin: OriginLocal}, nil
	}
	return Resolution{}, fmt.Errorf("%s-%s: %w", name, realm, model.ErrNotFound)
}

// Merge combines a remote record with an optional local one. Remote fields win
// whenever they are set; local fields fill the gaps. The remote id is kept.
func Merge(remote model.CharacterRecord, local *model.CharacterRecord) model.CharacterRecord {
	if local == nil {
		return remote
	}
	merged := remote
	merged.Name = pick(remote.Name, local.Name)
	merged.Realm = pick(remote.Realm, local.Realm)
	merged.RealmName = pick(remote.RealmName, local.RealmName)
	merged.Race = pick(remote.Race, local.Race)
	merged.Class = pick(remote.Class, local.Class)
	merged.Guild = pick(remote.Guild, local.Guild)
	merged.Faction = pick(remote.Faction, local.Faction)
	merged.Avatar = pick(remote.Avatar, local.Avatar)
	if merged.Level == 0 {
		merged.Level = local.Level
	}
	if len(merged.Brackets) == 0 {
		merged.Brackets = local.Brackets
	}
	if len(merged.Equipment) == 0 {
		merged.Equipment = local.Equipment
	}
	if len(merged.SpecGroups) == 0 {
		merged.SpecGroups = local.SpecGroups
	}
	if merged.UpdatedAt == nil {
		merged.UpdatedAt = local.UpdatedAt
	}
	return merged
}

func pick(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}
