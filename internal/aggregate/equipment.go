package aggregate

import (
	"sort"

	"pvpleaderboard.com/viewer/internal/model"
)

var slotOrder = []model.SlotType{
	model.SlotHead,
	model.SlotNeck,
	model.SlotShoulder,
	model.SlotBack,
	model.SlotChest,
	model.SlotWrist,
	model.SlotHands,
	model.SlotWaist,
	model.SlotLegs,
	model.SlotFeet,
	model.SlotFinger1,
	model.SlotFinger2,
	model.SlotTrinket1,
	model.SlotTrinket2,
	model.SlotMainHand,
	model.SlotOffHand,
	model.SlotRanged,
}

var slotRanks = func() map[model.SlotType]int {
	ranks := make(map[model.SlotType]int, len(slotOrder))
	for i, s := range slotOrder {
		ranks[s] = i
	}
	return ranks
}()

// SlotRank returns the canonical position of a slot type.
// Every slot type missing from the table shares the rank after the last known slot.
func SlotRank(slot model.SlotType) int {
	if rank, ok := slotRanks[slot]; ok {
		return rank
	}
	return len(slotOrder)
}

// SortEquipment returns a copy of items ordered by canonical slot. The sort is stable,
// so unknown slots keep their input order behind the known ones.
func SortEquipment(items []model.EquipmentItem) []model.EquipmentItem {
	sorted := make([]model.EquipmentItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return SlotRank(sorted[i].SlotType) < SlotRank(sorted[j].SlotType)
	})
	return sorted
}

// VisibleEquipment drops cosmetic slots (shirt, tabard) that carry no stats.
func VisibleEquipment(items []model.EquipmentItem) []model.EquipmentItem {
	visible := make([]model.EquipmentItem, 0, len(items))
	for _, item := range items {
		if item.SlotType == model.SlotShirt || item.SlotType == model.SlotTabard {
			continue
		}
		visible = append(visible, item)
	}
	return visible
}
