package spool

import (
	"sort"
	"strings"
)

// Filament describes the material loaded on a spool.
// Empty strings mean the inventory record carries no opinion on that field.
type Filament struct {
	Name     string `json:"name"`
	Material string `json:"material"`
}

// Spool is an immutable snapshot of one inventory record, held for the
// lifetime of a single check session.
type Spool struct {
	ID              int      `json:"id"`
	RemainingWeight *float64 `json:"remaining_weight"`
	Filament        Filament `json:"filament"`
}

// Name returns the trimmed filament name, or "" when absent.
func (s *Spool) Name() string {
	return strings.TrimSpace(s.Filament.Name)
}

// Material returns the trimmed material string, or "" when absent.
func (s *Spool) Material() string {
	return strings.TrimSpace(s.Filament.Material)
}

// NoSpool marks a slot with no assigned spool in ToolSlotMap.SlotToSpool.
const NoSpool = -1

// ToolSlotMap describes how logical tools map onto physical slots (gates),
// which spool sits in each slot, and which slots are pooled into an
// endless-spool group.
//
// SlotGroups is optional; a slot absent from it forms a group of one.
// A SlotToSpool value of NoSpool (or an absent slot key) means the slot has
// no assigned spool.
type ToolSlotMap struct {
	ToolToSlot  map[int]int
	SlotToSpool map[int]int
	SlotGroups  map[int]int
}

// Tools returns the mapped tool indices in ascending order.
func (m ToolSlotMap) Tools() []int {
	tools := make([]int, 0, len(m.ToolToSlot))
	for tool := range m.ToolToSlot {
		tools = append(tools, tool)
	}
	sort.Ints(tools)
	return tools
}

// SpoolForSlot returns the spool assigned to a slot.
// The second return is false when the slot has no assigned spool.
func (m ToolSlotMap) SpoolForSlot(slot int) (int, bool) {
	id, ok := m.SlotToSpool[slot]
	if !ok || id == NoSpool {
		return 0, false
	}
	return id, true
}

// GroupSlots returns the slots pooled with the given slot, in ascending
// order. A slot without a group entry is its own group of one.
func (m ToolSlotMap) GroupSlots(slot int) []int {
	group, ok := m.SlotGroups[slot]
	if !ok {
		return []int{slot}
	}
	slots := make([]int, 0, len(m.SlotGroups))
	for s, g := range m.SlotGroups {
		if g == group {
			slots = append(slots, s)
		}
	}
	sort.Ints(slots)
	return slots
}
