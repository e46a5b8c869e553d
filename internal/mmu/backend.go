// Package mmu models the optional multi-material backend as a capability.
//
// The checker asks two things of a backend: whether it is enabled, and its
// live tool/slot map. When no backend is configured the NullBackend stands
// in, so the engine never branches on backend presence.
package mmu

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spoolguard/spoolguard/internal/moonraker"
	"github.com/spoolguard/spoolguard/internal/spool"
)

// Backend is the multi-material subsystem capability.
//
// Enabled may require a network probe; implementations must answer false on
// probe failure rather than returning an error, so the checker degrades to
// single-spool mode.
type Backend interface {
	Enabled(ctx context.Context) bool
	SlotMap(ctx context.Context) (spool.ToolSlotMap, error)
}

// NullBackend is the no-op default used when no multi-material unit is
// configured.
type NullBackend struct{}

func (NullBackend) Enabled(context.Context) bool { return false }

func (NullBackend) SlotMap(context.Context) (spool.ToolSlotMap, error) {
	return spool.ToolSlotMap{}, fmt.Errorf("no multi-material backend configured")
}

// MoonrakerBackend reads a Happy-Hare style unit through Moonraker's
// printer objects.
type MoonrakerBackend struct {
	client *moonraker.Client
	log    *slog.Logger
}

// NewMoonrakerBackend wraps a Moonraker client as a Backend.
func NewMoonrakerBackend(client *moonraker.Client) *MoonrakerBackend {
	return &MoonrakerBackend{client: client, log: slog.Default()}
}

// Enabled probes the mmu printer object. Probe failures log and answer
// false.
func (b *MoonrakerBackend) Enabled(ctx context.Context) bool {
	status, ok, err := b.client.MMUStatus(ctx)
	if err != nil {
		b.log.Warn("mmu probe failed, treating backend as disabled", "error", err)
		return false
	}
	return ok && status.Enabled
}

// SlotMap converts the unit's live state into a ToolSlotMap.
func (b *MoonrakerBackend) SlotMap(ctx context.Context) (spool.ToolSlotMap, error) {
	status, ok, err := b.client.MMUStatus(ctx)
	if err != nil {
		return spool.ToolSlotMap{}, fmt.Errorf("read mmu state: %w", err)
	}
	if !ok {
		return spool.ToolSlotMap{}, fmt.Errorf("printer reports no mmu object")
	}
	return FromStatus(status), nil
}

// FromStatus builds a ToolSlotMap from raw MMU state arrays.
// Gates with spool id -1 are left unassigned.
func FromStatus(status *moonraker.MMUStatus) spool.ToolSlotMap {
	m := spool.ToolSlotMap{
		ToolToSlot:  make(map[int]int, len(status.TTGMap)),
		SlotToSpool: make(map[int]int, len(status.GateSpoolID)),
		SlotGroups:  make(map[int]int, len(status.EndlessSpoolGroups)),
	}
	for tool, gate := range status.TTGMap {
		m.ToolToSlot[tool] = gate
	}
	for gate, id := range status.GateSpoolID {
		if id >= 0 {
			m.SlotToSpool[gate] = id
		}
	}
	for gate, group := range status.EndlessSpoolGroups {
		m.SlotGroups[gate] = group
	}
	return m
}
