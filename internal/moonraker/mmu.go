package moonraker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// MMUStatus is the live state of a Happy-Hare style multi-material unit as
// exposed through Moonraker's printer objects.
//
// TTGMap maps tool index to gate. GateSpoolID holds the inventory spool id
// loaded in each gate (-1 for an empty gate). EndlessSpoolGroups assigns each
// gate to a pooled group.
type MMUStatus struct {
	Enabled            bool  `json:"enabled"`
	TTGMap             []int `json:"ttg_map"`
	GateSpoolID        []int `json:"gate_spool_id"`
	EndlessSpoolGroups []int `json:"endless_spool_groups"`
}

// MMUStatus queries the mmu printer object.
// The boolean return is false when the printer has no mmu object at all.
func (c *Client) MMUStatus(ctx context.Context) (*MMUStatus, bool, error) {
	var payload struct {
		Result struct {
			Status struct {
				MMU *MMUStatus `json:"mmu"`
			} `json:"status"`
		} `json:"result"`
	}

	query := url.Values{"mmu": []string{""}}
	if err := c.do(ctx, http.MethodGet, "/printer/objects/query", query, &payload); err != nil {
		return nil, false, fmt.Errorf("query mmu object: %w", err)
	}
	if payload.Result.Status.MMU == nil {
		return nil, false, nil
	}
	return payload.Result.Status.MMU, true, nil
}
