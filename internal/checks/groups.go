package checks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spoolguard/spoolguard/internal/spool"
)

// groupAggregate is the pooled view of one tool's slot and every slot
// sharing its endless-spool group.
type groupAggregate struct {
	// Slots in the group, ascending.
	Slots []int
	// Fetched spools, in slot order.
	Spools []*spool.Spool
	// SkippedSlots had no assigned spool or failed to fetch.
	SkippedSlots []int
	// FetchFailures counts slots that had a spool assigned but could not be
	// fetched. Distinct from unassigned slots for fail-open/fail-closed
	// decisions.
	FetchFailures int

	// Weight is the summed remaining weight across fetched spools, nil when
	// no fetched spool carried weight data.
	Weight *float64
	// Materials and Names hold the distinct non-empty values across the
	// group, lower-cased for materials, original-cased first occurrence for
	// names, both sorted.
	Materials []string
	Names     []string
}

// subject renders the aggregate for check messages: the single spool when
// the group has one member, otherwise the pooled group.
func (g groupAggregate) subject() string {
	if len(g.Spools) == 1 && len(g.Slots) == 1 {
		return spoolSubject(g.Spools[0])
	}
	ids := make([]string, len(g.Spools))
	for i, sp := range g.Spools {
		ids[i] = fmt.Sprintf("%d", sp.ID)
	}
	return fmt.Sprintf("Spool group [%s]", strings.Join(ids, ", "))
}

func spoolSubject(sp *spool.Spool) string {
	name := sp.Name()
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("Spool %d (%s)", sp.ID, name)
}

// aggregateGroup resolves every spool pooled with the given slot and folds
// their weight, material and name into one view.
//
// A slot with no assigned spool is skipped. A slot whose fetch fails is
// skipped too, with a log entry; one sick slot must not abort the whole
// pool. Weight is the plain sum over fetched spools that carry weight data.
func aggregateGroup(ctx context.Context, fetch func(context.Context, int) (*spool.Spool, error), m spool.ToolSlotMap, slot int, log *slog.Logger) groupAggregate {
	agg := groupAggregate{Slots: m.GroupSlots(slot)}

	materials := map[string]struct{}{}
	names := map[string]string{} // folded -> first original spelling

	for _, s := range agg.Slots {
		id, assigned := m.SpoolForSlot(s)
		if !assigned {
			agg.SkippedSlots = append(agg.SkippedSlots, s)
			continue
		}
		record, err := fetch(ctx, id)
		if err != nil {
			agg.SkippedSlots = append(agg.SkippedSlots, s)
			agg.FetchFailures++
			log.Warn("skipping grouped slot, spool fetch failed",
				"slot", s, "spool_id", id, "error", err)
			continue
		}
		agg.Spools = append(agg.Spools, record)

		if record.RemainingWeight != nil {
			if agg.Weight == nil {
				agg.Weight = new(float64)
			}
			*agg.Weight += *record.RemainingWeight
		}
		if mat := record.Material(); mat != "" {
			materials[strings.ToLower(mat)] = struct{}{}
		}
		if name := record.Name(); name != "" {
			folded := strings.ToLower(name)
			if _, seen := names[folded]; !seen {
				names[folded] = name
			}
		}
	}

	for mat := range materials {
		agg.Materials = append(agg.Materials, mat)
	}
	sort.Strings(agg.Materials)
	for _, name := range names {
		agg.Names = append(agg.Names, name)
	}
	sort.Strings(agg.Names)
	return agg
}

// consensus reduces a group's distinct values for one field to a single
// observed value. The outcomes are: one distinct value (the consensus),
// several (ambiguous, rule skipped with a notice), or none (undetermined,
// resolved by policy).
type consensusOutcome int

const (
	consensusValue consensusOutcome = iota
	consensusAmbiguous
	consensusUndetermined
)

func consensus(values []string) (string, consensusOutcome) {
	switch len(values) {
	case 0:
		return "", consensusUndetermined
	case 1:
		return values[0], consensusValue
	default:
		return "", consensusAmbiguous
	}
}
