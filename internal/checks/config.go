package checks

import "fmt"

// GroupMaterialPolicy decides what an endless-spool group with zero
// non-empty material entries means.
type GroupMaterialPolicy string

const (
	// GroupMaterialSkip treats an undetermined group like an ambiguous one:
	// the material rule is skipped with a notice.
	GroupMaterialSkip GroupMaterialPolicy = "skip"
	// GroupMaterialCompliant treats an undetermined group as compliant.
	GroupMaterialCompliant GroupMaterialPolicy = "compliant"
)

// Config is the process-wide check policy. It is read once at Checker
// construction and never mutated during a session.
type Config struct {
	WeightMarginGrams float64 `yaml:"weight_margin_grams" json:"weight_margin_grams"`

	EnableWeightCheck   bool `yaml:"enable_weight_check" json:"enable_weight_check"`
	EnableMaterialCheck bool `yaml:"enable_material_check" json:"enable_material_check"`
	EnableNameCheck     bool `yaml:"enable_filament_name_check" json:"enable_filament_name_check"`

	MaterialMismatchSeverity Severity `yaml:"material_mismatch_severity" json:"material_mismatch_severity"`
	NameMismatchSeverity     Severity `yaml:"filament_name_mismatch_severity" json:"filament_name_mismatch_severity"`

	GroupMaterialPolicy GroupMaterialPolicy `yaml:"group_material_policy" json:"group_material_policy"`

	// ParallelFetch evaluates tools concurrently. The session cache
	// deduplicates fetches of a shared spool either way.
	ParallelFetch bool `yaml:"parallel_fetch" json:"parallel_fetch"`
}

// DefaultConfig mirrors the plugin's shipped defaults: weight and material
// checks on, name check off, a 5 gram margin, and advisory severities for
// the match rules.
func DefaultConfig() Config {
	return Config{
		WeightMarginGrams:        5.0,
		EnableWeightCheck:        true,
		EnableMaterialCheck:      true,
		EnableNameCheck:          false,
		MaterialMismatchSeverity: SeverityWarning,
		NameMismatchSeverity:     SeverityInfo,
		GroupMaterialPolicy:      GroupMaterialSkip,
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.WeightMarginGrams < 0 {
		return fmt.Errorf("weight_margin_grams must be >= 0, got %v", c.WeightMarginGrams)
	}
	if _, err := ParseSeverity(string(c.MaterialMismatchSeverity)); err != nil {
		return fmt.Errorf("material_mismatch_severity: %w", err)
	}
	if _, err := ParseSeverity(string(c.NameMismatchSeverity)); err != nil {
		return fmt.Errorf("filament_name_mismatch_severity: %w", err)
	}
	switch c.GroupMaterialPolicy {
	case GroupMaterialSkip, GroupMaterialCompliant:
	default:
		return fmt.Errorf("group_material_policy must be %q or %q, got %q",
			GroupMaterialSkip, GroupMaterialCompliant, c.GroupMaterialPolicy)
	}
	return nil
}

// materialActive reports whether the material rule can ever run.
func (c Config) materialActive() bool {
	return c.EnableMaterialCheck && c.MaterialMismatchSeverity != SeverityIgnore
}

// nameActive reports whether the name rule can ever run.
func (c Config) nameActive() bool {
	return c.EnableNameCheck && c.NameMismatchSeverity != SeverityIgnore
}

// anyRuleActive reports whether any evaluator can run at all. When false the
// session never touches the inventory.
func (c Config) anyRuleActive() bool {
	return c.EnableWeightCheck || c.materialActive() || c.nameActive()
}

// anyMandatoryRule reports whether a failure to resolve a tool's record
// should block the job. The weight rule is always mandatory when enabled;
// the match rules are mandatory only at error severity.
func (c Config) anyMandatoryRule() bool {
	return c.EnableWeightCheck ||
		(c.materialActive() && c.MaterialMismatchSeverity.Blocks()) ||
		(c.nameActive() && c.NameMismatchSeverity.Blocks())
}
