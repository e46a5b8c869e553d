package metadata

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Extractor parses one metadata field out of a gcode footer and records it
// on md. It reports whether the field was found.
type Extractor func(footer string, md *JobMetadata) bool

var registry = map[string]Extractor{}

// Register adds a field extractor under the given field name.
// Registering the same field twice is a programming error and panics.
func Register(field string, fn Extractor) {
	if _, dup := registry[field]; dup {
		panic(fmt.Sprintf("metadata: extractor %q registered twice", field))
	}
	registry[field] = fn
}

// Fields returns the registered field names in ascending order.
func Fields() []string {
	fields := make([]string, 0, len(registry))
	for f := range registry {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ParseFooter runs every registered extractor over the footer text and
// returns the assembled metadata. Fields no extractor matched stay nil.
func ParseFooter(footer string) *JobMetadata {
	md := &JobMetadata{}
	for _, extract := range registry {
		extract(footer, md)
	}
	return md
}

func init() {
	Register("filament_weights", extractWeights)
	Register("filament_names", extractNames)
	Register("filament_types", extractTypes)
	Register("referenced_tools", extractReferencedTools)
}

var (
	reFilamentUsed    = regexp.MustCompile(`(?m)^;?\s*filament used \[g\]\s*=\s*(.+)$`)
	reFilamentName    = regexp.MustCompile(`(?m)^;\s*filament_settings_id\s*=\s*(.+)$`)
	reFilamentType    = regexp.MustCompile(`(?m)^;\s*filament_type\s*=\s*(.+)$`)
	reReferencedTools = regexp.MustCompile(`(?m)^;\s*referenced_tools\s*=\s*(.+)$`)
	reFloat           = regexp.MustCompile(`\d+\.?\d*`)
	// One list element: a quoted string (escaped quotes allowed) or a run of
	// non-separator characters. Separators are "," and ";".
	reListElement = regexp.MustCompile(`\s*(")(?:\\"|[^"])*"\s*|[^,;]+`)
)

func extractWeights(footer string, md *JobMetadata) bool {
	m := reFilamentUsed.FindStringSubmatch(footer)
	if m == nil {
		return false
	}
	weights := findFloats(m[1])
	if len(weights) == 0 {
		return false
	}
	md.Weights = weights
	return true
}

func extractNames(footer string, md *JobMetadata) bool {
	m := reFilamentName.FindStringSubmatch(footer)
	if m == nil {
		return false
	}
	names := splitList(m[1])
	if len(names) == 0 {
		return false
	}
	md.Names = names
	return true
}

func extractTypes(footer string, md *JobMetadata) bool {
	m := reFilamentType.FindStringSubmatch(footer)
	if m == nil {
		return false
	}
	types := splitList(m[1])
	if len(types) == 0 {
		return false
	}
	md.Materials = types
	return true
}

func extractReferencedTools(footer string, md *JobMetadata) bool {
	m := reReferencedTools.FindStringSubmatch(footer)
	if m == nil {
		return false
	}
	var tools []int
	for _, raw := range strings.Split(m[1], ",") {
		tool, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		tools = append(tools, tool)
	}
	if len(tools) == 0 {
		return false
	}
	md.ReferencedTools = tools
	return true
}

// findFloats returns every decimal number in raw, in order.
func findFloats(raw string) []float64 {
	var out []float64
	for _, m := range reFloat.FindAllString(raw, -1) {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// splitList splits a slicer value list on "," or ";", honoring quoted
// elements so that separators inside quotes do not split.
func splitList(raw string) []string {
	var out []string
	for _, m := range reListElement.FindAllStringSubmatch(raw, -1) {
		val := strings.TrimSpace(m[0])
		if m[1] != "" {
			// Quoted element: strip the quotes and unescape.
			val = strings.TrimSpace(strings.ReplaceAll(val[1:len(val)-1], `\"`, `"`))
		}
		if val != "" {
			out = append(out, val)
		}
	}
	return out
}
