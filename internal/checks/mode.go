package checks

// Mode selects how the session resolves inventory records.
type Mode string

const (
	// ModeSingle checks the single active spool against tool 0.
	ModeSingle Mode = "single-spool"
	// ModeMultiTool checks each referenced tool against its mapped slot.
	ModeMultiTool Mode = "multi-tool"
)

// String implements fmt.Stringer for log output.
func (m Mode) String() string { return string(m) }

// label renders the mode the way the console messages spell it.
func (m Mode) label() string {
	if m == ModeMultiTool {
		return "Multi-tool"
	}
	return "Single-spool"
}
