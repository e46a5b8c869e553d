package metadata

import "context"

// JobMetadata holds the per-tool requirements parsed from a job file.
//
// Index i of each slice refers to the same logical tool. Slices need not be
// equal length; a missing trailing entry means the corresponding rule is
// skipped for that tool. A nil slice means the field was absent from the
// footer, which is distinct from a present empty list.
type JobMetadata struct {
	// Weights is the filament used per tool, in grams.
	Weights []float64
	// Names is the filament preset name per tool.
	Names []string
	// Materials is the filament material per tool (e.g. "PLA").
	Materials []string
	// ReferencedTools lists the tool indices the job actually uses.
	// Empty or nil means a single-tool job.
	ReferencedTools []int
}

// Source supplies job metadata by filename.
//
// The boolean return distinguishes "no metadata for this file" (false, nil
// error) from a lookup failure.
type Source interface {
	Metadata(ctx context.Context, filename string) (*JobMetadata, bool, error)
}
