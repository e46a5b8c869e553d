// Package metadata extracts per-job requirements from sliced gcode.
//
// Extraction is organized as a registry of independent field extractors, one
// per metadata field, keyed by field name. Adding a field means registering a
// new extractor; no extractor knows about any other. ParseFooter runs every
// registered extractor over the footer text and assembles a JobMetadata.
//
// The extractors understand the PrusaSlicer footer format (also emitted by
// SuperSlicer and OrcaSlicer): "filament used [g]", "filament_settings_id",
// "filament_type", and the "referenced_tools" line written by multi-material
// gcode post-processors.
package metadata
