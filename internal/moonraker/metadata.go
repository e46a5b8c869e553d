package moonraker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spoolguard/spoolguard/internal/metadata"
)

// floatList accepts either a JSON number or a JSON array of numbers.
// Moonraker stores single-tool weights as a scalar and multi-tool weights as
// a list.
type floatList []float64

func (f *floatList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var list []float64
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*f = list
		return nil
	}
	var single float64
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*f = floatList{single}
	return nil
}

// MetadataSource serves job metadata from Moonraker's metadata store.
// It implements metadata.Source.
type MetadataSource struct {
	client *Client
}

// NewMetadataSource wraps a Moonraker client as a metadata source.
func NewMetadataSource(c *Client) *MetadataSource {
	return &MetadataSource{client: c}
}

// Metadata fetches the parsed metadata for filename.
// An unknown file yields (nil, false, nil).
func (s *MetadataSource) Metadata(ctx context.Context, filename string) (*metadata.JobMetadata, bool, error) {
	var payload struct {
		Result struct {
			FilamentWeights floatList `json:"filament_weights"`
			FilamentName    string    `json:"filament_name"`
			FilamentType    string    `json:"filament_type"`
			ReferencedTools []int     `json:"referenced_tools"`
		} `json:"result"`
	}

	query := url.Values{"filename": []string{filename}}
	err := s.client.do(ctx, http.MethodGet, "/server/files/metadata", query, &payload)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch metadata for %q: %w", filename, err)
	}

	md := &metadata.JobMetadata{
		Weights:         payload.Result.FilamentWeights,
		Names:           parseNameField(payload.Result.FilamentName),
		Materials:       splitSemicolons(payload.Result.FilamentType),
		ReferencedTools: payload.Result.ReferencedTools,
	}
	return md, true, nil
}

// parseNameField decodes Moonraker's filament_name value. Multi-tool jobs
// store a JSON array serialized into the string; single-tool jobs store the
// bare name.
func parseNameField(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err == nil {
			return names
		}
	}
	return []string{raw}
}

// splitSemicolons splits a "PLA;PETG" style value into its entries.
func splitSemicolons(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
