package metadata

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultFooterBytes is how much of the file tail FileSource scans for
// metadata. Slicers write their summary block at the end of the file.
const DefaultFooterBytes = 64 * 1024

// FileSource parses metadata straight from gcode files under a root
// directory. It is the standalone counterpart to asking the print server for
// its parsed metadata.
type FileSource struct {
	root        string
	footerBytes int64
}

// NewFileSource creates a FileSource rooted at the gcode directory.
func NewFileSource(root string) *FileSource {
	return &FileSource{root: root, footerBytes: DefaultFooterBytes}
}

// Metadata reads the tail of the named file and parses it.
// A missing file yields (nil, false, nil); read failures are returned.
func (s *FileSource) Metadata(ctx context.Context, filename string) (*JobMetadata, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	path := filepath.Join(s.root, filepath.Clean("/"+filename))
	f, err := os.Open(path) // #nosec G304 -- path is rooted and cleaned above.
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open gcode file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("stat gcode file: %w", err)
	}

	offset := info.Size() - s.footerBytes
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("seek gcode footer: %w", err)
	}
	footer, err := io.ReadAll(f)
	if err != nil {
		return nil, false, fmt.Errorf("read gcode footer: %w", err)
	}

	return ParseFooter(string(footer)), true, nil
}
