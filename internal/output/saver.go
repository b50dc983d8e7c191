package output

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/banshee-data/trapcam/internal/fsutil"
)

// FilenameLayout is the time layout of a snapshot name; the nanosecond
// part is appended separately as nine digits.
const FilenameLayout = "20060102-150405"

// Filename returns dir/YYYYmmdd-HHMMSS-nnnnnnnnn<ext> for t.
func Filename(dir string, t time.Time, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%09d%s", t.Format(FilenameLayout), t.Nanosecond(), ext))
}

// Saver encodes images in one format and writes them through a
// FileSystem.
type Saver struct {
	fs       fsutil.FileSystem
	encoding Encoding
	quality  int
}

// NewSaver returns a Saver writing enc files through fsys.
func NewSaver(fsys fsutil.FileSystem, enc Encoding, quality int) *Saver {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &Saver{fs: fsys, encoding: enc, quality: quality}
}

// Ext returns the filename extension for the Saver's encoding.
func (s *Saver) Ext() string {
	return s.encoding.Ext()
}

// EncodeAndSave encodes img and writes it to path, creating the parent
// directory if needed. A partially written file is removed on error.
func (s *Saver) EncodeAndSave(path string, img image.Image) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	w, err := s.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := s.encoding.Encode(w, img, s.quality); err != nil {
		w.Close()
		s.fs.Remove(path)
		return fmt.Errorf("encode %s: %w", s.encoding, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
