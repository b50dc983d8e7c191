// Package output encodes snapshot images and writes them under the
// configured media directory with capture-timestamp filenames.
package output

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Encoding is an image file format snapshots can be written in.
type Encoding int

const (
	JPEG Encoding = iota
	PNG
	BMP
	TIFF
)

// ParseEncoding maps a config name to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tiff", "tif":
		return TIFF, nil
	default:
		return 0, fmt.Errorf("unknown output format %q", s)
	}
}

// EncodingForPath picks an Encoding from the extension of path.
func EncodingForPath(path string) (Encoding, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("no extension on %q", path)
	}
	return ParseEncoding(ext[1:])
}

func (e Encoding) String() string {
	switch e {
	case JPEG:
		return "jpeg"
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Ext returns the filename extension including the leading dot.
func (e Encoding) Ext() string {
	switch e {
	case PNG:
		return ".png"
	case BMP:
		return ".bmp"
	case TIFF:
		return ".tiff"
	default:
		return ".jpg"
	}
}

// Encode writes img to w. quality only applies to JPEG.
func (e Encoding) Encode(w io.Writer, img image.Image, quality int) error {
	switch e {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported encoding %s", e)
	}
}
