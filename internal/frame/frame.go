// Package frame holds the pixel buffers that flow through the motion
// pipeline: raw camera frames, reduced luma frames, and a zero-copy
// luma view over either.
package frame

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format is the pixel layout of a raw camera buffer.
type Format int

const (
	// FormatYUYV is packed YUV 4:2:2, two bytes per pixel (Y0 U Y1 V).
	FormatYUYV Format = iota
	// FormatGray is 8-bit luma, one byte per pixel.
	FormatGray
)

// ErrSizeMismatch is returned when a buffer length does not match the
// declared dimensions and format.
var ErrSizeMismatch = errors.New("frame: buffer size does not match dimensions")

// BytesPerPixel returns the number of bytes one pixel occupies.
func (f Format) BytesPerPixel() int {
	if f == FormatYUYV {
		return 2
	}
	return 1
}

func (f Format) String() string {
	switch f {
	case FormatYUYV:
		return "YUYV"
	case FormatGray:
		return "GRAY"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts YUYV, GRAY or GREY in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YUYV":
		return FormatYUYV, nil
	case "GRAY", "GREY":
		return FormatGray, nil
	default:
		return 0, fmt.Errorf("unknown pixel format %q", s)
	}
}

// Raw is a full resolution frame exactly as delivered by the camera.
// Data is not modified after construction.
type Raw struct {
	Data   []byte
	Width  int
	Height int
	Format Format

	// Seq increases by one for every frame accepted by the capture stage.
	Seq uint64
	// CapturedAt is the wall-clock time the frame was read from the camera.
	CapturedAt time.Time
}

// NewRaw wraps data as a Raw frame after checking its length.
func NewRaw(data []byte, width, height int, format Format) (*Raw, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSizeMismatch, width, height)
	}
	want := width * height * format.BytesPerPixel()
	if len(data) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %dx%d %s",
			ErrSizeMismatch, len(data), want, width, height, format)
	}
	return &Raw{Data: data, Width: width, Height: height, Format: format}, nil
}

// View returns a luma view over the frame data.
func (r *Raw) View() View {
	return NewView(r.Data, r.Width, r.Format)
}
