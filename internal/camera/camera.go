// Package camera captures raw frames from a V4L2 device through ffmpeg, or
// replays still images from a directory in development mode.
package camera

import (
	"errors"
	"fmt"

	"github.com/banshee-data/trapcam/internal/frame"
)

// Camera delivers raw frames. Capture blocks until a frame is available
// and returns a buffer of exactly Settings.FrameSize bytes on success.
// Close may be called from another goroutine to unblock Capture.
type Camera interface {
	Start() error
	Capture() ([]byte, error)
	Close() error
}

// ErrClosed is returned by Capture after Close.
var ErrClosed = errors.New("camera: closed")

// ErrNotStarted is returned by Capture before Start.
var ErrNotStarted = errors.New("camera: not started")

// Settings describes the stream requested from the device.
type Settings struct {
	Device    string
	Width     int
	Height    int
	Format    frame.Format
	FrameRate int
}

// FrameSize returns the byte length of one frame.
func (s Settings) FrameSize() int {
	return s.Width * s.Height * s.Format.BytesPerPixel()
}

// VideoSize returns the WxH string ffmpeg expects.
func (s Settings) VideoSize() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// pixFmt returns the ffmpeg pixel format name for s.Format.
func (s Settings) pixFmt() string {
	if s.Format == frame.FormatGray {
		return "gray"
	}
	return "yuyv422"
}
