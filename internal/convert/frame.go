package convert

import (
	"fmt"
	"image"

	"github.com/banshee-data/trapcam/internal/frame"
)

// ToImage converts a raw frame into an image ready for encoding: RGBA for
// YUYV frames, 8-bit gray for gray frames.
func ToImage(r *frame.Raw) (image.Image, error) {
	switch r.Format {
	case frame.FormatYUYV:
		return YUYVToRGBA(r.Data, r.Width, r.Height)
	case frame.FormatGray:
		if len(r.Data) != r.Width*r.Height {
			return nil, fmt.Errorf("%w: got %d bytes for %dx%d gray", frame.ErrSizeMismatch, len(r.Data), r.Width, r.Height)
		}
		return &image.Gray{Pix: r.Data, Stride: r.Width, Rect: image.Rect(0, 0, r.Width, r.Height)}, nil
	default:
		return nil, fmt.Errorf("unsupported pixel format %s", r.Format)
	}
}

// FromImage encodes img in the given camera format.
func FromImage(img image.Image, format frame.Format) ([]byte, error) {
	switch format {
	case frame.FormatYUYV:
		return ImageToYUYV(img)
	case frame.FormatGray:
		return ImageToGray(img), nil
	default:
		return nil, fmt.Errorf("unsupported pixel format %s", format)
	}
}
