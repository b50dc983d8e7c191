package frame

import "image"

// Luma is a reduced single-channel frame, one byte per pixel, row-major.
type Luma struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewLuma allocates a zeroed w x h luma frame.
func NewLuma(w, h int) *Luma {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Luma{Width: w, Height: h, Pix: make([]uint8, w*h)}
}

// At returns the sample at (x, y).
func (l *Luma) At(x, y int) uint8 {
	return l.Pix[x+y*l.Width]
}

// Set stores v at (x, y).
func (l *Luma) Set(x, y int, v uint8) {
	l.Pix[x+y*l.Width] = v
}

// SameSize reports whether l and o have identical dimensions.
func (l *Luma) SameSize(o *Luma) bool {
	return l.Width == o.Width && l.Height == o.Height
}

// View returns a View over the luma samples.
func (l *Luma) View() View {
	return NewView(l.Pix, l.Width, FormatGray)
}

// Gray wraps the samples as an image.Gray without copying.
func (l *Luma) Gray() *image.Gray {
	return &image.Gray{
		Pix:    l.Pix,
		Stride: l.Width,
		Rect:   image.Rect(0, 0, l.Width, l.Height),
	}
}
