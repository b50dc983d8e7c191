package detect

import (
	"fmt"

	"github.com/banshee-data/trapcam/internal/frame"
)

// Diff returns |a[i]-b[i]| for every element. It panics if the lengths
// differ.
func Diff(a, b []uint8) []uint8 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("detect: diff length mismatch %d != %d", len(a), len(b)))
	}
	out := make([]uint8, len(a))
	for i := range a {
		if a[i] > b[i] {
			out[i] = a[i] - b[i]
		} else {
			out[i] = b[i] - a[i]
		}
	}
	return out
}

func diffFrames(a, b *frame.Luma) *frame.Luma {
	if !a.SameSize(b) {
		panic(fmt.Sprintf("detect: frame size mismatch %dx%d != %dx%d",
			a.Width, a.Height, b.Width, b.Height))
	}
	return &frame.Luma{Width: a.Width, Height: a.Height, Pix: Diff(a.Pix, b.Pix)}
}

// DiffEdges returns the edge mask of the absolute difference of a and b.
func DiffEdges(a, b *frame.Luma, threshold int16, win Window) *frame.Luma {
	return Sobel(diffFrames(a, b), threshold, win)
}

// Compare scores the change between a and b as the number of interior
// pixels whose difference-image gradient exceeds threshold.
func Compare(a, b *frame.Luma, threshold int16, win Window) uint32 {
	return EdgeCount(diffFrames(a, b), threshold, win)
}
