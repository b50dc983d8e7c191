package detect

import (
	"fmt"

	"github.com/banshee-data/trapcam/internal/frame"
)

// ReducedSize returns the dimensions Downsample produces for a width x
// height source at the given ratio. The outermost destination row and
// column on each side are skipped, so each axis loses two cells.
func ReducedSize(width, height, ratio int) (int, int) {
	w, h := width/ratio-2, height/ratio-2
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// Downsample box-blurs v by ratio. Each destination cell (x, y) is the
// truncated mean of the square window [px-r2, px+r2) x [py-r2, py+r2)
// around px = x*ratio, py = y*ratio with r2 = max(1, ratio/2). Skipping
// the border cells keeps every window inside the source, so no clamping
// is done; reading outside the buffer panics.
func Downsample(v frame.View, width, height, ratio int) *frame.Luma {
	if ratio < 1 {
		panic(fmt.Sprintf("detect: downsample ratio %d < 1", ratio))
	}
	dw, dh := width/ratio, height/ratio
	ow, oh := ReducedSize(width, height, ratio)
	out := frame.NewLuma(ow, oh)

	r2 := max(1, ratio/2)
	area := uint32(4 * r2 * r2)

	for y := 1; y < dh-1; y++ {
		py := y * ratio
		row := (y - 1) * ow
		for x := 1; x < dw-1; x++ {
			px := x * ratio
			var sum uint32
			for wy := py - r2; wy < py+r2; wy++ {
				for wx := px - r2; wx < px+r2; wx++ {
					sum += uint32(v.Get(wx, wy))
				}
			}
			out.Pix[row+x-1] = uint8(sum / area)
		}
	}
	return out
}
