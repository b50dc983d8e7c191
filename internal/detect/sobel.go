package detect

import "github.com/banshee-data/trapcam/internal/frame"

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// gradient returns the edge magnitude at interior pixel (x, y) of l.
func gradient(l *frame.Luma, x, y int, win Window) int16 {
	if win == WindowFull {
		var gx, gy int16
		for dy := -1; dy <= 1; dy++ {
			row := (y + dy) * l.Width
			for dx := -1; dx <= 1; dx++ {
				p := int16(l.Pix[row+x+dx])
				gx += sobelX.At(dx+1, dy+1) * p
				gy += sobelY.At(dx+1, dy+1) * p
			}
		}
		return abs16(gx) + abs16(gy)
	}

	var acc int16
	for wy := y - 1; wy < y+1; wy++ {
		row := wy * l.Width
		for wx := x - 1; wx < x+1; wx++ {
			p := int16(l.Pix[row+wx])
			kx, ky := x-wx+1, y-wy+1
			acc += sobelX.At(kx, ky)*p + sobelY.At(kx, ky)*p
		}
	}
	return abs16(acc)
}

// Sobel returns the edge mask of l: one byte per interior pixel, 255 where
// the gradient magnitude exceeds threshold and 0 elsewhere. The mask is
// (Width-2) x (Height-2).
func Sobel(l *frame.Luma, threshold int16, win Window) *frame.Luma {
	mask := frame.NewLuma(l.Width-2, l.Height-2)
	for y := 1; y < l.Height-1; y++ {
		for x := 1; x < l.Width-1; x++ {
			if gradient(l, x, y, win) > threshold {
				mask.Set(x-1, y-1, 255)
			}
		}
	}
	return mask
}

// EdgeCount returns how many interior pixels of l have a gradient
// magnitude above threshold.
func EdgeCount(l *frame.Luma, threshold int16, win Window) uint32 {
	var n uint32
	for y := 1; y < l.Height-1; y++ {
		for x := 1; x < l.Width-1; x++ {
			if gradient(l, x, y, win) > threshold {
				n++
			}
		}
	}
	return n
}
