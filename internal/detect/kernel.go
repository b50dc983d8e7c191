// Package detect reduces frames to low resolution luma and scores the
// edge content of the difference between two reduced frames.
package detect

import (
	"fmt"
	"strings"
)

// Kernel is a 3x3 convolution kernel stored row-major.
type Kernel [9]int16

// At returns the element in column x, row y.
func (k Kernel) At(x, y int) int16 {
	return k[x+y*3]
}

var (
	sobelX = Kernel{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	sobelY = Kernel{1, 2, 1, 0, 0, 0, -1, -2, -1}
)

// SobelX returns the horizontal gradient kernel.
func SobelX() Kernel { return sobelX }

// SobelY returns the vertical gradient kernel.
func SobelY() Kernel { return sobelY }

// Window selects the neighbourhood used when applying the Sobel kernels.
type Window int

const (
	// WindowLegacy sums both kernels into one accumulator over the 2x2
	// neighbourhood [x-1,x+1) x [y-1,y+1), indexing the kernel at
	// (x-wx+1, y-wy+1). Thresholds tuned on deployed traps assume this.
	WindowLegacy Window = iota
	// WindowFull is the textbook operator: a full 3x3 neighbourhood, gx and
	// gy accumulated separately, magnitude |gx|+|gy|.
	WindowFull
)

func (w Window) String() string {
	switch w {
	case WindowLegacy:
		return "legacy"
	case WindowFull:
		return "full"
	default:
		return fmt.Sprintf("Window(%d)", int(w))
	}
}

// ParseWindow maps a config string to a Window. Empty means legacy.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return WindowLegacy, nil
	case "full":
		return WindowFull, nil
	default:
		return 0, fmt.Errorf("unknown sobel window %q", s)
	}
}
