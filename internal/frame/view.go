package frame

import "fmt"

// View reads luma samples out of a pixel buffer it does not own. For YUYV
// buffers the chroma bytes are skipped. A View must not outlive the buffer.
type View struct {
	data   []byte
	width  int
	stride int
}

// NewView creates a view over data laid out width pixels per row.
func NewView(data []byte, width int, format Format) View {
	return View{data: data, width: width, stride: format.BytesPerPixel()}
}

// Width returns the number of pixels per row.
func (v View) Width() int { return v.width }

// Height returns the number of complete rows in the buffer.
func (v View) Height() int {
	if v.width == 0 {
		return 0
	}
	return len(v.data) / (v.width * v.stride)
}

// Get returns the luma sample at (x, y). It panics when the coordinate is
// outside the buffer. The column is checked explicitly so an overflowing x
// can not wrap onto the next row.
func (v View) Get(x, y int) uint8 {
	if x < 0 || x >= v.width {
		panic(fmt.Sprintf("frame: x=%d out of range [0,%d)", x, v.width))
	}
	return v.data[v.stride*(x+y*v.width)]
}
