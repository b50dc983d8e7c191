// Package convert turns raw camera buffers into images for encoding and
// back again for replaying recorded footage.
package convert

import (
	"fmt"
	"image"
	"image/color"

	"github.com/banshee-data/trapcam/internal/frame"
)

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// YUVToRGB converts one luma sample with its shared chroma pair using
// 8-bit fixed-point BT.601 coefficients.
func YUVToRGB(y, u, v uint8) (r, g, b uint8) {
	cu := int(u) - 128
	cv := int(v) - 128
	rc := (351 * cv) >> 8
	gc := (179*cv + 86*cu) >> 8
	bc := (443 * cu) >> 8
	yy := int(y)
	return clamp(yy + rc), clamp(yy - gc), clamp(yy + bc)
}

// YUYVToRGBA decodes packed YUYV 4:2:2 into an opaque RGBA image.
func YUYVToRGBA(data []byte, width, height int) (*image.RGBA, error) {
	if width%2 != 0 {
		return nil, fmt.Errorf("yuyv width must be even, got %d", width)
	}
	if len(data) != width*height*2 {
		return nil, fmt.Errorf("%w: got %d bytes for %dx%d yuyv", frame.ErrSizeMismatch, len(data), width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	dst := img.Pix
	for i, o := 0, 0; i+3 < len(data); i, o = i+4, o+8 {
		y0, u, y1, v := data[i], data[i+1], data[i+2], data[i+3]
		dst[o], dst[o+1], dst[o+2] = YUVToRGB(y0, u, v)
		dst[o+3] = 0xff
		dst[o+4], dst[o+5], dst[o+6] = YUVToRGB(y1, u, v)
		dst[o+7] = 0xff
	}
	return img, nil
}

// YUYVToGray keeps only the luma bytes of a YUYV buffer.
func YUYVToGray(data []byte, width, height int) (*image.Gray, error) {
	if len(data) != width*height*2 {
		return nil, fmt.Errorf("%w: got %d bytes for %dx%d yuyv", frame.ErrSizeMismatch, len(data), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = data[2*i]
	}
	return img, nil
}

// ImageToYUYV encodes img as packed YUYV. Chroma for each horizontal pixel
// pair is the mean of the two pixels' chroma. The width must be even.
func ImageToYUYV(img image.Image) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w%2 != 0 {
		return nil, fmt.Errorf("yuyv width must be even, got %d", w)
	}
	out := make([]byte, 0, w*h*2)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x += 2 {
			y0, cb0, cr0 := ycbcrAt(img, x, y)
			y1, cb1, cr1 := ycbcrAt(img, x+1, y)
			u := uint8((int(cb0) + int(cb1) + 1) / 2)
			v := uint8((int(cr0) + int(cr1) + 1) / 2)
			out = append(out, y0, u, y1, v)
		}
	}
	return out, nil
}

func ycbcrAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// ImageToGray returns the 8-bit luma of every pixel in img, row-major.
func ImageToGray(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}
	return out
}
