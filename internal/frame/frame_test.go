package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "YUYV", want: FormatYUYV},
		{in: "yuyv", want: FormatYUYV},
		{in: "GRAY", want: FormatGray},
		{in: " grey ", want: FormatGray},
		{in: "MJPG", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRaw(t *testing.T) {
	t.Parallel()

	t.Run("accepts exact yuyv length", func(t *testing.T) {
		raw, err := NewRaw(make([]byte, 4*2*2), 4, 2, FormatYUYV)
		require.NoError(t, err)
		assert.Equal(t, 4, raw.Width)
		assert.Equal(t, 2, raw.Height)
	})

	t.Run("rejects short buffer", func(t *testing.T) {
		_, err := NewRaw(make([]byte, 15), 4, 2, FormatYUYV)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSizeMismatch))
	})

	t.Run("rejects gray buffer sized for yuyv", func(t *testing.T) {
		_, err := NewRaw(make([]byte, 16), 4, 2, FormatGray)
		assert.ErrorIs(t, err, ErrSizeMismatch)
	})

	t.Run("rejects zero dimensions", func(t *testing.T) {
		_, err := NewRaw(nil, 0, 0, FormatGray)
		assert.ErrorIs(t, err, ErrSizeMismatch)
	})
}

func TestViewGet(t *testing.T) {
	t.Parallel()

	// 2x2 YUYV: Y values 10,20 / 30,40; chroma bytes 128.
	data := []byte{10, 128, 20, 128, 30, 128, 40, 128}
	v := NewView(data, 2, FormatYUYV)

	assert.Equal(t, 2, v.Height())
	assert.Equal(t, uint8(10), v.Get(0, 0))
	assert.Equal(t, uint8(20), v.Get(1, 0))
	assert.Equal(t, uint8(30), v.Get(0, 1))
	assert.Equal(t, uint8(40), v.Get(1, 1))

	gray := NewView([]byte{1, 2, 3, 4, 5, 6}, 3, FormatGray)
	assert.Equal(t, 2, gray.Height())
	assert.Equal(t, uint8(6), gray.Get(2, 1))
}

func TestViewGetOutOfRangePanics(t *testing.T) {
	t.Parallel()

	v := NewView(make([]byte, 9), 3, FormatGray)
	assert.Panics(t, func() { v.Get(3, 0) }, "column overflow must not wrap")
	assert.Panics(t, func() { v.Get(-1, 0) })
	assert.Panics(t, func() { v.Get(0, 3) })
}

func TestLumaGray(t *testing.T) {
	t.Parallel()

	l := NewLuma(3, 2)
	l.Set(2, 1, 99)
	img := l.Gray()
	assert.Equal(t, uint8(99), img.GrayAt(2, 1).Y)
	assert.Equal(t, uint8(99), l.View().Get(2, 1))
	assert.True(t, l.SameSize(NewLuma(3, 2)))
	assert.False(t, l.SameSize(NewLuma(2, 3)))
}
