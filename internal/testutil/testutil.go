// Package testutil provides shared test fixtures: synthetic frames and a
// scripted camera.
package testutil

import (
	"errors"
	"sync"
	"testing"

	"github.com/banshee-data/trapcam/internal/frame"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Frame returns a width x height buffer in format whose luma at (x, y) is
// luma(x, y). YUYV chroma bytes are neutral (128).
func Frame(width, height int, format frame.Format, luma func(x, y int) uint8) []byte {
	bpp := format.BytesPerPixel()
	buf := make([]byte, width*height*bpp)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * bpp
			buf[i] = luma(x, y)
			if bpp == 2 {
				buf[i+1] = 128
			}
		}
	}
	return buf
}

// Constant returns a frame with every luma sample set to v.
func Constant(width, height int, format frame.Format, v uint8) []byte {
	return Frame(width, height, format, func(int, int) uint8 { return v })
}

// Square returns a black frame with a white size x size square whose top
// left corner is at (x0, y0).
func Square(width, height int, format frame.Format, x0, y0, size int) []byte {
	return Frame(width, height, format, func(x, y int) uint8 {
		if x >= x0 && x < x0+size && y >= y0 && y < y0+size {
			return 255
		}
		return 0
	})
}

// ErrCameraClosed is returned by FakeCamera.Capture after Close.
var ErrCameraClosed = errors.New("fake camera closed")

// FakeCamera replays a fixed script of frames and errors. Once the script
// is exhausted Capture blocks until Close.
type FakeCamera struct {
	// StartErr is returned by Start when set.
	StartErr error

	mu       sync.Mutex
	script   []Shot
	started  bool
	closed   bool
	captured int
	done     chan struct{}
	drained  chan struct{}
}

// Shot is one scripted Capture result.
type Shot struct {
	Data []byte
	Err  error
}

// NewFakeCamera returns a camera that will deliver shots in order.
func NewFakeCamera(shots ...Shot) *FakeCamera {
	return &FakeCamera{
		script:  shots,
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
}

// Frames wraps each buffer as a successful Shot.
func Frames(bufs ...[]byte) []Shot {
	shots := make([]Shot, len(bufs))
	for i, b := range bufs {
		shots[i] = Shot{Data: b}
	}
	return shots
}

func (c *FakeCamera) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.StartErr != nil {
		return c.StartErr
	}
	c.started = true
	return nil
}

func (c *FakeCamera) Capture() ([]byte, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrCameraClosed
	}
	if len(c.script) > 0 {
		s := c.script[0]
		c.script = c.script[1:]
		c.captured++
		if len(c.script) == 0 {
			close(c.drained)
		}
		c.mu.Unlock()
		return s.Data, s.Err
	}
	c.mu.Unlock()
	<-c.done
	return nil, ErrCameraClosed
}

func (c *FakeCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	return nil
}

// Drained is closed once every scripted shot has been handed out. It is
// never closed for an empty script.
func (c *FakeCamera) Drained() <-chan struct{} {
	return c.drained
}

// Started reports whether Start succeeded.
func (c *FakeCamera) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Captured returns how many scripted shots were handed out.
func (c *FakeCamera) Captured() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captured
}
