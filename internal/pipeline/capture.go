package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/banshee-data/trapcam/internal/camera"
	"github.com/banshee-data/trapcam/internal/frame"
	"github.com/banshee-data/trapcam/internal/timeutil"
)

// CaptureState is the lifecycle position of a CaptureStage.
type CaptureState int32

const (
	CaptureIdle CaptureState = iota
	CaptureStarted
	CaptureCapturing
	CaptureStopped
)

func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "idle"
	case CaptureStarted:
		return "started"
	case CaptureCapturing:
		return "capturing"
	case CaptureStopped:
		return "stopped"
	default:
		return fmt.Sprintf("CaptureState(%d)", int32(s))
	}
}

// CaptureStage reads frames from a camera and pushes them, untouched, onto
// the capture queue.
type CaptureStage struct {
	cam      camera.Camera
	width    int
	height   int
	format   frame.Format
	interval time.Duration
	clock    timeutil.Clock
	out      *Queue[*frame.Raw]
	counters *counters

	state atomic.Int32
	seq   uint64
}

// NewCaptureStage returns a stage pushing frames from cam onto out.
// interval is the back-off after a failed capture.
func NewCaptureStage(cam camera.Camera, width, height int, format frame.Format, interval time.Duration, clock timeutil.Clock, out *Queue[*frame.Raw]) *CaptureStage {
	return &CaptureStage{
		cam:      cam,
		width:    width,
		height:   height,
		format:   format,
		interval: interval,
		clock:    clock,
		out:      out,
		counters: &counters{},
	}
}

// State returns the current lifecycle state.
func (s *CaptureStage) State() CaptureState {
	return CaptureState(s.state.Load())
}

func (s *CaptureStage) setState(st CaptureState) {
	s.state.Store(int32(st))
}

// Run starts the camera and captures until ctx is done or the queue is
// closed. A camera that fails to start is returned as an error; failed
// captures are counted and retried.
func (s *CaptureStage) Run(ctx context.Context) error {
	if err := s.cam.Start(); err != nil {
		s.setState(CaptureStopped)
		return fmt.Errorf("start camera: %w", err)
	}
	s.setState(CaptureStarted)
	defer s.setState(CaptureStopped)

	for ctx.Err() == nil {
		raw, err := s.captureOnce()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.counters.captureErrors.Add(1)
			tracef("no frame this cycle: %v", err)
			s.clock.Sleep(s.interval)
			continue
		}
		s.setState(CaptureCapturing)
		if !s.out.Push(raw) {
			diagf("capture queue closed after %d frames", s.seq)
			return nil
		}
		s.counters.captured.Add(1)
	}
	return nil
}

func (s *CaptureStage) captureOnce() (*frame.Raw, error) {
	buf, err := s.cam.Capture()
	if err != nil {
		return nil, err
	}
	raw, err := frame.NewRaw(buf, s.width, s.height, s.format)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	s.seq++
	raw.Seq = s.seq
	raw.CapturedAt = now
	s.counters.lastFrameNano.Store(now.UnixNano())
	return raw, nil
}
