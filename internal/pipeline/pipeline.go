package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/banshee-data/trapcam/internal/camera"
	"github.com/banshee-data/trapcam/internal/config"
	"github.com/banshee-data/trapcam/internal/frame"
	"github.com/banshee-data/trapcam/internal/output"
	"github.com/banshee-data/trapcam/internal/timeutil"
)

// Options wires a Pipeline. Camera and Config are required.
type Options struct {
	Camera camera.Camera
	Config *config.Config

	// Saver defaults to the configured encoding on the OS filesystem.
	Saver *output.Saver
	// Events and Summaries may be nil to skip the event database.
	Events    EventRecorder
	Summaries SummaryRecorder
	// Clock defaults to timeutil.RealClock.
	Clock timeutil.Clock
	// Reset is called by the capture watchdog before Run returns
	// ErrCaptureTimeout.
	Reset func(ctx context.Context) error
}

// Pipeline owns the three stages and the queues between them.
type Pipeline struct {
	cam      camera.Camera
	clock    timeutil.Clock
	counters *counters

	frames  *Queue[*frame.Raw]
	motions *Outbox[Detection]

	capture *CaptureStage
	score   *ScoreStage
	persist *PersistStage
	watch   *watchdog
}

// New builds a Pipeline from opts. It does not touch the camera.
func New(opts Options) (*Pipeline, error) {
	if opts.Camera == nil {
		return nil, errors.New("pipeline: camera is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Empty()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	saver := opts.Saver
	if saver == nil {
		saver = output.NewSaver(nil, cfg.GetEncoding(), cfg.GetJPEGQuality())
	}

	p := &Pipeline{
		cam:      opts.Camera,
		clock:    clock,
		counters: &counters{},
		frames:   NewQueue[*frame.Raw](),
		motions:  NewOutbox[Detection](cfg.GetOutputBufferSize()),
	}

	p.capture = NewCaptureStage(opts.Camera, cfg.GetWidth(), cfg.GetHeight(), cfg.GetPixelFormat(),
		cfg.GetFrameInterval(), clock, p.frames)
	p.capture.counters = p.counters

	p.score = NewScoreStage(ScoreParams{
		Ratio:         cfg.GetDownsampleRatio(),
		SobelThresh:   cfg.GetSobelThresh(),
		Window:        cfg.GetWindow(),
		MotionThresh:  cfg.GetEdgeThresh(),
		StatsInterval: cfg.GetStatsInterval(),
		StatsWindow:   cfg.GetStatsWindow(),
	}, p.frames, p.motions, clock, opts.Summaries)
	p.score.counters = p.counters

	p.persist = NewPersistStage(cfg.GetOutputPath(), saver, p.motions, opts.Events)
	p.persist.counters = p.counters

	if timeout := cfg.GetCaptureTimeout(); timeout > 0 {
		p.watch = &watchdog{
			timeout: timeout,
			clock:   clock,
			last:    p.counters.lastFrame,
			reset:   opts.Reset,
		}
	}

	diagf("pipeline %dx%d %s ratio=%d sobel=%d window=%s motion>=%d buffer=%d",
		cfg.GetWidth(), cfg.GetHeight(), cfg.GetPixelFormat(), cfg.GetDownsampleRatio(),
		cfg.GetSobelThresh(), cfg.GetWindow(), cfg.GetEdgeThresh(), cfg.GetOutputBufferSize())
	return p, nil
}

// Run starts every stage and blocks until ctx is done or a stage fails. A
// camera that cannot be started or a capture timeout is returned; ctx
// cancellation is not an error. The camera is closed before Run returns.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		if err == nil {
			return
		}
		errOnce.Do(func() { firstErr = err })
		cancel()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		defer p.frames.Close()
		fail(p.capture.Run(ctx))
	}()
	go func() {
		defer wg.Done()
		fail(p.score.Run(ctx))
	}()
	go func() {
		defer wg.Done()
		fail(p.persist.Run(ctx))
	}()
	if p.watch != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fail(p.watch.run(ctx))
		}()
	}

	<-ctx.Done()
	// Capture may be blocked inside the device read.
	if err := p.cam.Close(); err != nil && !errors.Is(err, camera.ErrClosed) {
		opsf("failed to close camera: %v", err)
	}
	p.frames.Close()
	wg.Wait()

	st := p.Stats()
	diagf("stopped: captured=%d scored=%d detections=%d saved=%d dropped=%d save_errors=%d",
		st.Captured, st.Scored, st.Detections, st.Saved, st.Dropped, st.SaveErrors)
	return firstErr
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	c := p.counters
	return Stats{
		Captured:      c.captured.Load(),
		CaptureErrors: c.captureErrors.Load(),
		Scored:        c.scored.Load(),
		Detections:    c.detections.Load(),
		Dropped:       p.motions.Dropped(),
		Saved:         c.saved.Load(),
		SaveErrors:    c.saveErrors.Load(),
		EventErrors:   c.eventErrors.Load(),
		CaptureQueue:  p.frames.Len(),
		PersistQueue:  p.motions.Len(),
		LastScore:     c.lastScore.Load(),
		LastFrame:     c.lastFrame(),
		Threshold:     p.score.params.MotionThresh,
		Scores:        p.score.Scores().Summary(),
	}
}

// CaptureState returns the capture stage lifecycle state.
func (p *Pipeline) CaptureState() CaptureState {
	return p.capture.State()
}
