package pipeline

import (
	"context"
	"time"

	"github.com/banshee-data/trapcam/internal/db"
	"github.com/banshee-data/trapcam/internal/detect"
	"github.com/banshee-data/trapcam/internal/frame"
	"github.com/banshee-data/trapcam/internal/stats"
	"github.com/banshee-data/trapcam/internal/timeutil"
)

// Detection is a raw frame whose score met the motion threshold.
type Detection struct {
	Frame     *frame.Raw
	Score     uint32
	Threshold uint32
}

// SummaryRecorder persists periodic score summaries. *db.DB implements it.
type SummaryRecorder interface {
	RecordScoreSummary(ctx context.Context, s db.ScoreSummary) error
}

// ScoreParams are the detection settings read once at startup.
type ScoreParams struct {
	Ratio         int
	SobelThresh   int16
	Window        detect.Window
	MotionThresh  uint32
	StatsInterval time.Duration
	StatsWindow   int
}

// ScoreStage compares each frame with the one before it and forwards the
// raw frames that moved enough.
type ScoreStage struct {
	params    ScoreParams
	in        *Queue[*frame.Raw]
	out       *Outbox[Detection]
	clock     timeutil.Clock
	summaries SummaryRecorder
	counters  *counters

	prev      *frame.Luma
	scores    *stats.Window
	lastStats time.Time
}

// NewScoreStage returns a stage reading from in and sending detections to
// out. summaries may be nil.
func NewScoreStage(p ScoreParams, in *Queue[*frame.Raw], out *Outbox[Detection], clock timeutil.Clock, summaries SummaryRecorder) *ScoreStage {
	return &ScoreStage{
		params:    p,
		in:        in,
		out:       out,
		clock:     clock,
		summaries: summaries,
		counters:  &counters{},
		scores:    stats.NewWindow(p.StatsWindow),
		lastStats: clock.Now(),
	}
}

// Run scores frames until the input queue is closed and drained or ctx is
// done.
func (s *ScoreStage) Run(ctx context.Context) error {
	for {
		raw, err := s.in.Pop(ctx)
		if err != nil {
			return nil
		}
		s.Process(ctx, raw)
	}
}

// Process scores one frame. The first frame only seeds the baseline. The
// return value reports whether a detection was handed to the outbox.
func (s *ScoreStage) Process(ctx context.Context, raw *frame.Raw) bool {
	cur := detect.Downsample(raw.View(), raw.Width, raw.Height, s.params.Ratio)
	prev := s.prev
	s.prev = cur
	if prev == nil {
		diagf("baseline seeded from frame %d (%dx%d reduced)", raw.Seq, cur.Width, cur.Height)
		return false
	}

	score := detect.Compare(prev, cur, s.params.SobelThresh, s.params.Window)
	s.counters.scored.Add(1)
	s.counters.lastScore.Store(score)
	s.scores.Add(float64(score))
	s.maybeSummarize(ctx)

	if score < s.params.MotionThresh {
		tracef("frame %d score=%d", raw.Seq, score)
		return false
	}
	s.counters.detections.Add(1)
	if !s.out.TrySend(Detection{Frame: raw, Score: score, Threshold: s.params.MotionThresh}) {
		tracef("frame %d score=%d dropped, persist queue full", raw.Seq, score)
		return false
	}
	tracef("frame %d score=%d motion", raw.Seq, score)
	return true
}

// Scores returns the rolling score window.
func (s *ScoreStage) Scores() *stats.Window {
	return s.scores
}

func (s *ScoreStage) maybeSummarize(ctx context.Context) {
	if s.params.StatsInterval <= 0 || s.clock.Since(s.lastStats) < s.params.StatsInterval {
		return
	}
	now := s.clock.Now()
	s.lastStats = now
	sum := s.scores.Summary()
	diagf("scores %s threshold=%d", sum, s.params.MotionThresh)
	if s.summaries == nil {
		return
	}
	err := s.summaries.RecordScoreSummary(ctx, db.ScoreSummary{
		TakenAt:   now,
		Threshold: s.params.MotionThresh,
		Summary:   sum,
	})
	if err != nil {
		opsf("failed to record score summary: %v", err)
	}
}
