package pipeline

import (
	"context"

	"github.com/banshee-data/trapcam/internal/convert"
	"github.com/banshee-data/trapcam/internal/db"
	"github.com/banshee-data/trapcam/internal/output"
)

// EventRecorder stores motion events. *db.DB implements it.
type EventRecorder interface {
	RecordMotionEvent(ctx context.Context, e *db.MotionEvent) error
}

// PersistStage writes detected frames to disk and, optionally, records
// them in the event database.
type PersistStage struct {
	dir      string
	saver    *output.Saver
	in       *Outbox[Detection]
	events   EventRecorder
	counters *counters
}

// NewPersistStage returns a stage saving detections from in under dir.
// events may be nil.
func NewPersistStage(dir string, saver *output.Saver, in *Outbox[Detection], events EventRecorder) *PersistStage {
	return &PersistStage{
		dir:      dir,
		saver:    saver,
		in:       in,
		events:   events,
		counters: &counters{},
	}
}

// Run persists detections until ctx is done.
func (p *PersistStage) Run(ctx context.Context) error {
	for {
		d, err := p.in.Receive(ctx)
		if err != nil {
			return nil
		}
		p.Handle(ctx, d)
	}
}

// Handle saves one detection. A failed save is logged and counted; it
// never stops the stage.
func (p *PersistStage) Handle(ctx context.Context, d Detection) {
	raw := d.Frame
	path := output.Filename(p.dir, raw.CapturedAt, p.saver.Ext())

	var saveErr error
	img, err := convert.ToImage(raw)
	if err != nil {
		saveErr = err
	} else {
		saveErr = p.saver.EncodeAndSave(path, img)
	}
	if saveErr != nil {
		p.counters.saveErrors.Add(1)
		opsf("failed to save frame %d to %s: %v", raw.Seq, path, saveErr)
	} else {
		p.counters.saved.Add(1)
		diagf("saved frame %d score=%d to %s", raw.Seq, d.Score, path)
	}

	if p.events == nil {
		return
	}
	ev := &db.MotionEvent{
		FrameSeq:    raw.Seq,
		CapturedAt:  raw.CapturedAt,
		Score:       d.Score,
		Threshold:   d.Threshold,
		Width:       raw.Width,
		Height:      raw.Height,
		PixelFormat: raw.Format.String(),
		Path:        path,
	}
	if saveErr != nil {
		ev.SaveError = saveErr.Error()
	}
	if err := p.events.RecordMotionEvent(ctx, ev); err != nil {
		p.counters.eventErrors.Add(1)
		opsf("failed to record motion event for frame %d: %v", raw.Seq, err)
	}
}
