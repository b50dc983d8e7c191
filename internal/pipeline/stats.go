package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/banshee-data/trapcam/internal/stats"
)

// counters are shared by the stages; each field has a single writer.
type counters struct {
	captured      atomic.Uint64
	captureErrors atomic.Uint64
	scored        atomic.Uint64
	detections    atomic.Uint64
	saved         atomic.Uint64
	saveErrors    atomic.Uint64
	eventErrors   atomic.Uint64
	lastScore     atomic.Uint32
	lastFrameNano atomic.Int64
}

// Stats is a point-in-time snapshot of pipeline counters.
type Stats struct {
	Captured      uint64        `json:"captured"`
	CaptureErrors uint64        `json:"capture_errors"`
	Scored        uint64        `json:"scored"`
	Detections    uint64        `json:"detections"`
	Dropped       uint64        `json:"dropped"`
	Saved         uint64        `json:"saved"`
	SaveErrors    uint64        `json:"save_errors"`
	EventErrors   uint64        `json:"event_errors"`
	CaptureQueue  int           `json:"capture_queue"`
	PersistQueue  int           `json:"persist_queue"`
	LastScore     uint32        `json:"last_score"`
	LastFrame     time.Time     `json:"last_frame"`
	Threshold     uint32        `json:"threshold"`
	Scores        stats.Summary `json:"scores"`
}

func (c *counters) lastFrame() time.Time {
	n := c.lastFrameNano.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
