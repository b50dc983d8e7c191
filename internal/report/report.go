// Package report renders motion activity from the event database as a PNG
// timeline (gonum/plot) or an interactive HTML page (go-echarts).
package report

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/trapcam/internal/db"
)

// Source is the subset of *db.DB a report reads.
type Source interface {
	MotionEvents(ctx context.Context, since time.Time, limit int) ([]db.MotionEvent, error)
	ScoreSummaries(ctx context.Context, since time.Time, limit int) ([]db.ScoreSummary, error)
}

// Timeline is the data behind one report.
type Timeline struct {
	Since     time.Time
	Events    []db.MotionEvent
	Summaries []db.ScoreSummary
}

// Load reads events and summaries captured at or after since.
func Load(ctx context.Context, src Source, since time.Time, limit int) (*Timeline, error) {
	events, err := src.MotionEvents(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	summaries, err := src.ScoreSummaries(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	return &Timeline{Since: since, Events: events, Summaries: summaries}, nil
}

// Saved returns how many events have a snapshot on disk.
func (tl *Timeline) Saved() int {
	n := 0
	for _, e := range tl.Events {
		if e.SaveError == "" {
			n++
		}
	}
	return n
}

func (tl *Timeline) subtitle() string {
	return fmt.Sprintf("%d events (%d saved), %d summaries since %s",
		len(tl.Events), tl.Saved(), len(tl.Summaries), tl.Since.Format(time.RFC3339))
}

// Format selects the report renderer.
type Format int

const (
	PNG Format = iota
	HTML
)

// FormatFor picks a Format from the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".html", ".htm":
		return HTML, nil
	default:
		return 0, fmt.Errorf("unsupported report extension %q (want .png or .html)", filepath.Ext(path))
	}
}

// Write renders tl to w in format f.
func Write(w io.Writer, tl *Timeline, f Format) error {
	switch f {
	case PNG:
		return WritePNG(w, tl)
	case HTML:
		return WriteHTML(w, tl)
	default:
		return fmt.Errorf("unknown report format %d", f)
	}
}

var (
	eventColor   = color.RGBA{R: 220, G: 50, B: 47, A: 255}
	failedColor  = color.RGBA{R: 7, G: 54, B: 66, A: 255}
	p95Color     = color.RGBA{R: 38, G: 139, B: 210, A: 255}
	maxColor     = color.RGBA{R: 133, G: 153, B: 0, A: 255}
	limitColor   = color.RGBA{R: 181, G: 137, B: 0, A: 255}
	timeTickForm = "01-02\n15:04"
)
