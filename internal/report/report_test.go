package report

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trapcam/internal/db"
	"github.com/banshee-data/trapcam/internal/stats"
)

var t0 = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func sampleTimeline() *Timeline {
	tl := &Timeline{Since: t0}
	for i := 0; i < 5; i++ {
		tl.Summaries = append(tl.Summaries, db.ScoreSummary{
			TakenAt:   t0.Add(time.Duration(i) * time.Minute),
			Threshold: 300,
			Summary:   stats.Summary{Samples: 300, Mean: 40, P50: 35, P95: float64(100 + 20*i), Max: float64(200 + 50*i)},
		})
	}
	tl.Events = []db.MotionEvent{
		{ID: "a", CapturedAt: t0.Add(90 * time.Second), Score: 420, Path: "media/a.jpg"},
		{ID: "b", CapturedAt: t0.Add(150 * time.Second), Score: 510, Path: "media/b.jpg", SaveError: "disk full"},
	}
	return tl
}

type fakeSource struct {
	events    []db.MotionEvent
	summaries []db.ScoreSummary
	err       error
	since     time.Time
}

func (f *fakeSource) MotionEvents(_ context.Context, since time.Time, _ int) ([]db.MotionEvent, error) {
	f.since = since
	return f.events, f.err
}

func (f *fakeSource) ScoreSummaries(_ context.Context, _ time.Time, _ int) ([]db.ScoreSummary, error) {
	return f.summaries, nil
}

func TestLoad(t *testing.T) {
	want := sampleTimeline()
	src := &fakeSource{events: want.Events, summaries: want.Summaries}

	tl, err := Load(context.Background(), src, t0, 10)
	require.NoError(t, err)
	assert.Equal(t, t0, src.since)
	assert.Len(t, tl.Events, 2)
	assert.Len(t, tl.Summaries, 5)
	assert.Equal(t, 1, tl.Saved())

	src.err = errors.New("no such table")
	_, err = Load(context.Background(), src, t0, 10)
	assert.ErrorContains(t, err, "no such table")
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"out/report.png", PNG, false},
		{"REPORT.PNG", PNG, false},
		{"report.html", HTML, false},
		{"report.htm", HTML, false},
		{"report.svg", 0, true},
		{"report", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTimeline(), PNG))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestWritePNG_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, &Timeline{Since: t0}))
	assert.NotZero(t, buf.Len())
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.png")
	require.NoError(t, SavePNG(path, sampleTimeline()))
	assert.FileExists(t, path)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTimeline(), HTML))

	out := buf.String()
	assert.Contains(t, out, "Score summaries")
	assert.Contains(t, out, "Motion events")
	assert.Contains(t, out, "not saved")
	assert.Contains(t, out, "2 events (1 saved)")
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, sampleTimeline(), Format(7)))
}
