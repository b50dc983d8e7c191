package db

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trapcam/internal/stats"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "trap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)

func testEvent(i int) *MotionEvent {
	return &MotionEvent{
		FrameSeq:    uint64(100 + i),
		CapturedAt:  base.Add(time.Duration(i) * time.Second),
		Score:       uint32(400 + i),
		Threshold:   300,
		Width:       1920,
		Height:      1080,
		PixelFormat: "YUYV",
		Path:        "media/x.jpg",
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Reopening is a no-op migration.
	again, err := Open(db.Path())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.MigrateDown())
	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='score_summaries'`).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, db.MigrateUp())
}

func TestRecordMotionEvent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	e := testEvent(0)
	require.NoError(t, db.RecordMotionEvent(ctx, e))
	_, err := uuid.Parse(e.ID)
	require.NoError(t, err, "ID is assigned a UUID")

	failed := testEvent(1)
	failed.SaveError = "disk full"
	require.NoError(t, db.RecordMotionEvent(ctx, failed))

	got, err := db.MotionEvents(ctx, base, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := []MotionEvent{*e, *failed}
	for i := range want {
		want[i].CapturedAt = want[i].CapturedAt.Local()
		got[i].CapturedAt = got[i].CapturedAt.Local()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MotionEvents mismatch (-want +got):\n%s", diff)
	}

	n, err := db.CountMotionEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Error(t, db.RecordMotionEvent(ctx, e), "duplicate ID is rejected")
}

func TestMotionEventsSinceAndLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, db.RecordMotionEvent(ctx, testEvent(i)))
	}

	got, err := db.MotionEvents(ctx, base.Add(2*time.Second), 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint64(102), got[0].FrameSeq)

	got, err = db.MotionEvents(ctx, base, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(101), got[1].FrameSeq)
}

func TestScoreSummaries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s := ScoreSummary{
			TakenAt:   base.Add(time.Duration(i) * time.Minute),
			Threshold: 300,
			Summary:   stats.Summary{Samples: 10 + i, Mean: 12.5, StdDev: 3, P50: 11, P95: 40, Max: 55},
		}
		require.NoError(t, db.RecordScoreSummary(ctx, s))
	}

	got, err := db.ScoreSummaries(ctx, base.Add(time.Minute), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 11, got[0].Samples)
	assert.Equal(t, 55.0, got[1].Max)
	assert.Equal(t, uint32(300), got[1].Threshold)
	assert.True(t, got[1].TakenAt.Equal(base.Add(2*time.Minute)))
}

func TestHandleEvents(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, db.RecordMotionEvent(ctx, testEvent(i)))
	}

	req := httptest.NewRequest(http.MethodGet, "/debug/events?limit=2", nil)
	w := httptest.NewRecorder()
	db.handleEvents(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var events []MotionEvent
	require.NoError(t, json.NewDecoder(w.Body).Decode(&events))
	require.Len(t, events, 2)
	assert.Equal(t, uint64(102), events[0].FrameSeq)
	assert.Equal(t, uint64(103), events[1].FrameSeq)

	w = httptest.NewRecorder()
	db.handleEvents(w, httptest.NewRequest(http.MethodGet, "/debug/events?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttachAdminRoutes(t *testing.T) {
	db := openTestDB(t)
	mux := http.NewServeMux()
	require.NoError(t, db.AttachAdminRoutes(mux))

	for _, path := range []string{"/debug/events", "/debug/backup", "/debug/tailsql/"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			// Registered routes may still refuse non-local callers.
			if w.Code == http.StatusNotFound {
				t.Errorf("route %s should be registered, got 404", path)
			}
		})
	}
}
