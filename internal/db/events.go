package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/trapcam/internal/stats"
)

// MotionEvent records one detection handed to the persist stage, whether
// or not its snapshot was written.
type MotionEvent struct {
	ID          string    `json:"id"`
	FrameSeq    uint64    `json:"frame_seq"`
	CapturedAt  time.Time `json:"captured_at"`
	Score       uint32    `json:"score"`
	Threshold   uint32    `json:"threshold"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	PixelFormat string    `json:"pixel_format"`
	Path        string    `json:"path"`
	SaveError   string    `json:"save_error,omitempty"`
}

func (e *MotionEvent) String() string {
	return fmt.Sprintf("%s seq=%d score=%d/%d %s", e.ID, e.FrameSeq, e.Score, e.Threshold, e.Path)
}

// RecordMotionEvent inserts e, assigning a UUID when ID is empty.
func (db *DB) RecordMotionEvent(ctx context.Context, e *MotionEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	var saveErr sql.NullString
	if e.SaveError != "" {
		saveErr = sql.NullString{String: e.SaveError, Valid: true}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO motion_events (
			event_id, frame_seq, captured_unix_nanos, score, threshold,
			width, height, pixel_format, path, save_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, int64(e.FrameSeq), e.CapturedAt.UnixNano(), e.Score, e.Threshold,
		e.Width, e.Height, e.PixelFormat, e.Path, saveErr,
	)
	if err != nil {
		return fmt.Errorf("failed to insert motion event: %w", err)
	}
	return nil
}

// MotionEvents returns events captured at or after since, oldest first.
// limit <= 0 means no limit.
func (db *DB) MotionEvents(ctx context.Context, since time.Time, limit int) ([]MotionEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx,
		`SELECT event_id, frame_seq, captured_unix_nanos, score, threshold,
			width, height, pixel_format, path, save_error
		FROM motion_events
		WHERE captured_unix_nanos >= ?
		ORDER BY captured_unix_nanos ASC
		LIMIT ?`,
		since.UnixNano(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query motion events: %w", err)
	}
	defer rows.Close()

	var events []MotionEvent
	for rows.Next() {
		var (
			e       MotionEvent
			seq     int64
			nanos   int64
			saveErr sql.NullString
		)
		if err := rows.Scan(&e.ID, &seq, &nanos, &e.Score, &e.Threshold,
			&e.Width, &e.Height, &e.PixelFormat, &e.Path, &saveErr); err != nil {
			return nil, fmt.Errorf("failed to scan motion event: %w", err)
		}
		e.FrameSeq = uint64(seq)
		e.CapturedAt = time.Unix(0, nanos)
		e.SaveError = saveErr.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountMotionEvents returns the total number of stored events.
func (db *DB) CountMotionEvents(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM motion_events`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ScoreSummary is a persisted stats.Summary.
type ScoreSummary struct {
	TakenAt   time.Time `json:"taken_at"`
	Threshold uint32    `json:"threshold"`
	stats.Summary
}

// RecordScoreSummary stores a periodic score summary.
func (db *DB) RecordScoreSummary(ctx context.Context, s ScoreSummary) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO score_summaries (
			taken_unix_nanos, samples, mean, stddev, p50, p95, max, threshold
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TakenAt.UnixNano(), s.Samples, s.Mean, s.StdDev, s.P50, s.P95, s.Max, s.Threshold,
	)
	if err != nil {
		return fmt.Errorf("failed to insert score summary: %w", err)
	}
	return nil
}

// ScoreSummaries returns summaries taken at or after since, oldest first.
func (db *DB) ScoreSummaries(ctx context.Context, since time.Time, limit int) ([]ScoreSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx,
		`SELECT taken_unix_nanos, samples, mean, stddev, p50, p95, max, threshold
		FROM score_summaries
		WHERE taken_unix_nanos >= ?
		ORDER BY taken_unix_nanos ASC
		LIMIT ?`,
		since.UnixNano(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query score summaries: %w", err)
	}
	defer rows.Close()

	var out []ScoreSummary
	for rows.Next() {
		var (
			s     ScoreSummary
			nanos int64
		)
		if err := rows.Scan(&nanos, &s.Samples, &s.Mean, &s.StdDev, &s.P50, &s.P95, &s.Max, &s.Threshold); err != nil {
			return nil, fmt.Errorf("failed to scan score summary: %w", err)
		}
		s.TakenAt = time.Unix(0, nanos)
		out = append(out, s)
	}
	return out, rows.Err()
}
