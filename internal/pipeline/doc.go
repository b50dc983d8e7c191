// Package pipeline runs the three motion trap stages, each in its own
// goroutine:
//
//	capture --(unbounded Queue)--> score --(bounded Outbox, drop newest)--> persist
//
// Capture never waits on scoring; scoring never waits on disk. The
// capture queue may grow without bound if scoring falls behind, and its
// depth is reported in Stats. Persist drops detections instead of
// stalling the scorer.
//
// The pipeline imports the detect, convert, output and db packages; none
// of them import pipeline.
package pipeline
