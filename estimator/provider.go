// Package estimator produces a crowd count from a short video sample.
//
// Two strategies implement Estimator:
//
//   - VideoEstimator samples frames with GStreamer and turns the average
//     luminance deviation into a count (a placeholder heuristic, not a
//     calibrated model)
//   - FixedEstimator always returns a constant
//
// Select probes the video capability once at startup and returns the
// strategy to use. Neither strategy ever fails: problems are reported
// through Result.Notice and Result.Err while Result.Count falls back to
// the configured default.
package estimator

import (
	"context"
	"errors"
	"time"
)

// DefaultFallback is the estimate used whenever video estimation cannot run
const DefaultFallback = 50

// ErrCapabilityUnavailable marks results produced because video processing
// could not run (missing GStreamer plugin, missing or corrupt file)
var ErrCapabilityUnavailable = errors.New("estimator: video estimation unavailable")

// Source identifies which strategy produced an estimate
type Source string

const (
	// SourceVideo means the count was derived from sampled frames
	SourceVideo Source = "video"
	// SourceFallback means the fixed default was used
	SourceFallback Source = "fallback"
)

// Result is a single crowd estimate
type Result struct {
	// Count is the estimated crowd (always >= 0)
	Count int `json:"count"`
	// Source is the strategy that produced Count
	Source Source `json:"source"`
	// Frames is the number of frames sampled (0 for fallback)
	Frames int `json:"frames"`
	// Notice is an informational message for the user, empty when none
	Notice string `json:"notice,omitempty"`
	// EstimatedAt is when the estimate was computed
	EstimatedAt time.Time `json:"estimated_at"`
	// Err records why a fallback was used; it wraps ErrCapabilityUnavailable
	Err error `json:"-"`
}

// Estimator defines the contract for crowd estimation strategies
//
// Implementations must guarantee:
//   - Estimate never panics and always returns Count >= 0
//   - Failures degrade to a fallback count instead of an error
//   - Estimate honors ctx cancellation for long-running work
type Estimator interface {
	// Estimate computes a crowd count.
	//
	// Video-based implementations may block for several seconds while
	// decoding; callers that need the value repeatedly should wrap the
	// estimator in a Cache.
	Estimate(ctx context.Context) Result

	// Name identifies the strategy in logs (e.g., "video", "fixed")
	Name() string
}
