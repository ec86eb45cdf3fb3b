// Package video samples decoded frames from a local video file using
// GStreamer.
//
// Pipeline structure:
//
//	filesrc → decodebin → videoconvert → videorate → capsfilter(RGBA, N/D fps) → appsink
//
// Frames are pulled synchronously until the sample window is filled, the
// file ends, or the context is cancelled. Building with the nogst tag
// replaces the pipeline with a stub that reports ErrUnavailable, which
// callers treat as "video processing capability unavailable".
package video

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// PixelSize is the number of bytes per pixel delivered by the pipeline (RGBA)
const PixelSize = 4

var (
	// ErrUnavailable means GStreamer or a required plugin cannot be used
	ErrUnavailable = errors.New("video: processing capability unavailable")
	// ErrSourceMissing means the video file does not exist or is not a regular file
	ErrSourceMissing = errors.New("video: source file missing")
	// ErrNoFrames means the pipeline ended before producing a single frame
	ErrNoFrames = errors.New("video: no frames decoded")
)

// Frame is one decoded RGBA frame
type Frame struct {
	// Seq is the 1-based position of the frame in the sample
	Seq int
	// Data holds interleaved RGBA pixels (PixelSize bytes each)
	Data []byte
	// TraceID identifies the frame in logs
	TraceID string
}

// SampleConfig describes what part of a file to sample
type SampleConfig struct {
	// Path is the local video file
	Path string
	// Window is the length of video (from the start) to sample
	Window time.Duration
	// FPS is the sampling rate (0.1 - 30.0)
	FPS float64
	// Timeout bounds the wall-clock time spent decoding (0 = no limit)
	Timeout time.Duration
}

// Validate checks the sample configuration (fail-fast)
func (c SampleConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("video: path is required")
	}
	if c.FPS < 0.1 || c.FPS > 30 {
		return fmt.Errorf("video: invalid FPS %.2f (must be 0.1-30)", c.FPS)
	}
	if c.Window <= 0 {
		return fmt.Errorf("video: window must be positive, got %v", c.Window)
	}
	if c.MaxFrames() < 1 {
		return fmt.Errorf("video: window %v at %.2f fps yields no frames", c.Window, c.FPS)
	}
	return nil
}

// MaxFrames returns how many frames fit in the window at the configured rate.
// A 5s window at 1 fps yields frames at t=0,1,2,3,4.
func (c SampleConfig) MaxFrames() int {
	return int(math.Ceil(c.Window.Seconds()*c.FPS - 1e-9))
}

// buildFramerateCaps builds the appsink caps string with a framerate constraint
//
// Handles fractional framerates:
//   - fps >= 1.0: framerate = fps/1 (e.g., 5.0 → 5/1)
//   - fps < 1.0: framerate = 1/(1/fps) (e.g., 0.5 → 1/2)
func buildFramerateCaps(fps float64) string {
	numerator := 1
	denominator := 1

	if fps < 1.0 {
		denominator = int(math.Round(1.0 / fps))
	} else {
		numerator = int(fps)
	}

	return fmt.Sprintf("video/x-raw,format=RGBA,framerate=%d/%d", numerator, denominator)
}
