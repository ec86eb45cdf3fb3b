package estimator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/e7canasta/crowd-gate/internal/luma"
	"github.com/e7canasta/crowd-gate/internal/video"
)

const (
	// DefaultWindow is how much of the video (from the start) is sampled
	DefaultWindow = 5 * time.Second
	// DefaultSampleFPS is the frame sampling rate
	DefaultSampleFPS = 1.0
	// DefaultScale converts the mean luminance deviation into a head count
	DefaultScale = 0.8
	// DefaultTimeout bounds the wall-clock decode time
	DefaultTimeout = 30 * time.Second
)

// Config contains configuration for video-based estimation
type Config struct {
	// VideoPath is the local video file (required for video estimation)
	VideoPath string
	// Window is the length of video sampled from the start
	Window time.Duration
	// SampleFPS is the frame sampling rate (0.1 - 30.0)
	SampleFPS float64
	// Scale multiplies the mean luminance deviation
	Scale float64
	// Fallback is returned whenever video estimation fails
	Fallback int
	// Timeout bounds decoding time (0 = no limit)
	Timeout time.Duration
}

// DefaultConfig returns the 5s / 1 fps / 0.8 / fallback 50 configuration
func DefaultConfig(videoPath string) Config {
	return Config{
		VideoPath: videoPath,
		Window:    DefaultWindow,
		SampleFPS: DefaultSampleFPS,
		Scale:     DefaultScale,
		Fallback:  DefaultFallback,
		Timeout:   DefaultTimeout,
	}
}

func (c Config) sampleConfig() video.SampleConfig {
	return video.SampleConfig{
		Path:    c.VideoPath,
		Window:  c.Window,
		FPS:     c.SampleFPS,
		Timeout: c.Timeout,
	}
}

// SampleFunc decodes frames for a sample configuration
type SampleFunc func(ctx context.Context, cfg video.SampleConfig) ([]video.Frame, error)

// VideoEstimator derives a count from luminance texture in sampled frames
type VideoEstimator struct {
	cfg    Config
	sample SampleFunc
}

// NewVideoEstimator creates a video estimator with fail-fast validation
func NewVideoEstimator(cfg Config) (*VideoEstimator, error) {
	return newVideoEstimator(cfg, video.Sample)
}

func newVideoEstimator(cfg Config, sample SampleFunc) (*VideoEstimator, error) {
	if err := cfg.sampleConfig().Validate(); err != nil {
		return nil, fmt.Errorf("estimator: %w", err)
	}
	if cfg.Scale <= 0 {
		return nil, fmt.Errorf("estimator: scale must be positive, got %v", cfg.Scale)
	}
	if cfg.Fallback < 0 {
		return nil, fmt.Errorf("estimator: fallback must be >= 0, got %d", cfg.Fallback)
	}

	return &VideoEstimator{cfg: cfg, sample: sample}, nil
}

// Estimate samples the video and returns the scaled mean luminance deviation.
// Any failure degrades to the configured fallback.
func (v *VideoEstimator) Estimate(ctx context.Context) Result {
	started := time.Now()

	frames, err := v.sample(ctx, v.cfg.sampleConfig())
	if err != nil {
		return v.fallback(err)
	}

	deviations := make([]float64, 0, len(frames))
	for _, f := range frames {
		d, err := luma.StdDev(f.Data, video.PixelSize)
		if err != nil {
			slog.Warn("estimator: skipping unreadable frame",
				"seq", f.Seq,
				"trace_id", f.TraceID,
				"error", err,
			)
			continue
		}
		deviations = append(deviations, d)
	}
	if len(deviations) == 0 {
		return v.fallback(video.ErrNoFrames)
	}

	stats := luma.Summarize(deviations)
	count := stats.Count(v.cfg.Scale)

	slog.Info("estimator: video estimate computed",
		"path", v.cfg.VideoPath,
		"frames", stats.Frames,
		"mean_deviation", stats.Mean,
		"min_deviation", stats.Min,
		"max_deviation", stats.Max,
		"count", count,
		"elapsed", time.Since(started),
	)

	return Result{
		Count:       count,
		Source:      SourceVideo,
		Frames:      stats.Frames,
		EstimatedAt: time.Now(),
	}
}

func (v *VideoEstimator) fallback(cause error) Result {
	attrs := []any{
		"path", v.cfg.VideoPath,
		"fallback", v.cfg.Fallback,
		"error", cause,
	}
	if perr, ok := video.AsPipelineError(cause); ok {
		attrs = append(attrs, "category", perr.Category.String())
	}
	slog.Warn("estimator: video estimation failed, using fallback", attrs...)

	return Result{
		Count:       v.cfg.Fallback,
		Source:      SourceFallback,
		Notice:      fmt.Sprintf("Video-based crowd estimation failed (%v). Using default estimate %d.", cause, v.cfg.Fallback),
		EstimatedAt: time.Now(),
		Err:         fmt.Errorf("%w: %w", ErrCapabilityUnavailable, cause),
	}
}

// Name returns "video"
func (v *VideoEstimator) Name() string {
	return "video"
}
