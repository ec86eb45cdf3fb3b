package estimator

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/e7canasta/crowd-gate/internal/video"
)

// ProbeFunc reports whether video processing can run
type ProbeFunc func() error

type selectOptions struct {
	probe  ProbeFunc
	sample SampleFunc
}

// Option customizes Select
type Option func(*selectOptions)

// WithProbe replaces the GStreamer capability probe
func WithProbe(probe ProbeFunc) Option {
	return func(o *selectOptions) { o.probe = probe }
}

// WithSampler replaces the frame sampler used by the video strategy
func WithSampler(sample SampleFunc) Option {
	return func(o *selectOptions) { o.sample = sample }
}

// Select probes the video capability and returns the strategy to use.
//
// The video strategy is chosen only when the probe succeeds, the file
// exists and the configuration is valid. Otherwise a FixedEstimator
// returning cfg.Fallback is returned with a notice explaining why.
func Select(cfg Config, opts ...Option) Estimator {
	o := selectOptions{probe: video.Available, sample: video.Sample}
	for _, opt := range opts {
		opt(&o)
	}

	fallback := cfg.Fallback
	if fallback < 0 {
		fallback = DefaultFallback
	}

	disable := func(reason error) Estimator {
		slog.Warn("estimator: video-based crowd estimation disabled",
			"reason", reason,
			"fallback", fallback,
		)
		return NewFixedEstimator(
			fallback,
			"Video-based crowd estimation disabled.",
			fmt.Errorf("%w: %w", ErrCapabilityUnavailable, reason),
		)
	}

	if cfg.VideoPath == "" {
		return disable(fmt.Errorf("no video path configured"))
	}
	if err := o.probe(); err != nil {
		return disable(err)
	}
	if _, err := os.Stat(cfg.VideoPath); err != nil {
		return disable(fmt.Errorf("%w: %v", video.ErrSourceMissing, err))
	}

	est, err := newVideoEstimator(cfg, o.sample)
	if err != nil {
		return disable(err)
	}

	slog.Info("estimator: video-based crowd estimation enabled",
		"path", cfg.VideoPath,
		"window", cfg.Window,
		"sample_fps", cfg.SampleFPS,
	)
	return est
}
