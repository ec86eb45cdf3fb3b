package main

import (
	"fmt"
	"log/slog"

	crowdgate "github.com/e7canasta/crowd-gate"
	"github.com/e7canasta/crowd-gate/estimator"
	"github.com/e7canasta/crowd-gate/internal/config"
)

// newEngine builds the decision engine from the loaded configuration
func newEngine(c *config.Config) (*crowdgate.Engine, error) {
	engine, err := crowdgate.NewEngine(c.EngineConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, nil
}

// newEstimates selects the estimation strategy once and wraps it in a cache.
// videoPath, when set, overrides the configured path.
func newEstimates(c *config.Config, videoPath string) *estimator.Cache {
	estCfg := c.EstimatorConfig()
	if videoPath != "" {
		estCfg.VideoPath = videoPath
	}

	est := estimator.Select(estCfg)
	slog.Info("estimator selected",
		"strategy", est.Name(),
		"video_path", estCfg.VideoPath,
	)
	return estimator.NewCache(est, estCfg.VideoPath)
}

// checkCount enforces the input range [0, max] of the user-facing surfaces
func checkCount(count, maxCrowd int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", crowdgate.ErrInvalidCrowdCount, count)
	}
	if count > maxCrowd {
		return fmt.Errorf("crowd count %d exceeds maximum %d", count, maxCrowd)
	}
	return nil
}
