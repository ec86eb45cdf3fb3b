//go:build nogst

package video

import (
	"context"
	"fmt"
)

// Available always fails in builds without GStreamer
func Available() error {
	return fmt.Errorf("%w: built without GStreamer (nogst)", ErrUnavailable)
}

// Sample always fails in builds without GStreamer
func Sample(ctx context.Context, cfg SampleConfig) ([]Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: built without GStreamer (nogst)", ErrUnavailable)
}
