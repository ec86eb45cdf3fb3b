package estimator

import (
	"context"
	"time"
)

// FixedEstimator always returns the same count
type FixedEstimator struct {
	count  int
	notice string
	reason error
}

// NewFixedEstimator returns an estimator for a constant count.
// Negative counts are clamped to 0. reason, when non-nil, explains why the
// fixed strategy was chosen and is reported in every Result.
func NewFixedEstimator(count int, notice string, reason error) *FixedEstimator {
	if count < 0 {
		count = 0
	}
	return &FixedEstimator{count: count, notice: notice, reason: reason}
}

// Estimate returns the fixed count
func (f *FixedEstimator) Estimate(ctx context.Context) Result {
	return Result{
		Count:       f.count,
		Source:      SourceFallback,
		Notice:      f.notice,
		EstimatedAt: time.Now(),
		Err:         f.reason,
	}
}

// Name returns "fixed"
func (f *FixedEstimator) Name() string {
	return "fixed"
}
