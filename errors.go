package crowdgate

import "errors"

var (
	// ErrInvalidCrowdCount is returned for a negative crowd count
	ErrInvalidCrowdCount = errors.New("crowdgate: crowd count must be a non-negative integer")

	// ErrInvalidConfig is returned by NewEngine when the decision config is unusable
	ErrInvalidConfig = errors.New("crowdgate: invalid decision config")

	// ErrInvalidHour is returned by SelectMode for an hour outside 0-23
	ErrInvalidHour = errors.New("crowdgate: hour must be between 0 and 23")
)
