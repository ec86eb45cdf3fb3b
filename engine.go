package crowdgate

import (
	"fmt"
	"math"
)

const (
	// GreenThreshold is the highest gate load still classified GREEN
	GreenThreshold = 25
	// YellowThreshold is the highest gate load still classified YELLOW
	YellowThreshold = 40

	// weightSumTolerance absorbs float rounding when checking weights sum to 1.0
	weightSumTolerance = 1e-9
)

// DecisionConfig holds the gate weights and classification thresholds.
//
// Loads up to GreenThreshold are GREEN, loads up to YellowThreshold are
// YELLOW, anything above is RED.
type DecisionConfig struct {
	Weights         []float64
	GreenThreshold  int
	YellowThreshold int
}

// DefaultDecisionConfig returns the four-gate configuration (35/25/20/20, 25/40)
func DefaultDecisionConfig() DecisionConfig {
	return DecisionConfig{
		// share of the total crowd routed to each gate
		Weights:         []float64{0.35, 0.25, 0.20, 0.20},
		GreenThreshold:  GreenThreshold,
		YellowThreshold: YellowThreshold,
	}
}

// Validate checks the weights and thresholds
func (c DecisionConfig) Validate() error {
	if len(c.Weights) == 0 {
		return fmt.Errorf("%w: at least one gate weight is required", ErrInvalidConfig)
	}

	var sum float64
	for i, w := range c.Weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is %v (must be a finite value >= 0)", ErrInvalidConfig, i, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.6f (must be 1.0)", ErrInvalidConfig, sum)
	}

	if c.GreenThreshold < 0 {
		return fmt.Errorf("%w: green threshold %d is negative", ErrInvalidConfig, c.GreenThreshold)
	}
	if c.YellowThreshold < c.GreenThreshold {
		return fmt.Errorf("%w: yellow threshold %d is below green threshold %d",
			ErrInvalidConfig, c.YellowThreshold, c.GreenThreshold)
	}

	return nil
}

// Engine turns a crowd count into per-gate loads, statuses and redirects.
//
// An Engine is immutable after construction and safe for concurrent use.
// Every call recomputes from its arguments; there is no history.
type Engine struct {
	weights []float64
	green   int
	yellow  int
}

// NewEngine validates cfg and returns an engine bound to a copy of it
func NewEngine(cfg DecisionConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	weights := make([]float64, len(cfg.Weights))
	copy(weights, cfg.Weights)

	return &Engine{
		weights: weights,
		green:   cfg.GreenThreshold,
		yellow:  cfg.YellowThreshold,
	}, nil
}

// Config returns a copy of the engine's decision config
func (e *Engine) Config() DecisionConfig {
	weights := make([]float64, len(e.weights))
	copy(weights, e.weights)
	return DecisionConfig{
		Weights:         weights,
		GreenThreshold:  e.green,
		YellowThreshold: e.yellow,
	}
}

// Gates returns the number of gates
func (e *Engine) Gates() int {
	return len(e.weights)
}

// SplitLoad distributes crowdCount across the gates as floor(crowdCount * weight).
//
// Truncation is not reconciled: the loads may sum to less than crowdCount.
func (e *Engine) SplitLoad(crowdCount int) ([]int, error) {
	if crowdCount < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCrowdCount, crowdCount)
	}

	loads := make([]int, len(e.weights))
	for i, w := range e.weights {
		loads[i] = int(math.Floor(float64(crowdCount) * w))
	}
	return loads, nil
}

// Classify maps a gate load to its status, action and color token
func (e *Engine) Classify(load int) Classification {
	status := StatusRed
	switch {
	case load <= e.green:
		status = StatusGreen
	case load <= e.yellow:
		status = StatusYellow
	}

	return Classification{
		Status: status,
		Action: status.Action(),
		Color:  status.Color(),
	}
}

// Redirect returns the advisory for gateIndex, or nil when the gate is not RED.
//
// A RED gate points at the next gate; the last gate has nowhere to send
// the crowd and gets the terminal "all gates overloaded" message.
func (e *Engine) Redirect(gateIndex int, statuses []GateStatus) *Redirect {
	if gateIndex < 0 || gateIndex >= len(statuses) {
		return nil
	}
	if statuses[gateIndex] != StatusRed {
		return nil
	}

	if gateIndex < len(statuses)-1 {
		return &Redirect{
			From:    gateIndex,
			To:      gateIndex + 1,
			Message: fmt.Sprintf("Redirect crowd to %s", GateName(gateIndex+1)),
		}
	}

	return &Redirect{
		From:     gateIndex,
		To:       -1,
		Terminal: true,
		Message:  "All gates overloaded. Please wait outside.",
	}
}

// Evaluate runs split, classify and redirect for one crowd count
func (e *Engine) Evaluate(crowdCount int) (Evaluation, error) {
	loads, err := e.SplitLoad(crowdCount)
	if err != nil {
		return Evaluation{}, err
	}

	gates := make([]GateReport, len(loads))
	statuses := make([]GateStatus, len(loads))
	for i, load := range loads {
		c := e.Classify(load)
		statuses[i] = c.Status
		gates[i] = GateReport{
			Index:          i,
			Name:           GateName(i),
			Load:           load,
			Classification: c,
		}
	}

	for i := range gates {
		gates[i].Redirect = e.Redirect(i, statuses)
	}

	return Evaluation{Total: crowdCount, Gates: gates}, nil
}
