package crowdgate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// GreenLimit is the banner's GREEN ceiling for the total crowd.
	// Informational only: gate classification uses GreenThreshold.
	GreenLimit = 50
	// YellowLimit is the banner's YELLOW ceiling for the total crowd.
	// Informational only: gate classification uses YellowThreshold.
	YellowLimit = 100
)

// DisplayLimits are the thresholds quoted in the informational banner
type DisplayLimits struct {
	GreenLimit  int `json:"green_limit"`
	YellowLimit int `json:"yellow_limit"`
}

// DefaultDisplayLimits returns the 50/100 banner limits
func DefaultDisplayLimits() DisplayLimits {
	return DisplayLimits{GreenLimit: GreenLimit, YellowLimit: YellowLimit}
}

// Banner renders the informational system banner for a mode
func (l DisplayLimits) Banner(mode ModeInfo) string {
	return fmt.Sprintf("System Time Mode: %s | Green ≤ %d, Yellow ≤ %d, Red > %d",
		mode.Mode, l.GreenLimit, l.YellowLimit, l.YellowLimit)
}

// Report is everything a rendering surface needs for one evaluation cycle
type Report struct {
	ID          string     `json:"id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Mode        ModeInfo   `json:"mode"`
	Banner      string     `json:"banner"`
	Evaluation  Evaluation `json:"evaluation"`
	Summary     string     `json:"summary"`
	// Notice carries an informational message from the estimator
	// (e.g., video estimation disabled). Empty when there is nothing to say.
	Notice string `json:"notice,omitempty"`
}

// NewReport assembles a report for eval at time now
func NewReport(eval Evaluation, now time.Time, limits DisplayLimits, notice string) Report {
	mode := ModeAt(now)
	return Report{
		ID:          uuid.New().String(),
		GeneratedAt: now,
		Mode:        mode,
		Banner:      limits.Banner(mode),
		Evaluation:  eval,
		Summary:     fmt.Sprintf("Estimated Total Crowd Count: %d", eval.Total),
		Notice:      notice,
	}
}
