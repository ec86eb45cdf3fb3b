package crowdgate

import "fmt"

// GateStatus is the traffic-light classification of a gate's load
type GateStatus int

const (
	// StatusGreen means the gate is below the green threshold (fully open)
	StatusGreen GateStatus = iota
	// StatusYellow means the gate is busy (entry slowed)
	StatusYellow
	// StatusRed means the gate is overloaded (entry blocked)
	StatusRed
)

// String returns the upper-case signal name (GREEN, YELLOW, RED)
func (s GateStatus) String() string {
	switch s {
	case StatusGreen:
		return "GREEN"
	case StatusYellow:
		return "YELLOW"
	case StatusRed:
		return "RED"
	default:
		return fmt.Sprintf("GateStatus(%d)", int(s))
	}
}

// Action returns the recommended gate action for the status
func (s GateStatus) Action() string {
	switch s {
	case StatusGreen:
		return "IN OPEN / OUT OPEN"
	case StatusYellow:
		return "IN SLOW / OUT OPEN"
	default:
		return "IN BLOCKED / OUT ONLY"
	}
}

// Color returns the display color token for the status
func (s GateStatus) Color() string {
	switch s {
	case StatusGreen:
		return "green"
	case StatusYellow:
		return "yellow"
	default:
		return "red"
	}
}

// MarshalText encodes the status as its signal name
func (s GateStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Classification is the result of classifying a single gate load
type Classification struct {
	Status GateStatus `json:"status"`
	Action string     `json:"action"`
	Color  string     `json:"color"`
}

// Redirect is an advisory message for an overloaded gate.
//
// Terminal is set for the last gate, where no further gate exists and
// the crowd is asked to wait outside. To is -1 in that case.
type Redirect struct {
	From     int    `json:"from"`
	To       int    `json:"to"`
	Terminal bool   `json:"terminal"`
	Message  string `json:"message"`
}

// GateReport is one gate's share of an evaluation
type GateReport struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Load  int    `json:"load"`
	Classification
	Redirect *Redirect `json:"redirect,omitempty"`
}

// Evaluation is the engine output for a single crowd count
type Evaluation struct {
	Total int          `json:"total"`
	Gates []GateReport `json:"gates"`
}

// Statuses returns the per-gate statuses in gate order
func (e Evaluation) Statuses() []GateStatus {
	statuses := make([]GateStatus, len(e.Gates))
	for i, g := range e.Gates {
		statuses[i] = g.Status
	}
	return statuses
}

// Loads returns the per-gate loads in gate order
func (e Evaluation) Loads() []int {
	loads := make([]int, len(e.Gates))
	for i, g := range e.Gates {
		loads[i] = g.Load
	}
	return loads
}

// GateName returns the display name of a gate (1-based)
func GateName(index int) string {
	return fmt.Sprintf("Gate %d", index+1)
}
