package crowdgate

import (
	"fmt"
	"time"
)

const (
	// MorningStartHour is the first hour (inclusive) of MORNING mode
	MorningStartHour = 6
	// NightStartHour is the first hour (inclusive) of NIGHT mode
	NightStartHour = 18
)

// TimeMode is the cosmetic day/night mode of the display
type TimeMode int

const (
	// ModeMorning covers hours [6, 18)
	ModeMorning TimeMode = iota
	// ModeNight covers every other hour
	ModeNight
)

// String returns the mode label (e.g., "MORNING MODE")
func (m TimeMode) String() string {
	if m == ModeMorning {
		return "MORNING MODE"
	}
	return "NIGHT MODE"
}

// Brightness returns the display brightness hint for the mode
func (m TimeMode) Brightness() string {
	if m == ModeMorning {
		return "Bright Signals"
	}
	return "Dim Signals"
}

// MarshalText encodes the mode as its label
func (m TimeMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ModeInfo bundles a mode with its display hints.
// It only affects presentation; the Engine never reads it.
type ModeInfo struct {
	Mode       TimeMode `json:"mode"`
	Hour       int      `json:"hour"`
	Brightness string   `json:"brightness"`
}

// SelectMode returns the mode for an hour of the day (0-23)
func SelectMode(hour int) (ModeInfo, error) {
	if hour < 0 || hour > 23 {
		return ModeInfo{}, fmt.Errorf("%w: got %d", ErrInvalidHour, hour)
	}

	mode := ModeNight
	if hour >= MorningStartHour && hour < NightStartHour {
		mode = ModeMorning
	}

	return ModeInfo{
		Mode:       mode,
		Hour:       hour,
		Brightness: mode.Brightness(),
	}, nil
}

// ModeAt returns the mode for the wall-clock hour of t
func ModeAt(t time.Time) ModeInfo {
	// Hour() is always 0-23
	info, _ := SelectMode(t.Hour())
	return info
}
