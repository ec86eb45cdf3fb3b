// Package luma computes the luminance texture statistics behind the crowd
// density heuristic.
package luma

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyFrame is returned for a frame without pixel data
	ErrEmptyFrame = errors.New("luma: empty frame")
	// ErrPixelLayout is returned when the data length is not a whole number of pixels
	ErrPixelLayout = errors.New("luma: data length is not a multiple of the pixel size")
)

// StdDev returns the population standard deviation of per-pixel luminance.
//
// data holds interleaved pixels of pixelSize bytes each, the first three
// bytes being R, G and B (RGB when pixelSize is 3, RGBA/RGBx when 4).
// Luminance is the plain mean of the three color channels.
func StdDev(data []byte, pixelSize int) (float64, error) {
	if pixelSize < 3 {
		return 0, fmt.Errorf("luma: pixel size %d too small for RGB", pixelSize)
	}
	if len(data) == 0 {
		return 0, ErrEmptyFrame
	}
	if len(data)%pixelSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes, pixel size %d", ErrPixelLayout, len(data), pixelSize)
	}

	// Welford's running mean/variance keeps precision on large frames
	var (
		n    int
		mean float64
		m2   float64
	)
	for i := 0; i+pixelSize <= len(data); i += pixelSize {
		y := (float64(data[i]) + float64(data[i+1]) + float64(data[i+2])) / 3.0
		n++
		delta := y - mean
		mean += delta / float64(n)
		m2 += delta * (y - mean)
	}

	return math.Sqrt(m2 / float64(n)), nil
}

// Stats summarizes per-frame luminance deviations over a sample window
type Stats struct {
	// Frames is the number of frames that contributed
	Frames int
	// Mean is the average per-frame deviation
	Mean float64
	// Min is the smallest per-frame deviation
	Min float64
	// Max is the largest per-frame deviation
	Max float64
}

// Summarize aggregates per-frame deviations
func Summarize(deviations []float64) Stats {
	n := len(deviations)
	if n == 0 {
		return Stats{}
	}

	minDev := deviations[0]
	maxDev := deviations[0]
	var sum float64
	for _, d := range deviations {
		sum += d
		if d < minDev {
			minDev = d
		}
		if d > maxDev {
			maxDev = d
		}
	}

	return Stats{
		Frames: n,
		Mean:   sum / float64(n),
		Min:    minDev,
		Max:    maxDev,
	}
}

// Count scales the mean deviation into a crowd count, truncating toward zero.
// Negative or non-finite inputs yield 0.
func (s Stats) Count(scale float64) int {
	v := s.Mean * scale
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}
