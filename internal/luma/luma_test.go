package luma

import (
	"errors"
	"math"
	"testing"
	"testing/quick"
)

func rgbFrame(values ...byte) []byte {
	data := make([]byte, 0, len(values)*3)
	for _, v := range values {
		data = append(data, v, v, v)
	}
	return data
}

func TestStdDev_Uniform(t *testing.T) {
	got, err := StdDev(rgbFrame(100, 100, 100, 100), 3)
	if err != nil {
		t.Fatalf("StdDev failed: %v", err)
	}
	if got != 0 {
		t.Errorf("StdDev(uniform) = %v, want 0", got)
	}
}

func TestStdDev_TwoLevels(t *testing.T) {
	// half black, half white: population stddev = 127.5
	got, err := StdDev(rgbFrame(0, 255, 0, 255), 3)
	if err != nil {
		t.Fatalf("StdDev failed: %v", err)
	}
	if math.Abs(got-127.5) > 1e-9 {
		t.Errorf("StdDev = %v, want 127.5", got)
	}
}

func TestStdDev_ChannelMean(t *testing.T) {
	// pixels (30,60,90) → 60 and (0,0,0) → 0: stddev 30
	data := []byte{30, 60, 90, 0, 0, 0}
	got, err := StdDev(data, 3)
	if err != nil {
		t.Fatalf("StdDev failed: %v", err)
	}
	if math.Abs(got-30) > 1e-9 {
		t.Errorf("StdDev = %v, want 30", got)
	}
}

func TestStdDev_IgnoresAlpha(t *testing.T) {
	rgb := []byte{0, 0, 0, 255, 255, 255}
	rgba := []byte{0, 0, 0, 17, 255, 255, 255, 200}

	a, err := StdDev(rgb, 3)
	if err != nil {
		t.Fatalf("StdDev(rgb) failed: %v", err)
	}
	b, err := StdDev(rgba, 4)
	if err != nil {
		t.Fatalf("StdDev(rgba) failed: %v", err)
	}
	if a != b {
		t.Errorf("alpha changed the result: %v vs %v", a, b)
	}
}

func TestStdDev_Errors(t *testing.T) {
	if _, err := StdDev(nil, 3); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("empty frame error = %v, want ErrEmptyFrame", err)
	}
	if _, err := StdDev([]byte{1, 2, 3, 4}, 3); !errors.Is(err, ErrPixelLayout) {
		t.Errorf("ragged frame error = %v, want ErrPixelLayout", err)
	}
	if _, err := StdDev([]byte{1, 2}, 2); err == nil {
		t.Error("pixel size 2 should be rejected")
	}
}

// TestStdDev_Bounded checks the deviation of 8-bit luminance never exceeds 127.5
func TestStdDev_Bounded(t *testing.T) {
	property := func(pixels []byte) bool {
		if len(pixels) == 0 {
			return true
		}
		data := rgbFrame(pixels...)
		d, err := StdDev(data, 3)
		return err == nil && d >= 0 && d <= 127.5+1e-9
	}

	if err := quick.Check(property, nil); err != nil {
		t.Errorf("StdDev out of bounds: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 20, 30, 40})
	if s.Frames != 4 || s.Mean != 25 || s.Min != 10 || s.Max != 40 {
		t.Errorf("Summarize = %+v", s)
	}

	if empty := Summarize(nil); empty.Frames != 0 || empty.Mean != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero", empty)
	}
}

func TestStats_Count(t *testing.T) {
	tests := []struct {
		mean  float64
		scale float64
		want  int
	}{
		{62.5, 0.8, 50},
		{63.9, 0.8, 51},
		{0, 0.8, 0},
		{-4, 0.8, 0},
		{math.NaN(), 0.8, 0},
	}

	for _, tt := range tests {
		if got := (Stats{Mean: tt.mean}).Count(tt.scale); got != tt.want {
			t.Errorf("Count(mean=%v, scale=%v) = %d, want %d", tt.mean, tt.scale, got, tt.want)
		}
	}
}
