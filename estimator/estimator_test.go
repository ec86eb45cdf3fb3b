package estimator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/e7canasta/crowd-gate/internal/video"
)

// rgbaFrame builds a frame alternating black and white pixels
// (luminance deviation 127.5)
func rgbaFrame(pixels int) video.Frame {
	data := make([]byte, 0, pixels*video.PixelSize)
	for i := 0; i < pixels; i++ {
		v := byte(0)
		if i%2 == 1 {
			v = 255
		}
		data = append(data, v, v, v, 255)
	}
	return video.Frame{Seq: 1, Data: data, TraceID: "test"}
}

func uniformFrame(pixels int, v byte) video.Frame {
	data := make([]byte, 0, pixels*video.PixelSize)
	for i := 0; i < pixels; i++ {
		data = append(data, v, v, v, 255)
	}
	return video.Frame{Seq: 1, Data: data}
}

func writeVideoFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crowd.mp4")
	if err := os.WriteFile(path, []byte("fake"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func probeOK() error { return nil }

func probeMissing() error {
	return video.ErrUnavailable
}

func TestFixedEstimator(t *testing.T) {
	est := NewFixedEstimator(50, "", nil)
	for i := 0; i < 3; i++ {
		r := est.Estimate(context.Background())
		if r.Count != 50 || r.Source != SourceFallback {
			t.Errorf("Estimate() = %+v, want 50/fallback", r)
		}
	}

	if got := NewFixedEstimator(-3, "", nil).Estimate(context.Background()).Count; got != 0 {
		t.Errorf("negative fixed count = %d, want 0", got)
	}
}

// TestSelect_CapabilityAbsent checks the fallback contract: the estimate is
// always the default and nothing fails
func TestSelect_CapabilityAbsent(t *testing.T) {
	cfg := DefaultConfig(writeVideoFile(t))
	est := Select(cfg, WithProbe(probeMissing))

	if est.Name() != "fixed" {
		t.Fatalf("Select() chose %q, want fixed", est.Name())
	}

	r := est.Estimate(context.Background())
	if r.Count != DefaultFallback {
		t.Errorf("Count = %d, want %d", r.Count, DefaultFallback)
	}
	if !errors.Is(r.Err, ErrCapabilityUnavailable) || !errors.Is(r.Err, video.ErrUnavailable) {
		t.Errorf("Err = %v, want ErrCapabilityUnavailable wrapping video.ErrUnavailable", r.Err)
	}
	if r.Notice == "" {
		t.Error("expected an informational notice")
	}
}

func TestSelect_MissingFile(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "absent.mp4"))
	est := Select(cfg, WithProbe(probeOK))

	r := est.Estimate(context.Background())
	if est.Name() != "fixed" || r.Count != DefaultFallback {
		t.Errorf("Select() = %s / %+v, want fixed fallback", est.Name(), r)
	}
	if !errors.Is(r.Err, video.ErrSourceMissing) {
		t.Errorf("Err = %v, want ErrSourceMissing", r.Err)
	}
}

func TestSelect_NoPath(t *testing.T) {
	cfg := DefaultConfig("")
	cfg.Fallback = 12

	r := Select(cfg, WithProbe(probeOK)).Estimate(context.Background())
	if r.Count != 12 || r.Source != SourceFallback {
		t.Errorf("Estimate() = %+v, want configured fallback 12", r)
	}
}

func TestSelect_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig(writeVideoFile(t))
	cfg.SampleFPS = 0

	est := Select(cfg, WithProbe(probeOK))
	if est.Name() != "fixed" {
		t.Errorf("Select() with invalid fps chose %q, want fixed", est.Name())
	}
}

func TestVideoEstimator_Heuristic(t *testing.T) {
	cfg := DefaultConfig(writeVideoFile(t))

	var gotCfg video.SampleConfig
	sampler := func(ctx context.Context, sc video.SampleConfig) ([]video.Frame, error) {
		gotCfg = sc
		// deviations 127.5 and 0 → mean 63.75 → *0.8 = 51
		return []video.Frame{rgbaFrame(16), uniformFrame(16, 90)}, nil
	}

	est := Select(cfg, WithProbe(probeOK), WithSampler(sampler))
	if est.Name() != "video" {
		t.Fatalf("Select() chose %q, want video", est.Name())
	}

	r := est.Estimate(context.Background())
	if r.Count != 51 || r.Source != SourceVideo || r.Frames != 2 {
		t.Errorf("Estimate() = %+v, want 51 from 2 video frames", r)
	}
	if r.Err != nil || r.Notice != "" {
		t.Errorf("unexpected notice/error: %q / %v", r.Notice, r.Err)
	}
	if gotCfg.Window != 5*time.Second || gotCfg.FPS != 1 || gotCfg.MaxFrames() != 5 {
		t.Errorf("sampler got %+v, want 5s window at 1 fps", gotCfg)
	}
}

// TestVideoEstimator_DecodeFailure checks a corrupt file degrades to the fallback
func TestVideoEstimator_DecodeFailure(t *testing.T) {
	cfg := DefaultConfig(writeVideoFile(t))
	sampler := func(ctx context.Context, sc video.SampleConfig) ([]video.Frame, error) {
		return nil, &video.PipelineError{Category: video.ErrCategoryCodec, Message: "Could not determine type of stream."}
	}

	r := Select(cfg, WithProbe(probeOK), WithSampler(sampler)).Estimate(context.Background())
	if r.Count != DefaultFallback || r.Source != SourceFallback {
		t.Errorf("Estimate() = %+v, want fallback", r)
	}
	if _, ok := video.AsPipelineError(r.Err); !ok {
		t.Errorf("Err = %v, want wrapped pipeline error", r.Err)
	}
	if !errors.Is(r.Err, ErrCapabilityUnavailable) {
		t.Errorf("Err = %v, want ErrCapabilityUnavailable", r.Err)
	}
}

func TestVideoEstimator_UnreadableFrames(t *testing.T) {
	cfg := DefaultConfig(writeVideoFile(t))
	sampler := func(ctx context.Context, sc video.SampleConfig) ([]video.Frame, error) {
		return []video.Frame{{Seq: 1, Data: []byte{1, 2, 3}}}, nil
	}

	r := Select(cfg, WithProbe(probeOK), WithSampler(sampler)).Estimate(context.Background())
	if r.Count != DefaultFallback || !errors.Is(r.Err, video.ErrNoFrames) {
		t.Errorf("Estimate() = %+v, want fallback for unreadable frames", r)
	}
}

func TestNewVideoEstimator_Validation(t *testing.T) {
	cfg := DefaultConfig("crowd.mp4")
	cfg.Scale = 0
	if _, err := NewVideoEstimator(cfg); err == nil {
		t.Error("zero scale accepted")
	}

	cfg = DefaultConfig("crowd.mp4")
	cfg.Fallback = -1
	if _, err := NewVideoEstimator(cfg); err == nil {
		t.Error("negative fallback accepted")
	}
}

type countingEstimator struct {
	calls atomic.Int32
	count int
}

func (c *countingEstimator) Estimate(ctx context.Context) Result {
	c.calls.Add(1)
	return Result{Count: c.count, Source: SourceVideo, EstimatedAt: time.Now()}
}

func (c *countingEstimator) Name() string { return "counting" }

func TestCache_MemoizesOnce(t *testing.T) {
	inner := &countingEstimator{count: 42}
	cache := NewCache(inner, "crowd.mp4")

	if _, ok := cache.Peek(); ok {
		t.Error("Peek() reported a value before first Get")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r := cache.Get(context.Background()); r.Count != 42 {
				t.Errorf("Get() = %d, want 42", r.Count)
			}
		}()
	}
	wg.Wait()

	if calls := inner.calls.Load(); calls != 1 {
		t.Errorf("estimator called %d times, want 1", calls)
	}
	if r, ok := cache.Peek(); !ok || r.Count != 42 {
		t.Errorf("Peek() = %+v, %v", r, ok)
	}
	if cache.Key() != "crowd.mp4" || cache.Strategy() != "counting" {
		t.Errorf("Key/Strategy = %q/%q", cache.Key(), cache.Strategy())
	}
}

func TestCache_Invalidate(t *testing.T) {
	inner := &countingEstimator{count: 7}
	cache := NewCache(inner, "crowd.mp4")

	cache.Get(context.Background())
	cache.Invalidate()
	if _, ok := cache.Peek(); ok {
		t.Error("Peek() reported a value after Invalidate")
	}

	cache.Get(context.Background())
	cache.Get(context.Background())
	if calls := inner.calls.Load(); calls != 2 {
		t.Errorf("estimator called %d times, want 2", calls)
	}
}

func TestCache_CancelledNotMemoized(t *testing.T) {
	inner := &countingEstimator{count: 9}
	cache := NewCache(inner, "crowd.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cache.Get(ctx)

	if _, ok := cache.Peek(); ok {
		t.Error("estimate from a cancelled context was memoized")
	}
}
