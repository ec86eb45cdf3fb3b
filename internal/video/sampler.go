//go:build !nogst

package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
)

// pullTimeout bounds each appsink pull so cancellation and bus errors are
// noticed promptly
const pullTimeout = 100 * time.Millisecond

// Sample decodes up to cfg.MaxFrames() frames from the start of cfg.Path.
//
// Returns the frames decoded before the file ended if it is shorter than
// the window. Returns an error if:
//   - the configuration is invalid
//   - the file is missing (ErrSourceMissing)
//   - GStreamer cannot build the pipeline (ErrUnavailable)
//   - the pipeline reports an error (*PipelineError)
//   - no frame was decoded (ErrNoFrames)
//   - ctx is cancelled or cfg.Timeout elapses
func Sample(ctx context.Context, cfg SampleConfig) ([]Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceMissing, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrSourceMissing, cfg.Path)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	elements, err := createPipeline(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer destroyPipeline(elements)

	if err := elements.Pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, fmt.Errorf("video: failed to start pipeline: %w", err)
	}

	started := time.Now()
	maxFrames := cfg.MaxFrames()
	frames := make([]Frame, 0, maxFrames)
	bus := elements.Pipeline.GetPipelineBus()

	for len(frames) < maxFrames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("video: sampling interrupted after %d frames: %w", len(frames), err)
		}

		if perr := pollBusError(bus); perr != nil {
			slog.Error("video: pipeline error",
				"error", perr.Message,
				"debug", perr.Debug,
				"category", perr.Category.String(),
				"path", cfg.Path,
				"frames_decoded", len(frames),
			)
			return nil, perr
		}

		sample := elements.AppSink.TryPullSample(pullTimeout)
		if sample == nil {
			if elements.AppSink.IsEOS() {
				slog.Debug("video: end of stream before window filled",
					"frames_decoded", len(frames),
					"max_frames", maxFrames,
				)
				break
			}
			continue
		}

		frame, ok := copyFrame(sample, len(frames)+1)
		if !ok {
			continue
		}
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	slog.Debug("video: sampling complete",
		"path", cfg.Path,
		"frames", len(frames),
		"elapsed", time.Since(started),
	)

	return frames, nil
}

// copyFrame copies the pixel data out of a sample (GStreamer reuses buffers).
// Empty or unreadable samples are skipped rather than failing the sample run.
func copyFrame(sample *gst.Sample, seq int) (Frame, bool) {
	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("video: failed to get buffer from sample, skipping frame")
		return Frame{}, false
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		slog.Warn("video: empty buffer received")
		return Frame{}, false
	}

	frameData := make([]byte, len(data))
	copy(frameData, data)
	buffer.Unmap()

	frame := Frame{
		Seq:     seq,
		Data:    frameData,
		TraceID: uuid.New().String(),
	}

	slog.Debug("video: frame sampled",
		"seq", frame.Seq,
		"size_bytes", len(frameData),
		"trace_id", frame.TraceID,
	)

	return frame, true
}

// pollBusError drains pending bus messages and returns the first error, if any
func pollBusError(bus *gst.Bus) *PipelineError {
	for {
		msg := bus.TimedPop(0)
		if msg == nil {
			return nil
		}

		switch msg.Type() {
		case gst.MessageError:
			gerr := msg.ParseError()
			if gerr == nil {
				return &PipelineError{Category: ErrCategoryUnknown, Message: "unknown pipeline error"}
			}
			return &PipelineError{
				Category: Classify(gerr.Error(), gerr.DebugString()),
				Message:  gerr.Error(),
				Debug:    gerr.DebugString(),
			}

		case gst.MessageWarning:
			slog.Debug("video: pipeline warning", "source", msg.Source())
		}
	}
}
