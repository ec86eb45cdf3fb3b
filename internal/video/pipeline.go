//go:build !nogst

package video

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// pipelineElements holds references to the elements needed while sampling
type pipelineElements struct {
	Pipeline  *gst.Pipeline
	AppSink   *app.Sink
	DecodeBin *gst.Element
	Converter *gst.Element
}

// createPipeline builds a file sampling pipeline
//
//	filesrc → decodebin → videoconvert → videorate → capsfilter → appsink
//
// decodebin exposes its pads dynamically; the video pad is linked to
// videoconvert in the pad-added callback. The pipeline is configured but
// NOT started (state remains NULL).
func createPipeline(cfg SampleConfig) (*pipelineElements, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return nil, fmt.Errorf("failed to create filesrc: %w", err)
	}
	filesrc.SetProperty("location", cfg.Path)

	decodebin, err := gst.NewElement("decodebin")
	if err != nil {
		return nil, fmt.Errorf("failed to create decodebin: %w", err)
	}

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoconvert: %w", err)
	}

	// videorate duplicates/drops to hit the sampling rate exactly,
	// so frame N lands on t = N/fps of the source
	videorate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("failed to create videorate: %w", err)
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("failed to create capsfilter: %w", err)
	}
	capsStr := buildFramerateCaps(cfg.FPS)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("failed to create appsink: %w", err)
	}
	appsink.SetProperty("sync", false) // decode as fast as possible, no clock
	appsink.SetProperty("max-buffers", 2)
	appsink.SetProperty("drop", false) // every sampled frame counts

	pipeline.AddMany(
		filesrc,
		decodebin,
		converter,
		videorate,
		capsfilter,
		appsink.Element,
	)

	if err := filesrc.Link(decodebin); err != nil {
		return nil, fmt.Errorf("failed to link filesrc to decodebin: %w", err)
	}
	if err := gst.ElementLinkMany(
		converter,
		videorate,
		capsfilter,
		appsink.Element,
	); err != nil {
		return nil, fmt.Errorf("failed to link pipeline elements: %w", err)
	}

	decodebin.Connect("pad-added", func(self *gst.Element, srcPad *gst.Pad) {
		onPadAdded(srcPad, converter)
	})

	slog.Debug("video: pipeline created", "path", cfg.Path, "caps", capsStr)

	return &pipelineElements{
		Pipeline:  pipeline,
		AppSink:   appsink,
		DecodeBin: decodebin,
		Converter: converter,
	}, nil
}

// onPadAdded links the first decoded video pad to videoconvert.
// Audio and other streams are left unlinked.
func onPadAdded(srcPad *gst.Pad, converter *gst.Element) {
	caps := srcPad.GetCurrentCaps()
	if caps == nil || caps.GetSize() == 0 {
		slog.Debug("video: pad without caps ignored", "pad", srcPad.GetName())
		return
	}

	mediaType := caps.GetStructureAt(0).Name()
	if !strings.HasPrefix(mediaType, "video/") {
		slog.Debug("video: non-video pad ignored", "pad", srcPad.GetName(), "media_type", mediaType)
		return
	}

	sinkPad := converter.GetStaticPad("sink")
	if sinkPad == nil {
		slog.Error("video: failed to get sink pad from videoconvert")
		return
	}
	if sinkPad.IsLinked() {
		return
	}

	if ret := srcPad.Link(sinkPad); ret != gst.PadLinkOK {
		slog.Error("video: failed to link pads",
			"src_pad", srcPad.GetName(),
			"sink_pad", sinkPad.GetName(),
			"ret", ret,
		)
		return
	}

	slog.Debug("video: decoded pad linked", "pad", srcPad.GetName(), "media_type", mediaType)
}

// destroyPipeline sets the pipeline to NULL and releases its resources.
// Safe to call on a nil or already destroyed pipeline.
func destroyPipeline(elements *pipelineElements) {
	if elements == nil || elements.Pipeline == nil {
		return
	}
	if err := elements.Pipeline.SetState(gst.StateNull); err != nil {
		slog.Warn("video: failed to set pipeline to NULL", "error", err)
	}
}
