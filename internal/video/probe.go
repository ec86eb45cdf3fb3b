//go:build !nogst

package video

import (
	"fmt"
	"log/slog"

	"github.com/tinyzimmer/go-gst/gst"
)

// requiredElements are the plugins the sampling pipeline cannot run without
var requiredElements = []string{
	"filesrc",
	"decodebin",
	"videoconvert",
	"videorate",
	"capsfilter",
	"appsink",
}

// Available reports whether GStreamer and every required plugin can be used.
// Returns an error wrapping ErrUnavailable naming the first missing element.
func Available() error {
	// Initialize GStreamer (safe to call multiple times)
	gst.Init(nil)

	for _, name := range requiredElements {
		elem, err := gst.NewElement(name)
		if err != nil {
			return fmt.Errorf("%w: element %q not available: %v", ErrUnavailable, name, err)
		}
		elem.SetState(gst.StateNull)
	}

	slog.Debug("video: GStreamer capability available", "elements", requiredElements)
	return nil
}
