package video

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies GStreamer bus errors for telemetry
type ErrorCategory int

const (
	// ErrCategorySource indicates the file could not be opened or read
	ErrCategorySource ErrorCategory = iota
	// ErrCategoryCodec indicates demux/decode failures (corrupt or unsupported file)
	ErrCategoryCodec
	// ErrCategoryUnknown indicates unclassified errors
	ErrCategoryUnknown
)

// String returns a human-readable string representation of the error category
func (e ErrorCategory) String() string {
	switch e {
	case ErrCategorySource:
		return "source"
	case ErrCategoryCodec:
		return "codec"
	default:
		return "unknown"
	}
}

// PipelineError is a categorized error reported on the pipeline bus
type PipelineError struct {
	Category ErrorCategory
	Message  string
	Debug    string
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("video: pipeline error [%s]: %s", e.Category, e.Message)
}

// Classify categorizes a GStreamer error from its message and debug string.
// go-gst's GError does not expose the error domain, so this relies on
// keyword matching.
func Classify(errMsg, debugStr string) ErrorCategory {
	combined := strings.ToLower(errMsg + " " + debugStr)

	// codec first: "could not determine type of stream" also mentions the stream
	if containsAny(combined, codecKeywords) {
		return ErrCategoryCodec
	}
	if containsAny(combined, sourceKeywords) {
		return ErrCategorySource
	}
	return ErrCategoryUnknown
}

var sourceKeywords = []string{
	"no such file",
	"not found",
	"could not open",
	"could not read",
	"permission denied",
	"resource",
	"filesrc",
}

var codecKeywords = []string{
	"codec",
	"decode",
	"demux",
	"could not determine type",
	"not negotiated",
	"no decoder",
	"missing plugin",
	"stream contains no data",
	"invalid data",
	"format",
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// AsPipelineError extracts a categorized pipeline error from err
func AsPipelineError(err error) (*PipelineError, bool) {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
