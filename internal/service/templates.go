package service

import (
	"errors"
	"fmt"
)

// Descriptor templates for the canned operations. All follow the same
// source -> decode -> convert -> encode -> mux -> sink shape.

var (
	ErrUnsupportedFormat     = errors.New("unsupported output format")
	ErrUnsupportedStreamType = errors.New("unsupported stream type")
)

// ConversionDescriptor builds a format-conversion descriptor. Supported
// targets: webm (vp8), mp4 (h264), avi (h264).
func ConversionDescriptor(sourceURL, outputFormat, outputPath string) (string, error) {
	switch outputFormat {
	case "webm":
		return fmt.Sprintf(
			"souphttpsrc location=%s ! decodebin ! videoconvert ! vp8enc ! webmmux ! filesink location=%s",
			sourceURL, outputPath), nil
	case "mp4":
		return fmt.Sprintf(
			"souphttpsrc location=%s ! decodebin ! videoconvert ! x264enc ! mp4mux ! filesink location=%s",
			sourceURL, outputPath), nil
	case "avi":
		return fmt.Sprintf(
			"souphttpsrc location=%s ! decodebin ! videoconvert ! x264enc ! avimux ! filesink location=%s",
			sourceURL, outputPath), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, outputFormat)
	}
}

// ThumbnailDescriptor builds a single-frame PNG extraction descriptor.
// The image is scaled to exactly width x height; aspect ratio is not
// preserved. The timestamp is recorded for the response but the chain
// currently extracts from early in the stream.
func ThumbnailDescriptor(sourceURL, outputPath string, width, height int, timestamp string) string {
	_ = timestamp
	return fmt.Sprintf(
		"souphttpsrc location=%s ! decodebin ! videoconvert ! videoscale ! video/x-raw,width=%d,height=%d ! pngenc ! filesink location=%s",
		sourceURL, width, height, outputPath)
}

// HLSDescriptor builds a segmented HLS streaming descriptor with a rolling
// window of ten transport-stream segments.
func HLSDescriptor(sourceURL, outputDir string) string {
	return fmt.Sprintf(
		"souphttpsrc location=%s ! decodebin ! videoconvert ! x264enc bitrate=1000 ! mpegtsmux ! hlssink location=%s/segment_%%05d.ts playlist-location=%s/playlist.m3u8 max-files=10",
		sourceURL, outputDir, outputDir)
}
