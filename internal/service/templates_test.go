package service

import (
	"errors"
	"strings"
	"testing"
)

func TestConversionDescriptorSupportedFormats(t *testing.T) {
	source := "https://example.com/video.mp4"

	cases := []struct {
		format string
		output string
		want   []string
	}{
		{"webm", "output.webm", []string{"vp8enc", "webmmux"}},
		{"mp4", "output.mp4", []string{"x264enc", "mp4mux"}},
		{"avi", "output.avi", []string{"x264enc", "avimux"}},
	}

	for _, tc := range cases {
		d, err := ConversionDescriptor(source, tc.format, tc.output)
		if err != nil {
			t.Fatalf("%s: %v", tc.format, err)
		}
		for _, w := range append(tc.want, "souphttpsrc", "decodebin", tc.output) {
			if !strings.Contains(d, w) {
				t.Errorf("%s descriptor missing %q: %s", tc.format, w, d)
			}
		}
	}
}

func TestConversionDescriptorUnsupportedFormat(t *testing.T) {
	_, err := ConversionDescriptor("https://example.com/video.mp4", "mkv", "output.mkv")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestThumbnailDescriptor(t *testing.T) {
	d := ThumbnailDescriptor("https://example.com/video.mp4", "thumb.png", 640, 480, "00:01:30")

	for _, w := range []string{
		"souphttpsrc", "decodebin", "videoconvert", "videoscale",
		"width=640", "height=480", "pngenc", "thumb.png",
	} {
		if !strings.Contains(d, w) {
			t.Errorf("thumbnail descriptor missing %q: %s", w, d)
		}
	}
}

func TestHLSDescriptor(t *testing.T) {
	d := HLSDescriptor("https://example.com/video.mp4", "/output/dir")

	for _, w := range []string{
		"souphttpsrc", "decodebin", "x264enc bitrate=1000", "mpegtsmux", "hlssink",
		"/output/dir/segment_%05d.ts", "/output/dir/playlist.m3u8", "max-files=10",
	} {
		if !strings.Contains(d, w) {
			t.Errorf("hls descriptor missing %q: %s", w, d)
		}
	}
}
