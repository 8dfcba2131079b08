// Package frame bridges an unbounded camera frame source to the strict
// single-call contract of the recognition pipeline: depth-1 handoff with
// drop, pixel conversion on a worker, inference on one owning goroutine.
package frame

import (
	"time"
)

// PixelFormat identifies the sensor-native pixel layout of a raw frame.
type PixelFormat int

const (
	FormatNV21 PixelFormat = iota // Y plane followed by interleaved VU
	FormatYUV420                  // planar Y, U, V (I420)
	FormatRGBA                    // packed RGBA, 4 bytes per pixel
)

// RawFrame is one sensor frame. Pixels are owned by the frame; the source
// callback's buffer is never retained.
type RawFrame struct {
	Pixels    []byte
	Width     int
	Height    int
	Format    PixelFormat
	Rotation  int // clockwise degrees: 0, 90, 180 or 270
	Timestamp time.Time
}

// Source delivers raw sensor frames by push callback at device rate. The
// pixel buffer passed to the callback is only valid for the duration of
// the call.
type Source interface {
	// Start begins frame delivery. deliver is invoked from the source's
	// own context; implementations of deliver must not block.
	Start(deliver func(RawFrame)) error
	Stop() error
}

// CopyPixels returns a frame whose pixel bytes are an owned copy, safe to
// retain after the source callback returns.
func CopyPixels(f RawFrame) RawFrame {
	pixels := make([]byte, len(f.Pixels))
	copy(pixels, f.Pixels)
	f.Pixels = pixels
	return f
}
