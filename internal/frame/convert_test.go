// convert_test.go: Unit tests for raw frame pixel conversion and rotation
package frame

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertRGBAPassthrough(t *testing.T) {
	pixels := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}
	img, err := Convert(RawFrame{Pixels: pixels, Width: 2, Height: 2, Format: FormatRGBA})

	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(1, 1))
}

func TestConvertNV21Gray(t *testing.T) {
	// 2x2 frame, Y=128 everywhere, neutral chroma (U=V=128) must come out
	// as mid-gray.
	pixels := []byte{128, 128, 128, 128, 128, 128}
	img, err := Convert(RawFrame{Pixels: pixels, Width: 2, Height: 2, Format: FormatNV21})

	require.NoError(t, err)
	assert.Equal(t, color.RGBA{128, 128, 128, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{128, 128, 128, 255}, img.RGBAAt(1, 1))
}

func TestConvertI420Gray(t *testing.T) {
	pixels := []byte{200, 200, 200, 200, 128, 128}
	img, err := Convert(RawFrame{Pixels: pixels, Width: 2, Height: 2, Format: FormatYUV420})

	require.NoError(t, err)
	assert.Equal(t, color.RGBA{200, 200, 200, 255}, img.RGBAAt(0, 0))
}

func TestConvertRotation90(t *testing.T) {
	// 3x2 frame with a red marker at (0,0); after a 90 degree clockwise
	// rotation the image is 2x3 and the marker sits at (1,0).
	pixels := make([]byte, 3*2*4)
	for i := 3; i < len(pixels); i += 4 {
		pixels[i] = 255 // opaque
	}
	pixels[0] = 255 // red at (0,0)

	img, err := Convert(RawFrame{Pixels: pixels, Width: 3, Height: 2, Format: FormatRGBA, Rotation: 90})

	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(1, 0))
}

func TestConvertRotation180(t *testing.T) {
	pixels := make([]byte, 2*2*4)
	pixels[0] = 255
	img, err := Convert(RawFrame{Pixels: pixels, Width: 2, Height: 2, Format: FormatRGBA, Rotation: 180})

	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.RGBAAt(1, 1).R)
}

func TestConvertTruncatedBuffer(t *testing.T) {
	_, err := Convert(RawFrame{Pixels: make([]byte, 3), Width: 2, Height: 2, Format: FormatNV21})
	assert.Error(t, err)

	_, err = Convert(RawFrame{Pixels: make([]byte, 8), Width: 2, Height: 2, Format: FormatRGBA})
	assert.Error(t, err)
}

func TestConvertUnknownFormat(t *testing.T) {
	_, err := Convert(RawFrame{Pixels: make([]byte, 16), Width: 2, Height: 2, Format: PixelFormat(42)})
	assert.Error(t, err)
}

func TestConvertBadRotation(t *testing.T) {
	_, err := Convert(RawFrame{Pixels: make([]byte, 16), Width: 2, Height: 2, Format: FormatRGBA, Rotation: 45})
	assert.Error(t, err)
}

func TestConvertBadDimensions(t *testing.T) {
	_, err := Convert(RawFrame{Pixels: nil, Width: 0, Height: 2, Format: FormatRGBA})
	assert.Error(t, err)
}

func TestCopyPixelsOwnsBuffer(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	f := CopyPixels(RawFrame{Pixels: src, Width: 1, Height: 1, Format: FormatRGBA})

	src[0] = 99
	assert.Equal(t, byte(1), f.Pixels[0], "frame must own an independent copy")
}
