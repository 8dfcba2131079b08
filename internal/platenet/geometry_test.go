// geometry_test.go: Unit tests for the letterbox transform and cropping
package platenet

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLetterboxWideSource(t *testing.T) {
	// 1280x720 into 640x640: ratio 0.5, vertical padding only.
	tf := ComputeLetterbox(1280, 720, 640, 640)

	assert.InDelta(t, 0.5, tf.Ratio, 1e-12)
	assert.InDelta(t, 0.0, tf.PadW, 1e-12)
	assert.InDelta(t, 140.0, tf.PadH, 1e-12)
}

func TestLetterboxRoundTrip(t *testing.T) {
	tf := ComputeLetterbox(1920, 1080, 640, 640)

	points := [][2]float64{{0, 0}, {960, 540}, {1919, 1079}, {123.5, 456.25}}
	for _, p := range points {
		mx, my := tf.ToModel(p[0], p[1])
		sx, sy := tf.ToSource(mx, my)
		assert.InDelta(t, p[0], sx, 1e-9)
		assert.InDelta(t, p[1], sy, 1e-9)
	}
}

func TestLetterboxImageFillAndSize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	dst, tf := LetterboxImage(src, 64, 64)

	require.Equal(t, 64, dst.Bounds().Dx())
	require.Equal(t, 64, dst.Bounds().Dy())
	assert.InDelta(t, 0.64, tf.Ratio, 1e-12)

	// The top border lies inside the padding and must be mid-gray.
	r, g, b, _ := dst.At(32, 2).RGBA()
	assert.Equal(t, uint32(letterboxFill), r>>8)
	assert.Equal(t, uint32(letterboxFill), g>>8)
	assert.Equal(t, uint32(letterboxFill), b>>8)
}

func TestCropWithPaddingClamped(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	// Box touching the top-left corner: padding cannot extend past 0.
	b := DetectionBox{X1: 0, Y1: 0, X2: 40, Y2: 20, Confidence: 0.9}

	crop := cropWithPadding(src, b, 0.05)

	// 5% of 40 = 2 px to the right, 5% of 20 = 1 px below; nothing to the
	// left or above.
	assert.Equal(t, 42, crop.Bounds().Dx())
	assert.Equal(t, 21, crop.Bounds().Dy())
}

func TestCropWithPaddingCopiesPixels(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	src.SetRGBA(5, 5, color.RGBA{200, 10, 30, 255})

	b := DetectionBox{X1: 4, Y1: 4, X2: 8, Y2: 8, Confidence: 0.9}
	crop := cropWithPadding(src, b, 0)

	got := crop.RGBAAt(1, 1)
	assert.Equal(t, color.RGBA{200, 10, 30, 255}, got)

	// Mutating the source afterwards must not leak into the crop.
	src.SetRGBA(5, 5, color.RGBA{0, 0, 0, 255})
	assert.Equal(t, color.RGBA{200, 10, 30, 255}, crop.RGBAAt(1, 1))
}

func TestFillInputTensorLayout(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(1, 0, color.RGBA{255, 0, 128, 255})

	dst := make([]float32, 2*2*3)
	fillInputTensor(img, dst)

	// NHWC: pixel (x=1, y=0) starts at (0*2+1)*3.
	assert.InDelta(t, 1.0, dst[3], 1e-6)
	assert.InDelta(t, 0.0, dst[4], 1e-6)
	assert.InDelta(t, 128.0/255.0, dst[5], 1e-6)
}
