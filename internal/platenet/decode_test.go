// decode_test.go: Unit tests for raw detection tensor decoding
package platenet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawTensor builds a transposed [attributes, candidates] output tensor from
// per-candidate attribute rows.
func rawTensor(t *testing.T, candidates [][]float32) ([]float32, int, int) {
	t.Helper()
	require.NotEmpty(t, candidates)
	numAttrs := len(candidates[0])
	numCandidates := len(candidates)
	data := make([]float32, numAttrs*numCandidates)
	for c, row := range candidates {
		require.Len(t, row, numAttrs)
		for a, v := range row {
			data[a*numCandidates+c] = v
		}
	}
	return data, numAttrs, numCandidates
}

func identityTransform() LetterboxTransform {
	return LetterboxTransform{Ratio: 1, PadW: 0, PadH: 0}
}

func TestDecodeNormalizedCoordinates(t *testing.T) {
	// cx of the first candidate is 0.5 <= 2.0, so the whole batch is
	// treated as normalized and scaled by the model size.
	data, attrs, cands := rawTensor(t, [][]float32{
		{0.5, 0.5, 0.25, 0.125, 0.9},
	})

	boxes := decodeDetections(data, attrs, cands, 0.5, identityTransform(), 640, 640)

	require.Len(t, boxes, 1)
	assert.InDelta(t, 240.0, boxes[0].X1, 1e-6)
	assert.InDelta(t, 300.0, boxes[0].Y1, 1e-6)
	assert.InDelta(t, 400.0, boxes[0].X2, 1e-6)
	assert.InDelta(t, 340.0, boxes[0].Y2, 1e-6)
}

func TestDecodePixelCoordinates(t *testing.T) {
	// First cx is 320 > 2.0: already model-pixel space, no scaling.
	data, attrs, cands := rawTensor(t, [][]float32{
		{320, 320, 160, 80, 0.9},
	})

	boxes := decodeDetections(data, attrs, cands, 0.5, identityTransform(), 640, 640)

	require.Len(t, boxes, 1)
	assert.InDelta(t, 240.0, boxes[0].X1, 1e-6)
	assert.InDelta(t, 400.0, boxes[0].X2, 1e-6)
}

func TestDecodeThresholdFiltersBeforeGeometry(t *testing.T) {
	data, attrs, cands := rawTensor(t, [][]float32{
		{0.5, 0.5, 0.2, 0.1, 0.3},
		{0.4, 0.4, 0.2, 0.1, 0.8},
	})

	boxes := decodeDetections(data, attrs, cands, 0.5, identityTransform(), 640, 640)

	require.Len(t, boxes, 1)
	assert.InDelta(t, 0.8, boxes[0].Confidence, 1e-6)
}

func TestDecodeClassArgmax(t *testing.T) {
	// Three class scores; the middle one wins.
	data, attrs, cands := rawTensor(t, [][]float32{
		{0.5, 0.5, 0.2, 0.1, 0.1, 0.85, 0.4},
	})

	boxes := decodeDetections(data, attrs, cands, 0.5, identityTransform(), 640, 640)

	require.Len(t, boxes, 1)
	assert.Equal(t, 1, boxes[0].ClassID)
	assert.InDelta(t, 0.85, boxes[0].Confidence, 1e-6)
}

func TestDecodeInverseLetterbox(t *testing.T) {
	// 1280x720 source letterboxed into 640x640: ratio 0.5, PadH 140.
	tf := ComputeLetterbox(1280, 720, 640, 640)
	data, attrs, cands := rawTensor(t, [][]float32{
		{0.5, 0.5, 0.1, 0.1, 0.9},
	})

	boxes := decodeDetections(data, attrs, cands, 0.5, tf, 640, 640)

	require.Len(t, boxes, 1)
	// Model center (320, 320) maps back to source (640, 360).
	assert.InDelta(t, 640.0, boxes[0].CenterX(), 1e-6)
	assert.InDelta(t, 360.0, boxes[0].CenterY(), 1e-6)
	// 64px model box doubles back to 128px in source space.
	assert.InDelta(t, 128.0, boxes[0].Width(), 1e-6)
}

func TestDecodeMalformedTensor(t *testing.T) {
	assert.Nil(t, decodeDetections(nil, 5, 0, 0.5, identityTransform(), 640, 640))
	assert.Nil(t, decodeDetections(make([]float32, 4), 4, 1, 0.5, identityTransform(), 640, 640))
	assert.Nil(t, decodeDetections(make([]float32, 3), 5, 1, 0.5, identityTransform(), 640, 640))
}

func TestCharDetectionsAnchorAndCharset(t *testing.T) {
	boxes := []DetectionBox{
		{X1: 0, Y1: 0, X2: 10, Y2: 20, Confidence: 0.9, ClassID: 10}, // 'A'
		{X1: 20, Y1: 0, X2: 30, Y2: 20, Confidence: 0.8, ClassID: 3}, // '3'
		{X1: 40, Y1: 0, X2: 50, Y2: 20, Confidence: 0.7, ClassID: 99},
	}

	chars := charDetections(boxes)

	require.Len(t, chars, 2, "out-of-range class must be dropped")
	assert.Equal(t, byte('A'), chars[0].Char)
	assert.InDelta(t, 5.0, chars[0].X, 1e-6)
	assert.False(t, chars[0].IsDigit())
	assert.Equal(t, byte('3'), chars[1].Char)
	assert.True(t, chars[1].IsDigit())
}
