// segment_test.go: Unit tests for character ordering and plate segmentation
package platenet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func char(x float64, ch byte) CharDetection {
	return CharDetection{X: x, Y: 0, Char: ch, Confidence: 0.9}
}

func TestSegmentLettersThenDigits(t *testing.T) {
	chars := []CharDetection{
		char(30, '1'), char(0, 'A'), char(40, '2'),
		char(10, 'B'), char(50, '3'), char(20, 'C'),
	}

	code, number := segmentCharacters(chars, 1.8)

	assert.Equal(t, "ABC", code)
	assert.Equal(t, "123", number)
}

func TestSegmentInterleavedPartitionsByClass(t *testing.T) {
	// Letters go to the code regardless of where they sit in x order.
	chars := []CharDetection{
		char(0, '7'), char(10, 'K'), char(20, '8'), char(30, 'L'),
	}

	code, number := segmentCharacters(chars, 1.8)

	assert.Equal(t, "KL", code)
	assert.Equal(t, "78", number)
}

func TestSegmentAllDigitsWideGap(t *testing.T) {
	// Gaps are 10, 1, 49; mean 20; max 49 > 1.8*20 so the split lands
	// after the widest gap's left neighbor.
	chars := []CharDetection{
		char(0, '1'), char(10, '2'), char(11, '3'), char(60, '4'),
	}

	code, number := segmentCharacters(chars, 1.8)

	assert.Equal(t, "123", code)
	assert.Equal(t, "4", number)
}

func TestSegmentAllDigitsUniformSpacing(t *testing.T) {
	chars := []CharDetection{
		char(0, '5'), char(10, '6'), char(20, '7'), char(30, '8'),
	}

	code, number := segmentCharacters(chars, 1.8)

	assert.Empty(t, code)
	assert.Equal(t, "5678", number)
}

func TestSegmentSingleCharacter(t *testing.T) {
	code, number := segmentCharacters([]CharDetection{char(5, '9')}, 1.8)

	assert.Empty(t, code)
	assert.Equal(t, "9", number)
}

func TestSegmentEmpty(t *testing.T) {
	code, number := segmentCharacters(nil, 1.8)

	assert.Empty(t, code)
	assert.Empty(t, number)
}

func TestSegmentDoesNotMutateInput(t *testing.T) {
	chars := []CharDetection{char(20, 'Z'), char(0, '1')}
	segmentCharacters(chars, 1.8)

	assert.Equal(t, 20.0, chars[0].X, "input slice order must be preserved")
}
