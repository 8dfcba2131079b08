// nms_test.go: Unit tests for IoU and greedy non-max suppression
package platenet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x1, y1, x2, y2, conf float64) DetectionBox {
	return DetectionBox{X1: x1, Y1: y1, X2: x2, Y2: y2, Confidence: conf}
}

func TestIoUSymmetric(t *testing.T) {
	a := box(0, 0, 10, 10, 0.9)
	b := box(5, 5, 15, 15, 0.8)

	assert.InDelta(t, IoU(a, b), IoU(b, a), 1e-12, "IoU must be symmetric")
}

func TestIoUSelf(t *testing.T) {
	a := box(3, 4, 13, 24, 0.5)

	assert.InDelta(t, 1.0, IoU(a, a), 1e-12, "IoU of a box with itself must be 1")
}

func TestIoUDisjoint(t *testing.T) {
	a := box(0, 0, 10, 10, 0.9)
	b := box(20, 20, 30, 30, 0.9)

	assert.Equal(t, 0.0, IoU(a, b), "disjoint boxes must have zero IoU")
}

func TestIoUPartialOverlap(t *testing.T) {
	// 5x5 intersection over 100+100-25 union
	a := box(0, 0, 10, 10, 0.9)
	b := box(5, 5, 15, 15, 0.8)

	assert.InDelta(t, 25.0/175.0, IoU(a, b), 1e-12)
}

func TestNMSSuppressesOverlapping(t *testing.T) {
	boxes := []DetectionBox{
		box(0, 0, 10, 10, 0.7),
		box(1, 1, 11, 11, 0.9), // overlaps the first heavily, higher confidence
		box(50, 50, 60, 60, 0.8),
	}

	kept := nonMaxSuppression(boxes, 0.45)

	require.Len(t, kept, 2)
	assert.InDelta(t, 0.9, kept[0].Confidence, 1e-12, "highest confidence box kept first")
	assert.InDelta(t, 0.8, kept[1].Confidence, 1e-12)
}

func TestNMSIdempotent(t *testing.T) {
	boxes := []DetectionBox{
		box(0, 0, 10, 10, 0.7),
		box(2, 2, 12, 12, 0.9),
		box(100, 0, 110, 10, 0.6),
		box(0, 100, 10, 110, 0.5),
	}

	once := nonMaxSuppression(boxes, 0.45)
	twice := nonMaxSuppression(once, 0.45)

	assert.Equal(t, once, twice, "NMS must be idempotent on its own output")
}

func TestNMSTiesByOriginalIndex(t *testing.T) {
	// Two identical boxes with identical confidence: the first by original
	// index wins, the second is suppressed.
	first := DetectionBox{X1: 0, Y1: 0, X2: 10, Y2: 10, Confidence: 0.8, ClassID: 1}
	second := DetectionBox{X1: 0, Y1: 0, X2: 10, Y2: 10, Confidence: 0.8, ClassID: 2}

	kept := nonMaxSuppression([]DetectionBox{first, second}, 0.45)

	require.Len(t, kept, 1)
	assert.Equal(t, 1, kept[0].ClassID)
}

func TestNMSEmptyAndSingle(t *testing.T) {
	assert.Empty(t, nonMaxSuppression(nil, 0.45))

	one := []DetectionBox{box(0, 0, 5, 5, 0.9)}
	assert.Equal(t, one, nonMaxSuppression(one, 0.45))
}
