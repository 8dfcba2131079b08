package platenet

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// letterboxFill is the mid-gray border fill of the letterboxed canvas.
const letterboxFill = 114

// LetterboxTransform maps between source-pixel space and the fixed model
// canvas. Ephemeral, recomputed on every resize.
type LetterboxTransform struct {
	Ratio float64 // uniform scale applied to the source
	PadW  float64 // horizontal padding on each side, in model pixels
	PadH  float64 // vertical padding on each side, in model pixels
}

// ComputeLetterbox returns the transform placing a srcW x srcH image
// centered on a tgtW x tgtH canvas with aspect ratio preserved.
func ComputeLetterbox(srcW, srcH, tgtW, tgtH int) LetterboxTransform {
	ratio := min(float64(tgtW)/float64(srcW), float64(tgtH)/float64(srcH))
	return LetterboxTransform{
		Ratio: ratio,
		PadW:  (float64(tgtW) - float64(srcW)*ratio) / 2,
		PadH:  (float64(tgtH) - float64(srcH)*ratio) / 2,
	}
}

// ToSource maps a model-canvas point back to source-pixel space.
func (t LetterboxTransform) ToSource(mx, my float64) (sx, sy float64) {
	return (mx - t.PadW) / t.Ratio, (my - t.PadH) / t.Ratio
}

// ToModel maps a source-pixel point onto the model canvas.
func (t LetterboxTransform) ToModel(sx, sy float64) (mx, my float64) {
	return sx*t.Ratio + t.PadW, sy*t.Ratio + t.PadH
}

// LetterboxImage scales src uniformly onto a tgtW x tgtH canvas, centered,
// border filled with mid-gray. Returns the canvas and the transform used.
func LetterboxImage(src image.Image, tgtW, tgtH int) (*image.RGBA, LetterboxTransform) {
	bounds := src.Bounds()
	t := ComputeLetterbox(bounds.Dx(), bounds.Dy(), tgtW, tgtH)

	dst := image.NewRGBA(image.Rect(0, 0, tgtW, tgtH))
	fill := color.RGBA{letterboxFill, letterboxFill, letterboxFill, 255}
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{}, xdraw.Src)

	scaledW := int(float64(bounds.Dx())*t.Ratio + 0.5)
	scaledH := int(float64(bounds.Dy())*t.Ratio + 0.5)
	inner := image.Rect(int(t.PadW), int(t.PadH), int(t.PadW)+scaledW, int(t.PadH)+scaledH)
	xdraw.ApproxBiLinear.Scale(dst, inner, src, bounds, xdraw.Src, nil)

	return dst, t
}

// fillInputTensor writes img into dst as NHWC float32 with shape
// (1, height, width, 3), values scaled to 0..1. dst must hold h*w*3 floats.
func fillInputTensor(img *image.RGBA, dst []float32) {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		base := y * w * 3
		for x := 0; x < w; x++ {
			dst[base+x*3+0] = float32(row[x*4+0]) / 255.0
			dst[base+x*3+1] = float32(row[x*4+1]) / 255.0
			dst[base+x*3+2] = float32(row[x*4+2]) / 255.0
		}
	}
}

// cropWithPadding extracts the plate region expanded by pad per side,
// clamped to the image bounds. The returned image owns its pixels.
func cropWithPadding(src image.Image, box DetectionBox, pad float64) *image.RGBA {
	bounds := src.Bounds()
	padX := box.Width() * pad
	padY := box.Height() * pad

	x1 := int(box.X1 - padX)
	y1 := int(box.Y1 - padY)
	x2 := int(box.X2 + padX + 0.5)
	y2 := int(box.Y2 + padY + 0.5)

	x1 = max(x1, bounds.Min.X)
	y1 = max(y1, bounds.Min.Y)
	x2 = min(x2, bounds.Max.X)
	y2 = min(y2, bounds.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	crop := image.NewRGBA(image.Rect(0, 0, x2-x1, y2-y1))
	xdraw.Draw(crop, crop.Bounds(), src, image.Pt(x1, y1), xdraw.Src)
	return crop
}
