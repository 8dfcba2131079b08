package frame

import (
	"fmt"
	"image"

	"github.com/platewatch/platewatch-go/internal/errors"
)

// Convert turns a raw sensor frame into an upright RGBA image: pixel format
// conversion first, then the rotation tag is applied. A malformed frame
// (truncated buffer, unknown format, bad rotation) returns an error, which
// downstream treats the same as no detection.
func Convert(f RawFrame) (*image.RGBA, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, errors.Newf("frame: invalid dimensions %dx%d", f.Width, f.Height).
			Component("frame").
			Category(errors.CategoryFrameConversion).
			Build()
	}

	var img *image.RGBA
	var err error
	switch f.Format {
	case FormatNV21:
		img, err = nv21ToRGBA(f.Pixels, f.Width, f.Height)
	case FormatYUV420:
		img, err = i420ToRGBA(f.Pixels, f.Width, f.Height)
	case FormatRGBA:
		img, err = rgbaToImage(f.Pixels, f.Width, f.Height)
	default:
		err = fmt.Errorf("unknown pixel format %d", f.Format)
	}
	if err != nil {
		return nil, errors.New(fmt.Errorf("frame: conversion failed: %w", err)).
			Component("frame").
			Category(errors.CategoryFrameConversion).
			Context("format", int(f.Format)).
			Build()
	}

	return rotate(img, f.Rotation)
}

func chromaSize(w, h int) int {
	return ((w + 1) / 2) * ((h + 1) / 2)
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// yuvToRGB converts one full-range BT.601 YUV sample using fixed-point math.
func yuvToRGB(y, u, v int) (r, g, b uint8) {
	u -= 128
	v -= 128
	r = clampByte(y + ((91881 * v) >> 16))
	g = clampByte(y - ((22554*u + 46802*v) >> 16))
	b = clampByte(y + ((116130 * u) >> 16))
	return r, g, b
}

func nv21ToRGBA(pixels []byte, w, h int) (*image.RGBA, error) {
	need := w*h + 2*chromaSize(w, h)
	if len(pixels) < need {
		return nil, fmt.Errorf("NV21 buffer too short: %d < %d", len(pixels), need)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	chromaStride := ((w + 1) / 2) * 2
	vuPlane := pixels[w*h:]
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			y := int(pixels[row*w+col])
			ci := (row/2)*chromaStride + (col/2)*2
			v := int(vuPlane[ci])
			u := int(vuPlane[ci+1])
			r, g, b := yuvToRGB(y, u, v)
			o := row*img.Stride + col*4
			img.Pix[o+0] = r
			img.Pix[o+1] = g
			img.Pix[o+2] = b
			img.Pix[o+3] = 255
		}
	}
	return img, nil
}

func i420ToRGBA(pixels []byte, w, h int) (*image.RGBA, error) {
	cs := chromaSize(w, h)
	need := w*h + 2*cs
	if len(pixels) < need {
		return nil, fmt.Errorf("I420 buffer too short: %d < %d", len(pixels), need)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	chromaW := (w + 1) / 2
	uPlane := pixels[w*h : w*h+cs]
	vPlane := pixels[w*h+cs:]
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			y := int(pixels[row*w+col])
			ci := (row/2)*chromaW + col/2
			u := int(uPlane[ci])
			v := int(vPlane[ci])
			r, g, b := yuvToRGB(y, u, v)
			o := row*img.Stride + col*4
			img.Pix[o+0] = r
			img.Pix[o+1] = g
			img.Pix[o+2] = b
			img.Pix[o+3] = 255
		}
	}
	return img, nil
}

func rgbaToImage(pixels []byte, w, h int) (*image.RGBA, error) {
	need := w * h * 4
	if len(pixels) < need {
		return nil, fmt.Errorf("RGBA buffer too short: %d < %d", len(pixels), need)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels[:need])
	return img, nil
}

// rotate returns img rotated clockwise by the given degrees.
func rotate(img *image.RGBA, degrees int) (*image.RGBA, error) {
	switch degrees {
	case 0:
		return img, nil
	case 90, 180, 270:
	default:
		return nil, errors.Newf("frame: unsupported rotation %d", degrees).
			Component("frame").
			Category(errors.CategoryFrameConversion).
			Build()
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var dst *image.RGBA
	if degrees == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := y*img.Stride + x*4
			var dx, dy int
			switch degrees {
			case 90:
				dx, dy = h-1-y, x
			case 180:
				dx, dy = w-1-x, h-1-y
			case 270:
				dx, dy = y, w-1-x
			}
			dstOff := dy*dst.Stride + dx*4
			copy(dst.Pix[dstOff:dstOff+4], img.Pix[src:src+4])
		}
	}
	return dst, nil
}
