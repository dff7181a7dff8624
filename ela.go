package blockcodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
)

// ELAOptions controls error level analysis.
type ELAOptions struct {
	// Quality is the JPEG quality used for re-compression (1-100).
	Quality int
	// ErrorScale brightens the difference by ErrorScale/10.
	ErrorScale float64
}

// ErrorLevelAnalysis re-compresses img as JPEG and returns the per-channel
// absolute difference against the original, brightened by ErrorScale/10.
// Regions edited after the last save tend to stand out in the result.
func ErrorLevelAnalysis(img image.Image, opts ...func(o *ELAOptions)) (*image.RGBA, error) {
	opt := ELAOptions{
		Quality:    defaultQuality,
		ErrorScale: defaultErrorScale,
	}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	if opt.ErrorScale < 0 {
		return nil, fmt.Errorf("negative error scale %v", opt.ErrorScale)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opt.Quality}); err != nil {
		return nil, fmt.Errorf("recompress: %w", err)
	}
	recompressed, err := jpeg.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode recompressed: %w", err)
	}

	b := img.Bounds()
	rb := recompressed.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	factor := opt.ErrorScale / 10
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r0, g0, b0 := rgbAt(img, b.Min.X+x, b.Min.Y+y)
			r1, g1, b1 := rgbAt(recompressed, rb.Min.X+x, rb.Min.Y+y)
			out.SetRGBA(x, y, color.RGBA{
				R: enhance(absDiff(r0, r1), factor),
				G: enhance(absDiff(g0, g1), factor),
				B: enhance(absDiff(b0, b1), factor),
				A: 0xFF,
			})
		}
	}
	return out, nil
}

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func enhance(v uint8, factor float64) uint8 {
	f := float64(v)*factor + 0.5
	if f > 255 {
		return 255
	}
	return uint8(f)
}
