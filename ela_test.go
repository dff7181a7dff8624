package blockcodec

import (
	"image"
	"image/color"
	"testing"
)

func noiseImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x * 17) ^ (y * 31)),
				G: uint8((x * 43) + (y * 13)),
				B: uint8((x * 7) ^ (y * 11)),
				A: 255,
			})
		}
	}
	return img
}

func TestErrorLevelAnalysis(t *testing.T) {
	src := noiseImage(40, 24)

	ela, err := ErrorLevelAnalysis(src)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ela.Bounds().Size(), src.Bounds().Size(); got != want {
		t.Fatalf("size: got %v want %v", got, want)
	}
	nonZero := false
	for i := 0; i < len(ela.Pix); i += 4 {
		if ela.Pix[i] != 0 || ela.Pix[i+1] != 0 || ela.Pix[i+2] != 0 {
			nonZero = true
		}
		if ela.Pix[i+3] != 0xff {
			t.Fatalf("alpha must be opaque")
		}
	}
	if !nonZero {
		t.Fatalf("noise image should not survive JPEG re-compression unchanged")
	}

	dark, err := ErrorLevelAnalysis(src, func(o *ELAOptions) { o.ErrorScale = 0 })
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(dark.Pix); i += 4 {
		if dark.Pix[i] != 0 || dark.Pix[i+1] != 0 || dark.Pix[i+2] != 0 {
			t.Fatalf("zero error scale must produce a black image")
		}
	}

	bright, err := ErrorLevelAnalysis(src, func(o *ELAOptions) { o.ErrorScale = 50 })
	if err != nil {
		t.Fatal(err)
	}
	for i := range ela.Pix {
		if bright.Pix[i] < ela.Pix[i] {
			t.Fatalf("higher error scale must not darken pixel %d", i)
		}
	}
}

func TestErrorLevelAnalysisInvalid(t *testing.T) {
	if _, err := ErrorLevelAnalysis(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Fatalf("expected error for empty image")
	}
	if _, err := ErrorLevelAnalysis(noiseImage(8, 8), func(o *ELAOptions) { o.ErrorScale = -1 }); err == nil {
		t.Fatalf("expected error for negative scale")
	}
}

func TestPreview(t *testing.T) {
	src := noiseImage(64, 32)
	for _, tc := range []struct {
		name   string
		w, h   uint
		interp Interpolation
		want   image.Point
	}{
		{name: "nearest", w: 32, h: 16, interp: InterpolationNearest, want: image.Pt(32, 16)},
		{name: "lanczos3", w: 100, h: 100, interp: InterpolationLanczos3, want: image.Pt(100, 100)},
		{name: "keep aspect", w: 16, h: 0, interp: InterpolationBilinear, want: image.Pt(16, 8)},
		{name: "default", interp: InterpolationMitchellNetravali, want: image.Pt(400, 400)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Preview(src, tc.w, tc.h, tc.interp).Bounds().Size()
			if got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}
