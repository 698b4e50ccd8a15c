package ocr

import (
	"encoding/base64"
	"image"
	"image/color"
	"strings"
	"testing"
)

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func TestRescale_LeavesSmallImagesUntouched(t *testing.T) {
	img := solidImage(100, 50)
	out := rescale(img, maxLongEdge)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 50 {
		t.Errorf("got %v, want unchanged 100x50", out.Bounds())
	}
}

func TestRescale_BoundsLongerEdge(t *testing.T) {
	img := solidImage(2400, 1200)
	out := rescale(img, maxLongEdge)
	if out.Bounds().Dx() != maxLongEdge {
		t.Errorf("width = %d, want %d", out.Bounds().Dx(), maxLongEdge)
	}
	if out.Bounds().Dy() != maxLongEdge/2 {
		t.Errorf("height = %d, want %d", out.Bounds().Dy(), maxLongEdge/2)
	}
}

func TestRescale_PreservesAspectRatioForTallImages(t *testing.T) {
	img := solidImage(600, 2400)
	out := rescale(img, maxLongEdge)
	if out.Bounds().Dy() != maxLongEdge {
		t.Errorf("height = %d, want %d", out.Bounds().Dy(), maxLongEdge)
	}
	if out.Bounds().Dx() != maxLongEdge/4 {
		t.Errorf("width = %d, want %d", out.Bounds().Dx(), maxLongEdge/4)
	}
}

func TestEncodeForUpload_ProducesValidBase64NoLineWrap(t *testing.T) {
	img := solidImage(20, 20)
	encoded, err := encodeForUpload(img)
	if err != nil {
		t.Fatalf("encodeForUpload: %v", err)
	}
	if strings.Contains(encoded, "\n") {
		t.Error("encoded output contains a newline")
	}
	if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
		t.Errorf("output is not valid standard base64: %v", err)
	}
}
