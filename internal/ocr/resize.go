package ocr

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const (
	maxLongEdge = 1200
	jpegQuality = 85
)

// encodeForUpload rescales img so its longer edge is at most maxLongEdge
// pixels (preserving aspect ratio, never below 1px per edge), JPEG-encodes
// it at jpegQuality, and returns the result base64-encoded with no line
// wrapping.
func encodeForUpload(img image.Image) (string, error) {
	resized := rescale(img, maxLongEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func rescale(img image.Image, longEdge int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return img
	}
	if width <= longEdge && height <= longEdge {
		return img
	}

	var newWidth, newHeight int
	if width >= height {
		newWidth = longEdge
		newHeight = height * longEdge / width
	} else {
		newHeight = longEdge
		newWidth = width * longEdge / height
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
