// Package vision prepares rendered document-page bitmaps for the AI
// collaborators: the Google Vision OCR pass and the OpenAI vision diagnosis
// calls. Pages arrive as PNG or JPEG renders and leave as bounded-size PNG
// bytes or base64 data URLs.
package vision

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Image preprocessing errors
var (
	ErrInvalidImage      = errors.New("vision: invalid image data")
	ErrInvalidDimensions = errors.New("vision: invalid dimensions")
	ErrEmptyImage        = errors.New("vision: empty image data")
)

// DefaultMaxDimension bounds the longest side of a prepared page bitmap.
// Roughly 150 DPI for a letter page, plenty for OCR and vision models while
// keeping request bodies small.
const DefaultMaxDimension = 1600

// DecodeImage decodes image data from common formats (PNG, JPEG, GIF).
// This is a pure function with no side effects.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return img, nil
}

// ScaleToFit shrinks an image so its longest side is at most maxDim,
// preserving aspect ratio. Images already within bounds are returned as-is;
// pages are never upscaled.
// This is a pure function with no side effects.
func ScaleToFit(img image.Image, maxDim int) (image.Image, error) {
	if maxDim <= 0 {
		return nil, ErrInvalidDimensions
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	longest := max(width, height)
	if longest <= maxDim {
		return img, nil
	}

	scale := float64(maxDim) / float64(longest)
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, nil
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("vision: failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL wraps PNG bytes in a base64 data URL for vision-capable chat APIs.
// This is a pure function with no side effects.
func DataURL(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}

// PreparePage runs the full page-bitmap pipeline: decode, scale to fit
// maxDim, re-encode as PNG. Pass maxDim <= DefaultMaxDimension for OCR and
// diagnosis calls; a maxDim of 0 uses the default.
func PreparePage(data []byte, maxDim int) ([]byte, error) {
	if maxDim == 0 {
		maxDim = DefaultMaxDimension
	}

	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}

	scaled, err := ScaleToFit(img, maxDim)
	if err != nil {
		return nil, err
	}

	return EncodePNG(scaled)
}

// PreparePageDataURL is PreparePage with the result wrapped as a data URL,
// ready for an OpenAI vision message part.
func PreparePageDataURL(data []byte, maxDim int) (string, error) {
	pngData, err := PreparePage(data, maxDim)
	if err != nil {
		return "", err
	}
	return DataURL(pngData), nil
}

// max returns the maximum of two integers
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
