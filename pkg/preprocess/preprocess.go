// Package preprocess shrinks oversized photos on the client side before they
// are sent to the API, keeping request bodies under serverless upload limits.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// Files at or below this size are sent as-is.
	sizeThreshold = 3 * 1024 * 1024
	// Longest edge after shrinking.
	maxDimension = 1536

	jpegQuality = 85
)

// File is an in-memory image file as handed to the uploader.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// ShrinkForUpload returns the file unchanged when it is small enough.
// Otherwise it decodes the image, scales it so the longer edge is capped at
// 1536 pixels (never upscaling), and re-encodes as JPEG with a .jpg name.
// A decode failure is fatal: oversized data must not pass through silently.
func ShrinkForUpload(f File) (File, error) {
	if len(f.Data) <= sizeThreshold {
		return f, nil
	}

	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return File{}, fmt.Errorf("preprocess: decode %s: %w", f.Name, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	newWidth, newHeight := width, height
	if width > maxDimension || height > maxDimension {
		scale := float64(maxDimension) / math.Max(float64(width), float64(height))
		newWidth = int(math.Round(float64(width) * scale))
		newHeight = int(math.Round(float64(height) * scale))
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return File{}, fmt.Errorf("preprocess: encode jpeg: %w", err)
	}

	return File{
		Name:     replaceExtension(f.Name, ".jpg"),
		MIMEType: "image/jpeg",
		Data:     buf.Bytes(),
	}, nil
}

func replaceExtension(name, ext string) string {
	old := filepath.Ext(name)
	return strings.TrimSuffix(name, old) + ext
}
