package imageproc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"testing"

	"server/internal/domain"
)

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 50 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("output format = %q, want jpeg", format)
	}
	return cfg.Width, cfg.Height
}

func TestNormalizeCropsWideImage(t *testing.T) {
	out, err := Normalize(encodeJPEG(t, 3000, 2000), "image/jpeg")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if out.Width != 1333 || out.Height != 2000 {
		t.Fatalf("dimensions = %dx%d, want 1333x2000", out.Width, out.Height)
	}
	w, h := decodeDims(t, out.Bytes)
	if w != out.Width || h != out.Height {
		t.Fatalf("encoded dimensions %dx%d do not match reported %dx%d", w, h, out.Width, out.Height)
	}
	if out.MIMEType != domain.MIMEJPEG {
		t.Fatalf("mime = %q, want image/jpeg", out.MIMEType)
	}
}

func TestNormalizeCropsTallImage(t *testing.T) {
	out, err := Normalize(encodeJPEG(t, 1000, 2000), "image/jpeg")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out.Width != 1000 || out.Height != 1500 {
		t.Fatalf("dimensions = %dx%d, want 1000x1500", out.Width, out.Height)
	}
}

func TestNormalizeAspectRatio(t *testing.T) {
	sizes := []struct{ w, h int }{
		{600, 400},
		{400, 600},
		{1024, 1024},
		{123, 457},
		{2000, 3000},
	}

	for _, size := range sizes {
		out, err := Normalize(encodeJPEG(t, size.w, size.h), "image/jpeg")
		if err != nil {
			t.Fatalf("Normalize(%dx%d): %v", size.w, size.h, err)
		}
		got := float64(out.Width) / float64(out.Height)
		if math.Abs(got-2.0/3.0) > 0.005 {
			t.Fatalf("Normalize(%dx%d) aspect = %.4f, want ~0.6667", size.w, size.h, got)
		}
		if out.Width > size.w || out.Height > size.h {
			t.Fatalf("Normalize(%dx%d) grew the image to %dx%d", size.w, size.h, out.Width, out.Height)
		}
	}
}

func TestNormalizeExactAspectIsUntouched(t *testing.T) {
	out, err := Normalize(encodeJPEG(t, 800, 1200), "image/jpeg")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out.Width != 800 || out.Height != 1200 {
		t.Fatalf("dimensions = %dx%d, want 800x1200", out.Width, out.Height)
	}
}

// withOrientation6 splices an APP1 segment declaring EXIF orientation 6
// (rotate 90 CW to display) right after the SOI marker of a baseline JPEG.
func withOrientation6(t *testing.T, data []byte) []byte {
	t.Helper()
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatal("fixture is not a JPEG")
	}

	tiff := []byte{
		'M', 'M', 0x00, 0x2A, // big-endian TIFF header
		0x00, 0x00, 0x00, 0x08, // IFD0 offset
		0x00, 0x01, // one directory entry
		0x01, 0x12, // Orientation tag
		0x00, 0x03, // SHORT
		0x00, 0x00, 0x00, 0x01, // count
		0x00, 0x06, 0x00, 0x00, // value 6, padded
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	length := len(payload) + 2

	out := make([]byte, 0, len(data)+len(payload)+4)
	out = append(out, data[:2]...)
	out = append(out, 0xFF, 0xE1, byte(length>>8), byte(length))
	out = append(out, payload...)
	return append(out, data[2:]...)
}

// A rotated phone photo stores landscape pixels with an orientation flag.
// Orientation must be applied before dimensions are read: a 3000x2000 buffer
// flagged orientation 6 is really a 2000x3000 portrait and, being exactly
// 2:3, must come through uncropped. Reading the pre-rotation buffer instead
// would crop it to 1333x2000.
func TestNormalizeAppliesOrientationBeforeCrop(t *testing.T) {
	data := withOrientation6(t, encodeJPEG(t, 3000, 2000))

	out, err := Normalize(data, "image/jpeg")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out.Width != 2000 || out.Height != 3000 {
		t.Fatalf("dimensions = %dx%d, want 2000x3000", out.Width, out.Height)
	}
	w, h := decodeDims(t, out.Bytes)
	if w != 2000 || h != 3000 {
		t.Fatalf("encoded dimensions = %dx%d, want 2000x3000", w, h)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"), "image/jpeg")
	if err == nil {
		t.Fatal("expected error for non-image bytes")
	}
	var invalid *domain.InvalidImageError
	if !errors.As(err, &invalid) {
		t.Fatalf("error type = %T, want *domain.InvalidImageError", err)
	}
}

func TestNormalizeIgnoresDeclaredType(t *testing.T) {
	// Bytes win over the declared type: a JPEG declared as PNG still decodes.
	out, err := Normalize(encodeJPEG(t, 600, 900), "image/png")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out.MIMEType != domain.MIMEJPEG {
		t.Fatalf("mime = %q, want image/jpeg", out.MIMEType)
	}
}
