// Package imageproc holds the pure image transforms of the pipeline: the
// MIME/extension mapping and the 2:3 aspect normalization.
package imageproc

import (
	"strings"

	"server/internal/domain"
)

// ExtensionFor maps a MIME type onto the canonical file extension. Unknown
// types clamp to "jpg"; the mapping never reinterprets bytes, only names.
func ExtensionFor(mimeType string) string {
	switch mimeType {
	case domain.MIMEPNG:
		return "png"
	case domain.MIMEWebP:
		return "webp"
	default:
		return "jpg"
	}
}

// MIMETypeFor is the inverse mapping, keyed on the path suffix. SVG is
// included for swatch assets; everything unrecognized is treated as JPEG.
func MIMETypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".png"):
		return domain.MIMEPNG
	case strings.HasSuffix(path, ".webp"):
		return domain.MIMEWebP
	case strings.HasSuffix(path, ".svg"):
		return "image/svg+xml"
	default:
		return domain.MIMEJPEG
	}
}
