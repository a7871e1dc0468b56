package imageproc

import (
	"bytes"
	"image"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"server/internal/domain"
)

// Target aspect is 2:3 portrait (width / height).
const targetAspect = 2.0 / 3.0

const normalizedJPEGQuality = 90

// Normalize center-crops the supplied image to a 2:3 aspect ratio and
// re-encodes it as JPEG. Embedded EXIF orientation is applied before
// dimensions are read; reading them off the pre-rotation buffer swaps width
// and height for rotated phone photos and must not happen. The declared MIME
// type is advisory only; decoding works off the actual bytes.
func Normalize(data []byte, declaredMIMEType string) (domain.NormalizedImage, error) {
	_ = declaredMIMEType

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return domain.NormalizedImage{}, &domain.InvalidImageError{Err: err}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return domain.NormalizedImage{}, &domain.InvalidImageError{}
	}

	sourceAspect := float64(width) / float64(height)

	var rect image.Rectangle
	if sourceAspect > targetAspect {
		// Source is wider: crop sides, keep full height.
		extractWidth := int(math.Round(float64(height) * targetAspect))
		extractLeft := int(math.Round(float64(width-extractWidth) / 2))
		if extractLeft < 0 {
			extractLeft = 0
		}
		rect = image.Rect(extractLeft, 0, extractLeft+extractWidth, height)
	} else {
		// Source is taller: crop top/bottom, keep full width.
		extractHeight := int(math.Round(float64(width) / targetAspect))
		extractTop := int(math.Round(float64(height-extractHeight) / 2))
		if extractTop < 0 {
			extractTop = 0
		}
		rect = image.Rect(0, extractTop, width, extractTop+extractHeight)
	}

	cropped := imaging.Crop(img, rect)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.JPEG, imaging.JPEGQuality(normalizedJPEGQuality)); err != nil {
		return domain.NormalizedImage{}, &domain.InternalError{Err: err}
	}

	out := cropped.Bounds()
	return domain.NormalizedImage{
		Bytes:    buf.Bytes(),
		MIMEType: domain.MIMEJPEG,
		Width:    out.Dx(),
		Height:   out.Dy(),
	}, nil
}
