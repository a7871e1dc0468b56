package domain

// SourceKind tags where an image in the pipeline came from.
type SourceKind string

const (
	KindUploadedOriginal SourceKind = "uploaded-original"
	KindGeneratedOutput  SourceKind = "generated-output"
	KindReferenceSwatch  SourceKind = "reference-swatch"
)

// Supported MIME types for images entering the pipeline. Anything outside
// this set is rejected at validation; for extension mapping unknown types
// clamp to JPEG without reinterpreting the bytes.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWebP = "image/webp"
)

// AllowedImageMIME reports whether a declared MIME type is one of the
// accepted upload formats.
func AllowedImageMIME(mimeType string) bool {
	switch mimeType {
	case MIMEJPEG, MIMEPNG, MIMEWebP:
		return true
	}
	return false
}

// ImageAsset is a logical image flowing through the pipeline.
type ImageAsset struct {
	Bytes    []byte
	MIMEType string
	Kind     SourceKind
}

// NormalizedImage is an ImageAsset with orientation applied, an exact 2:3
// aspect ratio, and JPEG encoding. Produced only by imageproc.Normalize.
type NormalizedImage struct {
	Bytes    []byte
	MIMEType string
	Width    int
	Height   int
}

// Asset converts the normalized image back into an ImageAsset for the
// prompt assembler and storage.
func (n NormalizedImage) Asset() ImageAsset {
	return ImageAsset{Bytes: n.Bytes, MIMEType: n.MIMEType, Kind: KindUploadedOriginal}
}

// StoredArtifact records the outcome of a persistence call. Immutable once
// created; artifacts are never deleted by this service.
type StoredArtifact struct {
	URL     string
	Backend string
}
