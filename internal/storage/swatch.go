package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"server/internal/domain"
	"server/internal/imageproc"
)

// SwatchLibrary reads preset fabric swatches from the fixed read-only
// public/swatches tree. Paths come from the fabric catalogue, never from the
// caller, so there is no traversal surface here.
type SwatchLibrary struct {
	root string
}

// NewSwatchLibrary roots the library at dir (default "public").
func NewSwatchLibrary(dir string) *SwatchLibrary {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "public"
	}
	return &SwatchLibrary{root: dir}
}

// ReadSwatch loads a catalogue swatch as an ImageAsset.
func (l *SwatchLibrary) ReadSwatch(relPath string) (domain.ImageAsset, error) {
	normalized := strings.TrimPrefix(relPath, "/")
	data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(normalized)))
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("read swatch %s: %w", relPath, err)
	}
	return domain.ImageAsset{
		Bytes:    data,
		MIMEType: imageproc.MIMETypeFor(relPath),
		Kind:     domain.KindReferenceSwatch,
	}, nil
}

// ReadSwatchAsBase64 returns the swatch encoded for inline use.
func (l *SwatchLibrary) ReadSwatchAsBase64(relPath string) (string, string, error) {
	asset, err := l.ReadSwatch(relPath)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(asset.Bytes), asset.MIMEType, nil
}
