package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/imageproc"
	"server/internal/infra"
	"server/internal/restyle"
)

// uploadMemoryLimit bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const uploadMemoryLimit = 16 << 20

// Upload accepts the furniture photo ahead of generation, normalizes it to
// the 2:3 portrait frame and persists it under uploads/. The returned URL is
// fed back verbatim into the JSON generate contract.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	asset, err := readFurniturePart(r)
	if err != nil {
		infra.UploadsTotal.WithLabelValues("rejected").Inc()
		a.fail(w, r, err)
		return
	}
	if !domain.AllowedImageMIME(asset.MIMEType) {
		infra.UploadsTotal.WithLabelValues("rejected").Inc()
		a.fail(w, r, domain.BadRequest(restyle.MsgBadImageType))
		return
	}

	start := time.Now()
	normalized, err := imageproc.Normalize(asset.Bytes, asset.MIMEType)
	if err != nil {
		infra.UploadsTotal.WithLabelValues("rejected").Inc()
		a.fail(w, r, err)
		return
	}

	artifact, err := a.Store.SaveOriginal(r.Context(), normalized.Bytes, imageproc.ExtensionFor(normalized.MIMEType))
	if err != nil {
		infra.UploadsTotal.WithLabelValues("failed").Inc()
		a.fail(w, r, err)
		return
	}

	infra.UploadsTotal.WithLabelValues("ok").Inc()
	a.Logger.Info().
		Str("backend", artifact.Backend).
		Int("bytes", len(normalized.Bytes)).
		Dur("elapsed", time.Since(start)).
		Msg("original uploaded")

	a.json(w, http.StatusOK, map[string]any{
		"success":          true,
		"originalImageUrl": artifact.URL,
	})
}

// readFurniturePart pulls the required main photo field from a multipart
// body, enforcing the byte limit before the body is read in full.
func readFurniturePart(r *http.Request) (domain.ImageAsset, error) {
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		return domain.ImageAsset{}, domain.BadRequest(restyle.MsgMissingPhoto)
	}
	file, header, err := r.FormFile("furnitureFile")
	if err != nil {
		return domain.ImageAsset{}, domain.BadRequest(restyle.MsgMissingPhoto)
	}
	defer file.Close()

	data, err := readLimited(file, restyle.MaxMainImageBytes)
	if err != nil {
		if errors.Is(err, errPartTooLarge) {
			return domain.ImageAsset{}, domain.BadRequest(restyle.MsgImageTooLarge)
		}
		return domain.ImageAsset{}, &domain.InternalError{Err: err}
	}

	return domain.ImageAsset{
		Bytes:    data,
		MIMEType: partMIMEType(header, data),
		Kind:     domain.KindUploadedOriginal,
	}, nil
}

var errPartTooLarge = errors.New("multipart file exceeds limit")

func readLimited(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errPartTooLarge
	}
	return data, nil
}

// partMIMEType prefers the declared Content-Type and falls back to sniffing
// when the client sent none or the generic octet-stream.
func partMIMEType(header *multipart.FileHeader, data []byte) string {
	declared := header.Header.Get("Content-Type")
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}
