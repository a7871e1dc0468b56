package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/restyle"
)

// upstreamFetchLimit caps how much of a caller-supplied image URL is read.
const upstreamFetchLimit = 20 << 20

var upstreamClient = &http.Client{Timeout: 30 * time.Second}

// Generate runs one re-upholstery visualization. The request arrives in one
// of two shapes, dispatched on Content-Type:
//
//   - multipart/form-data with furnitureFile, selectedFabricId and an
//     optional referenceFile;
//   - application/json with originalImageUrl (from a prior /api/upload) and
//     selectedFabricId. The photo bytes are resolved from storage, or
//     fetched over HTTP for absolute URLs.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var (
		req restyle.Request
		err error
	)
	parseStart := time.Now()
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		req, err = a.generateRequestFromJSON(r)
	} else {
		req, err = generateRequestFromMultipart(r)
	}
	if err != nil {
		infra.GenerationsTotal.WithLabelValues("rejected").Inc()
		a.fail(w, r, err)
		return
	}
	a.Logger.Debug().Int64("parse_ms", time.Since(parseStart).Milliseconds()).Msg("generate request parsed")

	result, err := a.Restyler.Generate(r.Context(), req)
	if err != nil {
		infra.GenerationsTotal.WithLabelValues("failed").Inc()
		a.fail(w, r, err)
		return
	}

	infra.GenerationsTotal.WithLabelValues("ok").Inc()
	infra.GenerationDuration.Observe(result.Elapsed.Seconds())

	a.json(w, http.StatusOK, map[string]any{
		"success":           true,
		"originalImageUrl":  result.OriginalURL,
		"generatedImageUrl": result.GeneratedURL,
		"generationTimeMs":  result.Elapsed.Milliseconds(),
	})
}

func generateRequestFromMultipart(r *http.Request) (restyle.Request, error) {
	furniture, err := readFurniturePart(r)
	if err != nil {
		return restyle.Request{}, err
	}

	req := restyle.Request{
		Furniture: &furniture,
		FabricID:  r.FormValue("selectedFabricId"),
	}

	file, header, err := r.FormFile("referenceFile")
	if err == nil {
		defer file.Close()
		data, err := readLimited(file, restyle.MaxReferenceImageBytes)
		if err != nil {
			if err == errPartTooLarge {
				return restyle.Request{}, domain.BadRequest(restyle.MsgReferenceTooBig)
			}
			return restyle.Request{}, &domain.InternalError{Err: err}
		}
		req.Reference = &domain.ImageAsset{
			Bytes:    data,
			MIMEType: partMIMEType(header, data),
			Kind:     domain.KindReferenceSwatch,
		}
	}

	return req, nil
}

type generateJSONRequest struct {
	OriginalImageURL string `json:"originalImageUrl"`
	SelectedFabricID string `json:"selectedFabricId"`
}

func (a *App) generateRequestFromJSON(r *http.Request) (restyle.Request, error) {
	var body generateJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return restyle.Request{}, domain.BadRequest("Invalid JSON body.")
	}
	if body.OriginalImageURL == "" {
		return restyle.Request{}, domain.BadRequest(restyle.MsgMissingPhoto)
	}

	furniture, err := a.resolveOriginal(r, body.OriginalImageURL)
	if err != nil {
		return restyle.Request{}, err
	}

	return restyle.Request{
		Furniture:   &furniture,
		FabricID:    body.SelectedFabricID,
		OriginalURL: body.OriginalImageURL,
	}, nil
}

// resolveOriginal turns a previously returned original URL back into bytes.
// URLs produced by this service (blob-proxy links and local /uploads paths)
// are read straight from the store; anything absolute is fetched over HTTP.
func (a *App) resolveOriginal(r *http.Request, raw string) (domain.ImageAsset, error) {
	if key, ok := storedKeyFromURL(raw); ok {
		reader, contentType, err := a.Store.Open(r.Context(), key)
		if err != nil {
			return domain.ImageAsset{}, err
		}
		defer reader.Close()
		data, err := io.ReadAll(io.LimitReader(reader, upstreamFetchLimit))
		if err != nil {
			return domain.ImageAsset{}, &domain.InternalError{Err: err}
		}
		return domain.ImageAsset{Bytes: data, MIMEType: contentType, Kind: domain.KindUploadedOriginal}, nil
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return domain.ImageAsset{}, domain.BadRequest("originalImageUrl is not recognized.")
	}

	resp, err := upstreamClient.Get(raw)
	if err != nil {
		return domain.ImageAsset{}, &domain.UpstreamFetchError{URL: raw, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.ImageAsset{}, &domain.UpstreamFetchError{URL: raw, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, upstreamFetchLimit))
	if err != nil {
		return domain.ImageAsset{}, &domain.UpstreamFetchError{URL: raw, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return domain.ImageAsset{Bytes: data, MIMEType: contentType, Kind: domain.KindUploadedOriginal}, nil
}

// storedKeyFromURL recognizes the two URL shapes this service hands out for
// its own artifacts and extracts the storage key.
func storedKeyFromURL(raw string) (string, bool) {
	if strings.HasPrefix(raw, "/api/blob") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false
		}
		key := u.Query().Get("pathname")
		return key, key != ""
	}
	for _, prefix := range []string{"/uploads/", "/generated/"} {
		if strings.HasPrefix(raw, prefix) {
			return strings.TrimPrefix(raw, "/"), true
		}
	}
	return "", false
}
