// Package handlers implements the HTTP surface: original upload, generation,
// the blob proxy, the fabric catalogue, and health.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/restyle"
	"server/internal/storage"
)

type App struct {
	Logger   infra.Logger
	Config   *infra.Config
	Store    storage.Store
	Restyler *restyle.Service
}

func NewApp(logger infra.Logger, cfg *infra.Config, store storage.Store, restyler *restyle.Service) *App {
	return &App{Logger: logger, Config: cfg, Store: store, Restyler: restyler}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]any{"success": false, "error": msg})
}

// fail maps a pipeline error to its HTTP status and responds with the
// standard failure envelope. Client disconnects are logged and dropped; there
// is nobody left to answer.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		a.Logger.Debug().Str("path", r.URL.Path).Msg("client went away")
		return
	}

	status := http.StatusInternalServerError

	var (
		badReq   *domain.BadRequestError
		badImage *domain.InvalidImageError
		genFail  *domain.GenerationFailedError
		readErr  *domain.StorageReadError
		upstream *domain.UpstreamFetchError
	)
	switch {
	case errors.As(err, &badReq), errors.As(err, &badImage):
		status = http.StatusBadRequest
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
	case errors.As(err, &readErr):
		if readErr.NotFound() {
			status = http.StatusNotFound
		}
	case errors.As(err, &genFail):
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	a.error(w, status, err.Error())
}
