package handlers

import (
	"net/http"

	"server/internal/domain"
)

// Fabrics returns the preset swatch catalogue so clients do not hardcode it.
func (a *App) Fabrics(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"fabrics": domain.FabricOptions,
	})
}
