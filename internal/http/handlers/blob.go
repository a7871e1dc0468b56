package handlers

import (
	"io"
	"net/http"
	"path"
	"strings"
)

// blobPrefixes is the allow-list for the proxy. Anything outside these two
// trees is forbidden regardless of whether the backend could serve it.
var blobPrefixes = []string{"uploads/", "generated/"}

// Blob streams a stored artifact back to the client. Used when the backend
// keeps objects private: artifact URLs then point here instead of at the
// object store.
func (a *App) Blob(w http.ResponseWriter, r *http.Request) {
	pathname := r.URL.Query().Get("pathname")
	if pathname == "" {
		a.error(w, http.StatusBadRequest, "pathname query parameter is required")
		return
	}
	if !allowedBlobPath(pathname) {
		a.error(w, http.StatusForbidden, "access to this path is not allowed")
		return
	}

	reader, contentType, err := a.Store.Open(r.Context(), pathname)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+path.Base(pathname)+`"`)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		// Headers are gone; nothing useful to send back.
		a.Logger.Debug().Err(err).Str("pathname", pathname).Msg("blob stream interrupted")
	}
}

func allowedBlobPath(pathname string) bool {
	if strings.Contains(pathname, "..") {
		return false
	}
	for _, prefix := range blobPrefixes {
		if strings.HasPrefix(pathname, prefix) {
			return true
		}
	}
	return false
}
