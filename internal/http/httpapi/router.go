package httpapi

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"server/internal/http/handlers"
	"server/internal/middleware"
	"server/internal/storage"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
	)

	r.Get("/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", app.Upload)
		r.Post("/generate", app.Generate)
		r.Get("/blob", app.Blob)
		r.Get("/fabrics", app.Fabrics)
	})

	// With the local backend, artifact URLs are plain paths under the public
	// directory; serve them directly. Object-store backends hand out absolute
	// or blob-proxy URLs instead.
	if app.Store.Backend() == storage.BackendLocal {
		serveDir(r, "/uploads", filepath.Join(app.Config.PublicDir, "uploads"))
		serveDir(r, "/generated", filepath.Join(app.Config.PublicDir, "generated"))
	}
	serveDir(r, "/swatches", filepath.Join(app.Config.PublicDir, "swatches"))

	return r
}

func serveDir(r chi.Router, prefix, dir string) {
	fs := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", fs.ServeHTTP)
}
