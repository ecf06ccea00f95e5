package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/http/handlers"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/infra"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/middleware"
)

// NewRouter wires the HTTP surface: generation submission, the gallery
// listing, archive downloads, and static serving for the filesystem storage
// driver.
func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/generations", func(r chi.Router) {
		r.Post("/", app.GenerationsCreate)
		r.Get("/", app.GenerationsList)
		r.Get("/{id}/download", app.GenerationsDownload)
	})

	if app.Config.StorageDriver == infra.StorageDriverFilesystem {
		fs := stdhttp.FileServer(stdhttp.Dir(app.Config.StoragePath))
		r.Handle("/static/*", stdhttp.StripPrefix("/static/", fs))
	}

	return r
}
