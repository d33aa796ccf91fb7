package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"compressx/internal/http/handlers"
	"compressx/internal/middleware"
)

// NewRouter assembles the HTTP surface: health, upload endpoints and record
// reads, behind the shared middleware chain.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(*app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/api/v1/upload", func(r chi.Router) {
		if app.Config.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
		}
		r.Post("/imageUpload", app.ImageUpload)
		r.Post("/videoUpload", app.VideoUpload)
		r.Post("/imageReducerUpload", app.ImageReducerUpload)
		r.Post("/localFileUpload", app.LocalFileUpload)
	})

	r.Route("/api/v1/records", func(r chi.Router) {
		r.Get("/", app.ListRecords)
		r.Get("/{id}", app.GetRecord)
	})

	return r
}
