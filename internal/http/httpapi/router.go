package httpapi

import (
	"net/http"
	"time"

	"studio/internal/http/handlers"
	appmw "studio/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const sensitivePerMinute = 5

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		appmw.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		appmw.Logger(app.Logger),
		appmw.CORS(app.Config.CORSOrigins),
		appmw.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	r.Get("/healthz", app.Health)
	r.Get(handlers.OpenAPIPath, app.OpenAPIJSON)
	r.Get("/api/docs", app.OpenAPIDocs)

	if app.Files != nil {
		// locally stored gallery files keep their site-relative URLs
		r.Handle("/images/*", http.FileServer(filesOnly{root: http.Dir(app.Files.BasePath())}))
	}

	adminOnly := appmw.AdminAuth(app.Config.AdminTokenSecret)
	strict := appmw.RateLimit(sensitivePerMinute, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/images", app.ImagesList)
		r.Get("/images/{id}", app.ImagesGet)
		r.Post("/images/zip", app.ImagesZip)
		r.Get("/categories", app.Categories)
		r.Get("/watermark", app.Watermarked)
		r.Get("/donations/total", app.DonationsTotal)
		r.With(strict).Post("/contact", app.ContactSubmit)
		r.With(strict).Post("/admin/login", app.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/images", app.ImagesCreate)
			r.Put("/images/{id}", app.ImagesUpdate)
			r.Delete("/images/{id}", app.ImagesDelete)
			r.Post("/upload", app.Upload)

			r.Get("/donations", app.DonationsList)
			r.Post("/donations", app.DonationsCreate)
			r.Post("/donations/import", app.DonationsImport)
			r.Put("/donations/{id}", app.DonationsUpdate)
			r.Delete("/donations/{id}", app.DonationsDelete)

			r.Route("/admin/migrations", func(r chi.Router) {
				r.Post("/add-local-images", app.MigrateAddLocal)
				r.Post("/migrate-to-storage", app.MigrateToStorage)
				r.Post("/revert-to-local", app.MigrateRevert)
				r.Get("/url-suggestions", app.MigrateSuggestions)
				r.Post("/fix-urls", app.MigrateFixURLs)
			})
		})
	})

	return r
}
