package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"dataprep/internal/http/handlers"
	"dataprep/internal/middleware"
)

// Options carries the router settings taken from configuration.
type Options struct {
	// SubmitRateLimit is the number of batches one client may submit per minute.
	SubmitRateLimit int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/stages", app.Stages)

	r.With(middleware.RateLimit(opts.SubmitRateLimit, time.Minute)).Post("/data_prep", app.DataPrep)

	return r
}
