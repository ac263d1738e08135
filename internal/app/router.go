package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shiftwise/shiftwise/internal/auth"
	"github.com/shiftwise/shiftwise/internal/observability"
	"github.com/shiftwise/shiftwise/internal/stats"
	"github.com/shiftwise/shiftwise/internal/timeclock"
	"github.com/shiftwise/shiftwise/internal/workers"
	"github.com/shiftwise/shiftwise/internal/workplace"
	"github.com/shiftwise/shiftwise/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	TimeclockHandler *timeclock.Handler
	StatsHandler     *stats.Handler
	WorkplaceHandler *workplace.Handler
	WorkersHandler   *workers.Handler
	JobsHandler      *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthService.RequireUser)

		params.TimeclockHandler.MountWorkerRoutes(r)
		params.StatsHandler.MountWorkerRoutes(r)
		params.WorkersHandler.MountWorkerRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			params.TimeclockHandler.MountAdminRoutes(r)
			params.StatsHandler.MountAdminRoutes(r)
			params.WorkplaceHandler.MountAdminRoutes(r)
			params.WorkersHandler.MountAdminRoutes(r)
			if params.JobsHandler != nil {
				r.Route("/jobs", params.JobsHandler.MountRoutes)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
