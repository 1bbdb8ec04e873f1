package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wareline/wareline/internal/damage"
	"github.com/wareline/wareline/internal/dispatch"
	"github.com/wareline/wareline/internal/observability"
	"github.com/wareline/wareline/internal/timeline"
	"github.com/wareline/wareline/internal/transfer"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	DispatchHandler *dispatch.Handler
	TransferHandler *transfer.Handler
	DamageHandler   *damage.Handler
	TimelineHandler *timeline.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router.
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

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	if params.DispatchHandler != nil {
		r.Route("/dispatches", params.DispatchHandler.MountRoutes)
	}
	if params.TransferHandler != nil {
		r.Route("/transfers", params.TransferHandler.MountRoutes)
	}
	if params.DamageHandler != nil {
		r.Route("/damage", params.DamageHandler.MountRoutes)
	}
	if params.TimelineHandler != nil {
		r.Route("/timeline", params.TimelineHandler.MountRoutes)
	}

	return r
}
