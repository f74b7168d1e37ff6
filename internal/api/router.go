// Package api exposes the emotion pipeline over HTTP. Routes mirror the
// surface the presentation layer consumes: event submission, history,
// stability, alerts and media enrichment.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soulsync-ai/soulsync/internal/config"
	"github.com/soulsync-ai/soulsync/internal/pipeline"
	"github.com/soulsync-ai/soulsync/internal/store"
)

// Router builds the HTTP handler tree.
type Router struct {
	handler *Handler
	cfg     *config.ServerConfig
}

// NewRouter wires the pipeline coordinator into an HTTP router.
func NewRouter(coord *pipeline.Coordinator, st *store.Store, cfg *config.ServerConfig) *Router {
	return &Router{
		handler: NewHandler(coord, st),
		cfg:     cfg,
	}
}

// Setup returns the fully assembled handler.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger())
	r.Use(chimiddleware.Recoverer)
	// The original service ran fully open for its local frontend.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", rt.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/emotion", func(r chi.Router) {
		if rt.cfg != nil && rt.cfg.RateLimitPerMin > 0 {
			r.Use(httprate.LimitByIP(rt.cfg.RateLimitPerMin, time.Minute))
		}
		r.Use(Metrics())

		r.Post("/events", rt.handler.SubmitEvent)
		r.Post("/analyze_text", rt.handler.AnalyzeText)
		r.Post("/analyze_audio", rt.handler.AnalyzeAudio)
		r.Get("/history", rt.handler.History)
		r.Get("/stability", rt.handler.Stability)
		r.Get("/alerts", rt.handler.Alerts)
		r.Post("/alerts", rt.handler.RecordAlert)
		r.Post("/music", rt.handler.Music)
	})

	return r
}
