// Package api exposes the lookup service over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/PhelelaniM/UrbanMind/internal/lookup"
	"github.com/PhelelaniM/UrbanMind/internal/parcel"
)

const maxBodyBytes = 1 << 20

// Handler serves the zoning API.
type Handler struct {
	svc         *lookup.Service
	parcels     *parcel.Collection
	gatherer    prometheus.Gatherer
	corsOrigins []string
	timeout     time.Duration
	log         *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithParcels serves the local collection on the parcel layer and health
// routes. Without it the parcel layer responds 503.
func WithParcels(c *parcel.Collection) Option {
	return func(h *Handler) {
		h.parcels = c
	}
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.gatherer = g
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(h *Handler) {
		h.corsOrigins = origins
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

// New creates a Handler for svc.
func New(svc *lookup.Service, opts ...Option) *Handler {
	h := &Handler{
		svc:         svc,
		corsOrigins: []string{"*"},
		timeout:     30 * time.Second,
		log:         zap.L().With(zap.String("component", "api")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the chi router with middleware and every route mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.accessLog)
	r.Use(middleware.Timeout(h.timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Post("/get_information", h.handleGetInformation)
	r.Get("/health", h.handleHealth)
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/parcels", h.handleParcelLayer)
		r.Get("/parcels/{key}", h.handleParcelByKey)
		r.Get("/locate", h.handleLocate)
		r.Get("/insights/{code}", h.handleInsights)
	})

	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.log.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
