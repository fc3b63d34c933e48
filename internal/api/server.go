// Package api exposes the farm, crop and fertilizer managers over HTTP as
// huma operations mounted on a chi router.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/agrix/agrix-server/internal/http/response"
	"github.com/agrix/agrix-server/internal/id"
	"github.com/agrix/agrix-server/internal/metrics"
	"github.com/agrix/agrix-server/internal/ratelimit"
	"github.com/agrix/agrix-server/internal/service"
	"github.com/agrix/agrix-server/internal/store"
	"github.com/agrix/agrix-server/internal/validation"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Services groups the managers used by the handlers.
type Services struct {
	Farm       *service.FarmService
	Crop       *service.CropService
	Fertilizer *service.FertilizerService
	Search     *service.SearchService // nil when search is disabled
}

// Options holds the optional collaborators of a Server.
type Options struct {
	AllowedOrigins []string                    // CORS origins; empty allows any
	Metrics        *metrics.Metrics            // nil disables /metrics
	RateLimiter    *ratelimit.KeyedRateLimiter // nil disables POST limiting
	InstanceID     string                      // generated when empty
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       store.Store
	services    *Services
	router      *chi.Mux
	api         huma.API
	validator   *validation.Validator
	metrics     *metrics.Metrics
	rateLimiter *ratelimit.KeyedRateLimiter
	instanceID  string
	startedAt   time.Time
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.InstanceID == "" {
		opts.InstanceID = id.Instance()
	}

	s := &Server{
		store:       st,
		services:    services,
		router:      chi.NewRouter(),
		validator:   validation.New(),
		metrics:     opts.Metrics,
		rateLimiter: opts.RateLimiter,
		instanceID:  opts.InstanceID,
		startedAt:   time.Now(),
		logger:      logger,
	}

	// chi requires middleware before the first route; humachi.New registers
	// the OpenAPI routes immediately.
	s.setupMiddleware(opts.AllowedOrigins)

	humaConfig := huma.DefaultConfig("Agrix API", Version)
	humaConfig.Info.Description = "Farms, the crops planted on them and the fertilizers applied to those crops."
	humaConfig.Transformers = []huma.Transformer{EnvelopeTransformer}

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, e.g. to export the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware(allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(s.recoverPanics)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	if s.rateLimiter != nil {
		s.router.Use(s.rateLimitMutations)
	}
}

func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerFarmRoutes()
	s.registerCropRoutes()
	s.registerFertilizerRoutes()
	s.registerSearchRoutes()

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found: "+r.URL.Path, s.logger)
	})
}
