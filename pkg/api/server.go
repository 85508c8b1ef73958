// Package api serves one key type over HTTP: its descriptor table, key
// encoding and decoding, and a key-value store addressed by encoded keys.
//
// Routes live under /api/v1 and require the X-API-Key header when an API key
// is configured. Responses use the APIResponse envelope. /metrics is served
// without authentication for scraping.
//
// @title           dbkey REST API
// @version         1.0.0
// @description     Encode, decode and store order-preserving composite keys.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"

	_ "github.com/ssargent/dbkey/pkg/api/docs" // registers the swagger document
	"github.com/ssargent/dbkey/pkg/keycodec"
	"github.com/ssargent/dbkey/pkg/storage"
)

const defaultMaxValueSize = 1 << 20

// Server holds the API server state
type Server struct {
	store    storage.Store
	desc     *keycodec.Descriptor
	config   ServerConfig
	metrics  *Metrics
	registry *prometheus.Registry
}

// NewServer creates a new API server for the key type of store
func NewServer(store storage.Store, config ServerConfig) *Server {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if config.MaxValueSize <= 0 {
		config.MaxValueSize = defaultMaxValueSize
	}
	return &Server{
		store:    store,
		desc:     store.Descriptor(),
		config:   config,
		metrics:  NewMetrics(reg),
		registry: reg,
	}
}

// Routes builds the router with all routes configured
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	if s.config.RequestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", handleSwagger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Key type and codec
		r.Get("/schema", s.metrics.InstrumentHandler("GET", "/api/v1/schema", s.handleSchema))
		r.Get("/bounds", s.metrics.InstrumentHandler("GET", "/api/v1/bounds", s.handleBounds))
		r.Post("/keys/encode", s.metrics.InstrumentHandler("POST", "/api/v1/keys/encode", s.handleEncode))
		r.Post("/keys/decode", s.metrics.InstrumentHandler("POST", "/api/v1/keys/decode", s.handleDecode))

		// KV operations
		r.Put("/kv/{key}", s.metrics.InstrumentHandler("PUT", "/api/v1/kv/{key}", s.handlePut))
		r.Get("/kv/{key}", s.metrics.InstrumentHandler("GET", "/api/v1/kv/{key}", s.handleGet))
		r.Delete("/kv/{key}", s.metrics.InstrumentHandler("DELETE", "/api/v1/kv/{key}", s.handleDelete))
		r.Get("/kv", s.metrics.InstrumentHandler("GET", "/api/v1/kv", s.handleScan))
	})

	return r
}

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
	<title>dbkey API Documentation</title>
	<link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	<div id="swagger-ui"></div>
	<script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	<script>
	  window.onload = function() {
	    SwaggerUIBundle({
	      url: '/swagger/doc.json',
	      dom_id: '#swagger-ui',
	      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.presets.standalone]
	    });
	  };
	</script>
</body>
</html>`

func handleSwagger(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/swagger/", "/swagger/index.html":
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerUI))
	case "/swagger/doc.json":
		doc, err := swag.ReadDoc()
		if err != nil {
			log.Printf("Error reading swagger doc: %v", err)
			http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	default:
		http.NotFound(w, r)
	}
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, store storage.Store, config ServerConfig) error {
	server := NewServer(store, config)
	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting dbkey API for %s on %s", server.desc.Name(), addr)
		log.Printf("Metrics available at: http://%s/metrics", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("Server stopped")
	return nil
}
