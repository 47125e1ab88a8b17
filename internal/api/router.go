package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/scamdunk/internal/api/handlers"
	"github.com/wonny/scamdunk/internal/metrics"
	"github.com/wonny/scamdunk/internal/realtime"
	"github.com/wonny/scamdunk/pkg/logger"
)

// Handlers groups the endpoint handlers wired into the router
type Handlers struct {
	Health    *handlers.HealthHandler
	Scan      *handlers.ScanHandler
	Schemes   *handlers.SchemesHandler
	Promoters *handlers.PromotersHandler
	Hub       *realtime.Hub
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: route table lives here only
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health.Health).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Scans
	api.HandleFunc("/scan", h.Scan.Scan).Methods("POST")

	// Schemes
	api.HandleFunc("/schemes", h.Schemes.List).Methods("GET")
	api.HandleFunc("/schemes/ingest", h.Schemes.Ingest).Methods("POST")
	api.HandleFunc("/schemes/{id}", h.Schemes.Get).Methods("GET")

	// Promoters
	api.HandleFunc("/promoters", h.Promoters.List).Methods("GET")
	api.HandleFunc("/promoters/{id}", h.Promoters.Get).Methods("GET")

	// Live scheme events
	if h.Hub != nil {
		r.HandleFunc("/ws/schemes", h.Hub.ServeWS).Methods("GET")
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})

	// Apply middleware
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					writeJSON(w, http.StatusInternalServerError, map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
