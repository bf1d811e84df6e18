package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/hydrocode-de/metacatalog-ingest/internal/handlers"
)

// setupRouter configures all routes and middleware
func setupRouter(h *handlers.Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	// Middleware
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", h.UploadHandler).Methods("POST")
	api.HandleFunc("/data/preview", h.PreviewHandler).Methods("POST")
	api.HandleFunc("/licenses", h.ListLicensesHandler).Methods("GET")
	api.HandleFunc("/licenses/{id}", h.GetLicenseHandler).Methods("GET")
	api.HandleFunc("/keywords", h.ListKeywordsHandler).Methods("GET")
	api.HandleFunc("/authors", h.ListAuthorsHandler).Methods("GET")
	api.HandleFunc("/author", h.CreateAuthorHandler).Methods("PUT")
	api.HandleFunc("/variables", h.ListVariablesHandler).Methods("GET")
	api.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")

	// Health check and metrics at root
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	log.Info().Msg("Routes configured successfully")

	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r)
}

// loggingMiddleware logs all HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration_ms", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP request")
	})
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
