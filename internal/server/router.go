package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/KaramelBytes/dataloom/internal/dashboard"
	"github.com/KaramelBytes/dataloom/internal/logger"
)

type ctxKey int

const requestIDKey ctxKey = 0

// RequestIDHeader carries the per-request ID.
const RequestIDHeader = "X-Request-ID"

// RequestID returns the ID assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// NewRouter creates and configures the HTTP router.
func NewRouter(d *dashboard.Dashboard, log *logger.Logger) http.Handler {
	h := &handler{dash: d, log: log}
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	r.HandleFunc("/", h.root).Methods("GET")
	r.HandleFunc("/intro", h.intro).Methods("GET")
	r.HandleFunc("/visualize", h.visualize).Methods("GET")
	r.HandleFunc("/charts/{kind}.png", h.chart).Methods("GET")
	r.HandleFunc("/report", h.report).Methods("GET")
	r.HandleFunc("/report/download", h.download).Methods("GET")
	r.HandleFunc("/header-image", h.headerImage).Methods("GET")

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "dataloom",
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			log.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     sw.status,
				"request_id": RequestID(r.Context()),
				"duration":   time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error":      err,
						"path":       r.URL.Path,
						"request_id": RequestID(r.Context()),
					}).Error("Panic recovered")
					respondError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
