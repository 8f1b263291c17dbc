package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/yuutai/internal/api/handlers"
	"github.com/wonny/yuutai/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
// inventoryHandler and jobsHandler are optional.
func NewRouter(
	rankingHandler *handlers.RankingHandler,
	inventoryHandler *handlers.InventoryHandler,
	jobsHandler *handlers.JobsHandler,
	log *logger.Logger,
) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Ranking endpoints
	api.HandleFunc("/rankings/{month:[0-9]+}", rankingHandler.GetRanking).Methods("GET")
	api.HandleFunc("/master", rankingHandler.GetMaster).Methods("GET")
	api.HandleFunc("/summary", rankingHandler.GetSummary).Methods("GET")

	// Inventory endpoints
	if inventoryHandler != nil {
		api.HandleFunc("/inventory", inventoryHandler.GetInventory).Methods("GET")
	}

	// Refresh jobs (serve --with-scheduler)
	if jobsHandler != nil {
		api.HandleFunc("/jobs", jobsHandler.GetJobs).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "yuutai-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
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

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
