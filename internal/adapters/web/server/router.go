package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/vulnscope/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)

	// Lookups fan out to external providers; keep abusive clients off
	// them.
	lookupLimiter := middleware.NewRateLimiter(30, 1*time.Minute)
	limit := middleware.RateLimitMiddleware(lookupLimiter)

	// Vulnerability Lookup API
	router.Handle("/api/cve/{cveId}/export", limit(http.HandlerFunc(s.ExportHandler.HandleExport))).Methods(http.MethodGet)
	router.Handle("/api/cve/{cveId}", limit(http.HandlerFunc(s.CVEHandler.HandleLookup))).Methods(http.MethodGet)
	router.HandleFunc("/api/cve-count", s.CVEHandler.HandleCount).Methods(http.MethodGet)

	// Search History API
	router.HandleFunc("/api/search-history", s.HistoryHandler.HandleList).Methods(http.MethodGet)
	router.HandleFunc("/api/search-history", s.HistoryHandler.HandleClear).Methods(http.MethodDelete)

	// Audit Logs
	router.HandleFunc("/api/audit-logs", s.AuditHandler.HandleGetLogs).Methods(http.MethodGet)

	// WebSocket endpoint for live lookup events
	router.HandleFunc("/ws", s.WSManager.HandleWebSocket)

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}
