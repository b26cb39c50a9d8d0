package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"whitegate/internal/auth"
	"whitegate/internal/monitor"
	"whitegate/internal/whitelist"
)

var (
	whitelistManager *whitelist.Manager
	aggregator       *monitor.Aggregator
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func OpenRoutes(port int, manager *whitelist.Manager, agg *monitor.Aggregator) error {
	whitelistManager = manager
	aggregator = agg

	router := http.NewServeMux()
	router.HandleFunc("POST /login", loginUser)
	router.Handle("GET /auth/verify", auth.RequireAuth(http.HandlerFunc(verifyToken)))

	router.Handle("GET /whitelist", auth.RequireAuth(http.HandlerFunc(getWhitelist)))
	router.Handle("POST /whitelist", auth.RequireAuth(http.HandlerFunc(addWhitelistEntry)))
	router.Handle("DELETE /whitelist/{id}", auth.RequireAuth(http.HandlerFunc(removeWhitelistEntry)))
	router.Handle("GET /whitelist/export", auth.RequireAuth(http.HandlerFunc(exportWhitelist)))
	router.Handle("POST /whitelist/reconcile", auth.RequireAuth(http.HandlerFunc(reconcileWhitelist)))

	router.Handle("GET /connections/recent", auth.RequireAuth(http.HandlerFunc(getRecentConnections)))
	router.Handle("GET /connections/blocked", auth.RequireAuth(http.HandlerFunc(getBlockedIPs)))
	router.Handle("GET /connections/stats", auth.RequireAuth(http.HandlerFunc(getConnectionStats)))
	router.Handle("DELETE /connections/logs", auth.RequireAuth(http.HandlerFunc(clearConnectionLogs)))

	router.Handle("GET /logs", auth.RequireAuth(http.HandlerFunc(getOperationLogs)))
	router.Handle("GET /status", auth.RequireAuth(http.HandlerFunc(getStatus)))
	router.HandleFunc("GET /health", healthCheck)

	log.Debug("Routes opened")

	server := http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: enableCORS(router),
	}

	log.Infof("Starting whitegate backend on port :%d", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}
