package server

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"whitegate/internal/api/dto"
	"whitegate/internal/auth"
)

func limitFromQuery(r *http.Request, fallback, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func getRecentConnections(w http.ResponseWriter, r *http.Request) {
	// Reads are eventually consistent up to one tail pass; run one first.
	if err := aggregator.Refresh(); err != nil {
		log.Error("Refresh before recent-connections read failed", "error", err)
	}

	events, err := aggregator.RecentConnections(limitFromQuery(r, 100, 500))
	if err != nil {
		log.Error("Failed to get recent connections", "error", err)
		writeError(w, "Failed to get recent connections", http.StatusInternalServerError)
		return
	}

	infos := make([]dto.ConnectionInfo, 0, len(events))
	for _, event := range events {
		infos = append(infos, dto.NewConnectionInfo(event))
	}

	writeJSON(w, http.StatusOK, infos)
}

func getBlockedIPs(w http.ResponseWriter, r *http.Request) {
	stats, err := aggregator.BlockedIPs(limitFromQuery(r, 50, 200))
	if err != nil {
		log.Error("Failed to get blocked IPs", "error", err)
		writeError(w, "Failed to get blocked IPs", http.StatusInternalServerError)
		return
	}

	infos := make([]dto.BlockedIPInfo, 0, len(stats))
	for _, stat := range stats {
		infos = append(infos, dto.NewBlockedIPInfo(stat))
	}

	writeJSON(w, http.StatusOK, infos)
}

func getConnectionStats(w http.ResponseWriter, r *http.Request) {
	if err := aggregator.Refresh(); err != nil {
		log.Error("Refresh before stats read failed", "error", err)
	}

	stats, err := aggregator.Stats()
	if err != nil {
		log.Error("Failed to get connection stats", "error", err)
		writeError(w, "Failed to get connection stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func clearConnectionLogs(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.GetUsernameFromRequest(r)
	if err != nil {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := aggregator.Clear(principal, r.RemoteAddr); err != nil {
		log.Error("Failed to clear connection logs", "error", err)
		writeError(w, "Failed to clear connection logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Connection logs cleared successfully"})
}
