package server

import (
	"net/http"
	"os/exec"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"whitegate/internal/api/dto"
	"whitegate/internal/database"
)

func getOperationLogs(w http.ResponseWriter, r *http.Request) {
	limit := limitFromQuery(r, 100, 1000)

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	logs, err := database.GetOperationLogs(limit, offset)
	if err != nil {
		log.Error("Failed to get operation logs", "error", err)
		writeError(w, "Failed to get logs", http.StatusInternalServerError)
		return
	}

	infos := make([]dto.OperationLogInfo, 0, len(logs))
	for _, entry := range logs {
		infos = append(infos, dto.NewOperationLogInfo(entry))
	}

	writeJSON(w, http.StatusOK, infos)
}

func getStatus(w http.ResponseWriter, r *http.Request) {
	gatewayStatus := "stopped"
	if err := exec.Command("pgrep", "nginx").Run(); err == nil {
		gatewayStatus = "running"
	}

	whitelistCount := 0
	if entries, err := whitelistManager.List(); err == nil {
		whitelistCount = len(entries)
	} else {
		log.Error("Failed to count whitelist entries", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"gateway_status":  gatewayStatus,
		"whitelist_count": whitelistCount,
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
