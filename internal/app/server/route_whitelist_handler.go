package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"whitegate/internal/api/dto"
	"whitegate/internal/auth"
	"whitegate/internal/ipaddr"
	"whitegate/internal/whitelist"
)

func getWhitelist(w http.ResponseWriter, r *http.Request) {
	entries, err := whitelistManager.List()
	if err != nil {
		log.Error("Failed to list whitelist", "error", err)
		writeError(w, "Failed to retrieve whitelist", http.StatusInternalServerError)
		return
	}

	infos := make([]dto.WhitelistEntryInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, dto.NewWhitelistEntryInfo(entry))
	}

	writeJSON(w, http.StatusOK, infos)
}

func addWhitelistEntry(w http.ResponseWriter, r *http.Request) {
	var req dto.AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Address) == "" {
		writeError(w, "IP address is required", http.StatusBadRequest)
		return
	}

	principal, err := auth.GetUsernameFromRequest(r)
	if err != nil {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entry, err := whitelistManager.Add(r.Context(), req.Address, strings.TrimSpace(req.Description), principal, r.RemoteAddr)

	var invalid *ipaddr.InvalidFormatError
	var syncErr *whitelist.SyncError
	switch {
	case errors.As(err, &invalid):
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, whitelist.ErrDuplicate):
		writeError(w, "IP address already exists in whitelist", http.StatusConflict)
		return
	case errors.As(err, &syncErr):
		// The entry is durably stored; only the gateway sync is behind.
		log.Error("Whitelist entry stored but sync failed", "id", entry.ID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"id":    entry.ID,
			"error": "whitelist updated, but the gateway was not reloaded; retry via /whitelist/reconcile",
		})
		return
	case err != nil:
		log.Error("Failed to add whitelist entry", "error", err)
		writeError(w, "Failed to add IP", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": entry.ID})
}

func removeWhitelistEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil {
		writeError(w, "Invalid entry id", http.StatusBadRequest)
		return
	}

	principal, err := auth.GetUsernameFromRequest(r)
	if err != nil {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err = whitelistManager.Remove(r.Context(), id, principal, r.RemoteAddr)

	var syncErr *whitelist.SyncError
	switch {
	case errors.Is(err, whitelist.ErrNotFound):
		writeError(w, "IP not found in whitelist", http.StatusNotFound)
		return
	case errors.As(err, &syncErr):
		log.Error("Whitelist entry removed but sync failed", "id", id, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": "whitelist updated, but the gateway was not reloaded; retry via /whitelist/reconcile",
		})
		return
	case err != nil:
		log.Error("Failed to remove whitelist entry", "error", err)
		writeError(w, "Failed to remove IP", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "IP removed successfully"})
}

func exportWhitelist(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.GetUsernameFromRequest(r)
	if err != nil {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	content, err := whitelistManager.ExportText(principal, r.RemoteAddr)
	if err != nil {
		log.Error("Failed to export whitelist", "error", err)
		writeError(w, "Failed to export whitelist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"data": content})
}

func reconcileWhitelist(w http.ResponseWriter, r *http.Request) {
	if err := whitelistManager.Reconcile(r.Context()); err != nil {
		log.Error("Reconcile failed", "error", err)
		writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Artifacts regenerated and gateway reloaded"})
}
