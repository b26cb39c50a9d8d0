package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"whitegate/internal/api/dto"
	"whitegate/internal/auth"
	"whitegate/internal/database"
)

func loginUser(w http.ResponseWriter, r *http.Request) {
	var credentials dto.Credentials
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if credentials.Username == "" || credentials.Password == "" {
		writeError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := database.GetUserByUsername(credentials.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Error("Login query failed", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !user.Active || !auth.CheckPassword(user.Password, credentials.Password) {
		writeError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := database.TouchLastLogin(user.ID); err != nil {
		log.Warn("Failed to update last login", "user", user.Username, "error", err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Username)
	if err != nil {
		log.Error("Failed to generate token", "error", err)
		writeError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.Info("User logged in", "user", user.Username)

	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"user":  user.Username,
	})
}

func verifyToken(w http.ResponseWriter, r *http.Request) {
	username, err := auth.GetUsernameFromRequest(r)
	if err != nil {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user": username})
}
