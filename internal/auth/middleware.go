package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := extractClaims(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUserIDFromRequest(r *http.Request) (uint, error) {
	claims, err := extractClaims(r)
	if err != nil {
		return 0, err
	}

	// JWT numbers are parsed as float64 by default
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("invalid user ID in token")
	}

	return uint(userID), nil
}

func GetUsernameFromRequest(r *http.Request) (string, error) {
	claims, err := extractClaims(r)
	if err != nil {
		return "", err
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", errors.New("invalid username in token")
	}

	return username, nil
}

func extractClaims(r *http.Request) (jwt.MapClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errors.New("missing or malformed Authorization header")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return ValidateJWT(token)
}
