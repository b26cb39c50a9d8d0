package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"

	"whitegate/internal/config"
	"whitegate/internal/support"
)

// Resolved on first use rather than at package init, so a SECRET_KEY that
// only exists in the .env file is picked up after godotenv has run.
var jwtSecret = sync.OnceValue(loadSecret)

// loadSecret takes the signing key from SECRET_KEY. Without one a random key
// is generated, which works but invalidates all tokens on restart.
func loadSecret() []byte {
	if secret := support.GetEnv("SECRET_KEY", ""); secret != "" {
		return []byte(secret)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal("Failed to generate a session secret", "error", err)
	}
	log.Warn("SECRET_KEY not set, generated an ephemeral signing key; sessions will not survive restarts")
	return []byte(hex.EncodeToString(buf))
}

func GenerateJWT(userID uint, username string) (string, error) {
	ttlHours := config.GetConfig().Auth.TokenTTLHours
	if ttlHours == 0 {
		ttlHours = 24
	}

	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

func ValidateJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
