package app

import (
	"context"
	"flag"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"whitegate/internal/app/bootstrap"
	"whitegate/internal/app/server"
)

const defaultPort = 8080

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	log.SetLevel(log.DebugLevel)

	portFlag := flag.Int("port", defaultPort, "Port for the API server")
	flag.Parse()

	port := resolvePort("API_PORT", *portFlag)

	manager, aggregator := bootstrap.Setup(context.Background())

	return server.OpenRoutes(port, manager, aggregator)
}

func resolvePort(envKey string, fallback int) int {
	raw := os.Getenv(envKey)
	if raw == "" {
		return fallback
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port == 0 {
		log.Warn("invalid port override", "env", envKey, "value", raw)
		return fallback
	}
	return port
}
