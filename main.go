package main

import (
	"github.com/charmbracelet/log"

	"whitegate/internal/app"
)

func main() {
	log.Info("Starting whitegate")

	if err := app.Run(); err != nil {
		log.Fatal("whitegate terminated", "error", err)
	}
}
