package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/teamparagoncapstone/lms-authsvc/internal/app"
	"github.com/teamparagoncapstone/lms-authsvc/internal/config"
)

func main() {
	// Optional .env for local development; secrets override config.yml.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := app.Run(cfg); err != nil {
		log.Fatalf("app: %v", err)
	}
}
