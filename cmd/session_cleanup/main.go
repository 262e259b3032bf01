package main

import (
	"context"
	"log"
	"time"

	"caradmin/internal/config"
	"caradmin/internal/database"
	"caradmin/internal/repository"
)

// revoked sessions are kept for a day so logout reasons stay visible
const revokedRetention = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := repository.NewConsoleSessionRepository(db).DeleteStale(ctx, time.Now().Add(-revokedRetention))
	if err != nil {
		log.Fatalf("cleanup console_sessions failed: %v", err)
	}

	log.Printf("session cleanup completed: console_sessions=%d", n)
}
