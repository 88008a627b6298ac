package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"ttgen/internal/adapters/repositories"
	"ttgen/internal/config"
	"ttgen/internal/platform/db"
	"ttgen/internal/platform/log"
)

// dbtool creates the shared Postgres travel-time cache table.
func main() {
	if !config.LoadDotEnv() {
		log.Infow("no .env file found (using environment variables)")
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, config.Get("DATABASE_URL", "")); err != nil {
		log.Errorw("dbtool failed", "err", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL string) error {
	if strings.TrimSpace(databaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Infow("initializing cache schema")
	if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Infow("schema ready")
	return nil
}
