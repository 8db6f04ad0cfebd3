// Imports the company question catalog into the database.
//
// Usage:
//
//	go run scripts/ingest.go -source git
//	go run scripts/ingest.go -source local -path ./leetcode-company-wise-problems
//	go run scripts/ingest.go -source minio -path catalogs/2024/
//
// Re-running is safe: companies are matched by name and questions by
// (company, title).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"solveit_backend/internal/app"
	"solveit_backend/internal/config"
	"solveit_backend/internal/service"
	"solveit_backend/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	source := flag.String("source", "git", "catalog source: local, git, minio, oss")
	location := flag.String("path", "", "directory, repository URL or bucket prefix (defaults from config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ForceMigrate = true

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	src, err := service.NewCatalogSource(cfg, *source, *location)
	if err != nil {
		log.Fatalf("Invalid catalog source: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Importing catalog from %s ...", src.Name())
	result, err := application.Ingest(ctx, src)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	application.Close(ctx)

	out, _ := json.MarshalIndent(result, "", "  ")
	log.Printf("Done:\n%s", out)
}
