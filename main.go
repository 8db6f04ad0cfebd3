// @title SolveIt API
// @version 1.0
// @description Interview preparation tracker: company question catalogs, progress and daily streaks.

// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"
	"solveit_backend/internal/app"
	"solveit_backend/internal/config"
	"solveit_backend/pkg/configwatcher"
	"solveit_backend/pkg/logger"
	"time"

	"github.com/joho/godotenv"
)

const configDir = "configs"

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations on startup, even in release mode")
	sweepOnce := flag.Bool("sweep-once", false, "run the daily streak reset sweep once and exit")
	flag.Parse()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration finished, exiting")
		return
	}

	if *sweepOnce {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := application.SweepOnce(ctx); err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		application.Close(ctx)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := configwatcher.WatchConfig(ctx, configDir+"/config.yaml", application.ApplyConfig); err != nil {
			log.Printf("Config hot reload disabled: %v", err)
		}
	}()

	application.Run()
}
