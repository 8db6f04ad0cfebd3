package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"solveit_backend/internal/config"
	"solveit_backend/internal/controller"
	"solveit_backend/internal/repository"
	"solveit_backend/internal/service"
	"solveit_backend/internal/streak"
	"solveit_backend/pkg/database"
	"solveit_backend/pkg/logger"
	"solveit_backend/pkg/monitoring"
	"solveit_backend/pkg/security"
	"solveit_backend/pkg/tracing"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Calendar *streak.Calendar

	services        *services
	controllers     *controllers
	scheduler       *gocron.Scheduler
	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      *repository.UserRepository
	streakLog *repository.StreakLogRepository
	company   *repository.CompanyRepository
	question  *repository.QuestionRepository
	progress  *repository.ProgressRepository
}

type services struct {
	auth     *service.AuthService
	streak   *service.StreakService
	sweep    *service.SweepService
	stats    *service.StatsService
	progress *service.ProgressService
	company  *service.CompanyService
	ingest   *service.IngestService
}

type controllers struct {
	auth     *controller.AuthController
	company  *controller.CompanyController
	progress *controller.ProgressController
	stats    *controller.StatsController
	cron     *controller.CronController
	health   *controller.HealthController
}

// RegisterConfigCallback adds a hook run with every reloaded config.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig hands a reloaded config to the registered callbacks. Settings that
// need a restart (database, port, timezone) are not re-read.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		streakLog: repository.NewStreakLogRepository(db),
		company:   repository.NewCompanyRepository(db),
		question:  repository.NewQuestionRepository(db),
		progress:  repository.NewProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.streak = service.NewStreakService(db, repos.user, repos.streakLog, repos.progress, a.Calendar)
	s.sweep = service.NewSweepService(repos.user, rdb, a.Calendar)
	s.stats = service.NewStatsService(repos.user, repos.progress, s.streak, a.Calendar)
	s.progress = service.NewProgressService(db, repos.user, repos.question, repos.progress, s.streak, a.Calendar)
	s.company = service.NewCompanyService(repos.company, repos.question, repos.progress)
	s.ingest = service.NewIngestService(repos.company, repos.question)

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		company:  controller.NewCompanyController(s.company),
		progress: controller.NewProgressController(s.progress),
		stats:    controller.NewStatsController(s.stats),
		cron:     controller.NewCronController(s.sweep, cfg.Streak.CronSecret),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires an App around an open database. rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	calendar, err := streak.NewCalendar(cfg.Streak.Timezone)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Calendar: calendar,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	app.controllers = app.initControllers(app.services, cfg, db, rdb)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, app.controllers, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
		app.controllers.cron.SetSecret(newCfg.Streak.CronSecret)
	})

	return app, nil
}

// NewApp initialises logging, storage and tracing from cfg and wires the App.
// Migrations run outside release mode, or when forced.
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	monitoring.Init()

	app, err := New(cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

// Ingest imports a catalog into the database.
func (a *App) Ingest(ctx context.Context, src service.CatalogSource) (*service.IngestResult, error) {
	return a.services.ingest.Run(ctx, src)
}

// SweepOnce runs the daily reset sweep for today and returns.
func (a *App) SweepOnce(ctx context.Context) error {
	result, err := a.services.sweep.RunToday(ctx)
	if err != nil {
		return err
	}
	log.Printf("Sweep for %s reset %d streaks (skipped=%t)", result.Day, result.ResetCount, result.Skipped)
	return nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	if err := a.startScheduler(); err != nil {
		logger.Log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for an interrupt, then shut down with a 5 second grace period.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	a.stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	a.Close(ctx)

	log.Println("Server exiting")
}

// Close releases the tracer, Redis and database connections.
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
