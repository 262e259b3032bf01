package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"caradmin/internal/backend"
	"caradmin/internal/config"
	"caradmin/internal/database"
	"caradmin/internal/jobs"
	"caradmin/internal/middleware"
	"caradmin/internal/modules/admins"
	"caradmin/internal/modules/auth"
	"caradmin/internal/modules/cars"
	"caradmin/internal/modules/chat"
	"caradmin/internal/modules/dashboard"
	"caradmin/internal/modules/export"
	"caradmin/internal/modules/files"
	"caradmin/internal/modules/leads"
	"caradmin/internal/modules/productivity"
	"caradmin/internal/modules/tasks"
	jwtsvc "caradmin/internal/pkg/jwt"
	"caradmin/internal/pkg/metrics"
	"caradmin/internal/pkg/secretbox"
	"caradmin/internal/pkg/slogx"
	"caradmin/internal/pkg/ymlfeed"
	"caradmin/internal/repository"
)

const (
	shutdownTimeout = 15 * time.Second
	jobTimeout      = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slogx.New(slogx.Config{
		Service: "caradmin",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "db_connect_failed", err)
	}
	if err := database.Migrate(db); err != nil {
		fatal(logger, "db_migrate_failed", err)
	}

	key := cfg.SessionKey
	if key == nil {
		logger.Warn("SESSION_ENCRYPTION_KEY is empty, deriving it from JWT_SECRET")
		key = secretbox.DeriveKey(cfg.JWTSecret)
	}
	box, err := secretbox.New(key)
	if err != nil {
		fatal(logger, "secretbox_init_failed", err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.SessionTTL)

	upstream := backend.New(cfg.UpstreamURL,
		backend.WithTimeout(cfg.UpstreamTimeout),
		backend.WithMetrics(metrics.Upstream{}),
		backend.WithLogger(logger),
	)

	shop := ymlfeed.DefaultShop()
	if cfg.FeedShopConfig != "" {
		if shop, err = ymlfeed.LoadShopConfig(cfg.FeedShopConfig); err != nil {
			fatal(logger, "shop_config_failed", err)
		}
	}

	// repositories
	sessionRepo := repository.NewConsoleSessionRepository(db)
	exportRepo := repository.NewFeedExportRepository(db)

	// services
	authService := auth.NewService(sessionRepo, j, box, upstream, cfg.SessionTTL, logger)
	adminsService := admins.NewService(sessionRepo, logger)
	carsService := cars.NewService(cfg.UpstreamURL)
	leadsService := leads.NewService(cfg.UpstreamURL)
	tasksService := tasks.NewService(tasks.NewDataValidator())
	dashboardService := dashboard.NewService(cfg.DashboardRefresh)
	productivityService := productivity.NewService()
	exportService := export.NewService(exportRepo, shop, logger)

	hub := chat.NewHub(logger)
	watcher := chat.NewWatcher(hub, cfg.ChatPollInterval, cfg.ChatPushURL, logger)
	chatService := chat.NewService(watcher)
	hub.Listen(watcher)
	hub.Authorize(chatService.Authorize)

	// handlers
	authHandler := auth.NewHandler(authService)
	adminsHandler := admins.NewHandler(adminsService)
	carsHandler := cars.NewHandler(carsService)
	leadsHandler := leads.NewHandler(leadsService)
	tasksHandler := tasks.NewHandler(tasksService)
	chatHandler := chat.NewHandler(chatService, hub, cfg.CORSAllowedOrigins)
	dashboardHandler := dashboard.NewHandler(dashboardService)
	productivityHandler := productivity.NewHandler(productivityService)
	exportHandler := export.NewHandler(exportService)
	filesHandler := files.NewHandler(cfg.UpstreamURL)

	limiter := middleware.NewIPRateLimiter(cfg.SigninRate, cfg.SigninBurst)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"chat_clients":  hub.Clients(),
			"chat_watching": watcher.Watching(),
		})
	})
	r.GET("/metrics", middleware.InternalTokenAuth(cfg.MetricsToken), gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1, middleware.RateLimit(limiter))

		protected := v1.Group("")
		protected.Use(middleware.ConsoleAuth(authService))
		{
			authHandler.RegisterProtectedRoutes(protected)
			adminsHandler.RegisterRoutes(protected)
			carsHandler.RegisterRoutes(protected)
			leadsHandler.RegisterRoutes(protected)
			tasksHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)
			dashboardHandler.RegisterRoutes(protected)
			productivityHandler.RegisterRoutes(protected)
			exportHandler.RegisterRoutes(protected)
			filesHandler.RegisterRoutes(protected)
		}
	}

	// websocket: токен приходит в ?token=
	ws := r.Group("/ws")
	ws.Use(middleware.ConsoleAuth(authService))
	chatHandler.RegisterWSRoutes(ws)

	scheduler := jobs.NewScheduler(logger)
	mustSchedule(logger, scheduler, "session_cleanup", cfg.SessionCleanupSchedule, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := authService.CleanupStale(ctx)
		if err == nil && n > 0 {
			logger.Info("sessions_cleaned", "deleted", n)
		}
		return err
	})
	mustSchedule(logger, scheduler, "limiter_sweep", "@every 10m", func() error {
		limiter.Sweep()
		return nil
	})
	mustSchedule(logger, scheduler, "feed_snapshot", cfg.FeedSchedule, exportService.SnapshotJob(upstream, jobTimeout))
	scheduler.Start()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("caradmin starting", "addr", cfg.HTTPAddr, "upstream", cfg.UpstreamURL, "env", cfg.AppEnv)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server_failed", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		_ = srv.Close()
	}
	scheduler.Stop()
	watcher.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("caradmin stopped")
}

func mustSchedule(logger *slog.Logger, s *jobs.Scheduler, name, spec string, fn func() error) {
	if err := s.Add(name, spec, fn); err != nil {
		fatal(logger, "job_schedule_failed", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
