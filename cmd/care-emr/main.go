package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/takahashi-jo/care-emr/internal/api"
	"github.com/takahashi-jo/care-emr/internal/config"
	"github.com/takahashi-jo/care-emr/internal/db"
	"github.com/takahashi-jo/care-emr/internal/i18n"
	"github.com/takahashi-jo/care-emr/internal/logging"
	"github.com/takahashi-jo/care-emr/internal/services"
)

func main() {
	// A missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	location := mustLoadLocation(cfg.Timezone)
	time.Local = location

	logger, err := logging.NewLogger(cfg.LogLevel, "care-emr")
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	i18nManager, err := i18n.NewManager(cfg.DefaultLanguage, cfg.LocalesDir)
	if err != nil {
		logger.Fatal("i18n init failed", zap.Error(err))
	}

	repositories := db.NewRepositories(database)
	authService := services.NewAuthService(repositories.Users)
	residentService := services.NewResidentService(repositories.Residents, location)
	recordService := services.NewMedicalRecordService(repositories.MedicalRecords, location)
	exportService := services.NewExportService(repositories.Residents)

	initialPassword, err := authService.EnsureInitialAdmin()
	if err != nil {
		logger.Fatal("initial admin provisioning failed", zap.Error(err))
	}
	if initialPassword != "" {
		// Shown once; rotate it after first sign-in.
		logger.Warn("initial admin account created",
			zap.String("email", "admin@care-emr.local"),
			zap.String("password", initialPassword),
		)
	}

	handler := api.NewHandler(api.Dependencies{
		Auth:      authService,
		Residents: residentService,
		Records:   recordService,
		Export:    exportService,
		I18n:      i18nManager,
		Logger:    logger,
		SecretKey: []byte(cfg.SecretKey),
		Location:  location,
		TokenTTL:  time.Duration(cfg.TokenTTLHours) * time.Hour,
	})

	app := fiber.New(fiber.Config{
		AppName:               "care-emr",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Origin,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization",
	}))
	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("care-emr listening",
		zap.String("port", cfg.Port),
		zap.String("db", cfg.DBPath),
		zap.String("tz", location.String()),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}
