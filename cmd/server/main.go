package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/database"
	"github.com/iliyamo/user-account-service/internal/handler"
	"github.com/iliyamo/user-account-service/internal/media"
	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/router"
	"github.com/iliyamo/user-account-service/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environments set vars directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	sessions := service.NewSessionManager(cfg, users)
	uploader := media.NewUploader(cfg.MediaUploadURL, cfg.MediaAPIKey)

	e := echo.New()
	// Every failure, returned or panicked, exits through the one error
	// handler as the uniform envelope.
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(echomw.Recover())

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())

	router.RegisterRoutes(e)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, users, sessions, uploader),
		handler.NewUserHandler(cfg, users, uploader),
		cfg, limiter)

	// Account activity consumer runs for the lifetime of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartAccountConsumer(); err != nil {
			log.Printf("account consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
