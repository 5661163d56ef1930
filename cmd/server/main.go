package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eonhq/eon-backend/internal/config"
	"github.com/eonhq/eon-backend/internal/database"
	"github.com/eonhq/eon-backend/internal/handler"
	"github.com/eonhq/eon-backend/internal/logger"
	"github.com/eonhq/eon-backend/internal/middleware"
	"github.com/eonhq/eon-backend/internal/queue"
	"github.com/eonhq/eon-backend/internal/repository"
	"github.com/eonhq/eon-backend/internal/router"
	"github.com/eonhq/eon-backend/internal/service"
	"github.com/eonhq/eon-backend/internal/storage"
)

// expiryInterval is how often the background sweep deactivates events
// whose date has passed.  Reads also filter on date, so a late sweep
// never exposes stale rows.
const expiryInterval = time.Hour

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load()
	if err := logger.Init(cfg.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; limiter and cache degrade to no-ops

	events := repository.NewEventRepo(db)
	subscriptions := repository.NewSubscriptionRepo(db)
	invitations := repository.NewInvitationRepo(db)
	payments := repository.NewPaymentRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	wishlist := repository.NewWishListRepo(db)

	presigner := storage.NewPresigner(cfg.Media.Endpoint, cfg.Media.Bucket, cfg.Media.SigningKey, cfg.Media.URLTTLMin)
	publisher := queue.NewPublisher(cfg.AMQPURL)

	visibility := service.NewVisibility(invitations, subscriptions, payments, users, wishlist, presigner)
	lifecycle := service.NewLifecycle(events, subscriptions, publisher)
	workflow := service.NewSubscriptions(events, events, subscriptions, payments, publisher)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens, invitations),
		Events:        handler.NewEventHandler(events, wishlist, visibility, lifecycle),
		Subscriptions: handler.NewSubscriptionHandler(events, subscriptions, workflow),
		Invitations:   handler.NewInvitationHandler(events, invitations),
		Wishlist:      handler.NewWishListHandler(events, wishlist, visibility),
	}, cfg.JWTSecret, cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lifecycle.RunSweeper(ctx, expiryInterval)
	go queue.StartNotificationConsumer(cfg.AMQPURL)

	addr := ":" + cfg.Port
	logger.Log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Log.Fatal("server stopped", zap.Error(err))
	}
}

// errorHandler is the boundary error handler: every error that escapes
// a handler becomes the standard {message} envelope.  Client errors
// log at Warn, server errors at Error, both with path and method.
func errorHandler(err error, c echo.Context) {
	status := http.StatusInternalServerError
	message := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if s, ok := he.Message.(string); ok && s != "" {
			message = s
		} else {
			message = http.StatusText(status)
		}
	}

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Request().URL.Path),
		zap.Error(err),
	}
	if status >= 500 {
		logger.Log.Error("request failed", fields...)
	} else {
		logger.Log.Warn("request rejected", fields...)
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"message": message})
}
