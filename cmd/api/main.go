package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estatebot/internal/config"
	"estatebot/internal/database"
	"estatebot/internal/domain/notification"
	"estatebot/internal/domain/subscription"
	"estatebot/internal/pkg/clock"
	"estatebot/internal/pkg/jwt"
	"estatebot/internal/pkg/logger"
	"estatebot/internal/pkg/ratelimit"
	"estatebot/internal/scheduler"
	"estatebot/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	pol, err := cfg.Policy()
	if err != nil {
		log.WithError(err).Fatal("load role policy")
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	if err := database.Migrate(db, server.Models()...); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var broker notification.Publisher = notification.NewLogPublisher(log)
	if cfg.RabbitMQURL != "" {
		amqpPub := notification.NewAMQPPublisher(cfg.RabbitMQURL, log)
		defer amqpPub.Close()
		broker = amqpPub
		log.Info("publishing events to RabbitMQ")
	}

	var limiter ratelimit.Limiter
	if rdb := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitPerHour, time.Hour)
		log.WithField("per_hour", cfg.RateLimitPerHour).Info("rate limiting enabled")
	} else {
		log.Warn("redis unavailable, rate limiting disabled")
	}

	app := server.New(db, server.Options{
		Policy:      pol,
		Clock:       clock.System{},
		JWT:         jwt.New(cfg.JWTSecret, cfg.JWTTTL),
		Limiter:     limiter,
		Broker:      broker,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Log:         log,
	})

	sched := scheduler.New(log, cfg.JobTimeout)
	if err := sched.Add(cfg.ReminderCron, subscription.NewReminderJob(app.Subscriptions, nil)); err != nil {
		log.WithError(err).Fatal("schedule reminders")
	}
	cleanup := notification.NewCleanupJob(app.Notifications, cfg.NotificationRetention, log)
	if err := sched.Add(cfg.CleanupCron, cleanup); err != nil {
		log.WithError(err).Fatal("schedule notification cleanup")
	}
	sched.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	sched.Stop(shutdownCtx)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
