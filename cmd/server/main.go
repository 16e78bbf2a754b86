package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hossamdev/portfolio-api/internal/bootstrap"
	"github.com/hossamdev/portfolio-api/internal/config"
	"github.com/hossamdev/portfolio-api/internal/infra/cache"
	"github.com/hossamdev/portfolio-api/internal/infra/db"
	"github.com/hossamdev/portfolio-api/internal/infra/identity"
	mq "github.com/hossamdev/portfolio-api/internal/infra/queue"
	"github.com/hossamdev/portfolio-api/internal/modules/handler"
	"github.com/hossamdev/portfolio-api/internal/modules/service"
	"github.com/hossamdev/portfolio-api/internal/router"
	"github.com/hossamdev/portfolio-api/internal/telemetry"
)

//	@title			Portfolio API
//	@version		0.0.1
//	@description	Backend for a personal portfolio site: public project catalog, admin project management, media hosting gateway and site metadata.
//	@BasePath		/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync() //nolint:errcheck

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if _, err := telemetry.SetupTracing(cfg); err != nil {
		log.Fatal("telemetry setup failed", zap.Error(err))
	}

	gdb := do.MustInvoke[*gorm.DB](inj)
	rdb := do.MustInvoke[*redis.Client](inj)
	if cfg.Telemetry.Enabled {
		if err := db.RegisterOpenTelemetryPlugin(gdb); err != nil {
			log.Warn("gorm otel plugin failed", zap.Error(err))
		}
		if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
			log.Warn("redis otel plugin failed", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// orphan cleanup sweeper
	sweeper, err := bootstrap.NewSweeper(
		do.MustInvoke[*amqp.Connection](inj),
		do.MustInvoke[*mq.Publisher](inj),
		do.MustInvoke[service.MediaService](inj),
		cfg,
		log,
	)
	if err != nil {
		log.Fatal("sweeper setup failed", zap.Error(err))
	}
	go func() {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("sweeper stopped", zap.Error(err))
		}
	}()

	r := router.NewRouter(router.RouterDeps{
		Config:          cfg,
		Log:             log,
		Identity:        do.MustInvoke[identity.Provider](inj),
		AuthHandler:     do.MustInvoke[*handler.AuthHandler](inj),
		ProjectHandler:  do.MustInvoke[*handler.ProjectHandler](inj),
		MediaHandler:    do.MustInvoke[*handler.MediaHandler](inj),
		MetadataHandler: do.MustInvoke[*handler.MetadataHandler](inj),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: r,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	_ = sweeper.Close()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Error("telemetry shutdown failed", zap.Error(err))
	}
	_ = cache.Close(rdb)
}
