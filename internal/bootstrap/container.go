package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hossamdev/portfolio-api/internal/config"
	"github.com/hossamdev/portfolio-api/internal/infra/blob"
	"github.com/hossamdev/portfolio-api/internal/infra/cache"
	"github.com/hossamdev/portfolio-api/internal/infra/db"
	"github.com/hossamdev/portfolio-api/internal/infra/identity"
	"github.com/hossamdev/portfolio-api/internal/infra/logger"
	mq "github.com/hossamdev/portfolio-api/internal/infra/queue"
	"github.com/hossamdev/portfolio-api/internal/modules/handler"
	"github.com/hossamdev/portfolio-api/internal/modules/model"
	"github.com/hossamdev/portfolio-api/internal/modules/repo"
	"github.com/hossamdev/portfolio-api/internal/modules/service"
	"github.com/hossamdev/portfolio-api/internal/pkg/imageprep"
	"github.com/hossamdev/portfolio-api/internal/pkg/reconcile"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			_ = d.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto")

			_ = d.AutoMigrate(
				&model.Project{},
				&model.SiteMetadata{},
			)
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg)
	})

	// RabbitMQ DialFunc for connection and reconnection
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		cfg := do.MustInvoke[*config.Config](i)

		dialFn := func() (*amqp.Connection, error) {
			useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(cfg.RabbitMQ.URL, "amqps://")
			if useTLS {
				tlsConfig := &tls.Config{
					MinVersion: tls.VersionTLS12,
				}
				url := cfg.RabbitMQ.URL
				if strings.HasPrefix(url, "amqp://") {
					url = strings.Replace(url, "amqp://", "amqps://", 1)
				}
				return amqp.DialTLS(url, tlsConfig)
			}
			return amqp.Dial(cfg.RabbitMQ.URL)
		}

		return dialFn, nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return dialFn()
	})

	// RabbitMQ Publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		log := do.MustInvoke[*zap.Logger](i)
		return mq.NewPublisher(conn, log, cfg)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})

	// Identity provider
	do.Provide(inj, func(i *do.Injector) (identity.Provider, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return identity.NewSupabase(cfg), nil
	})

	// Image preparation
	do.Provide(inj, func(i *do.Injector) (*imageprep.Preparer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return imageprep.NewPreparer(cfg.Media.CompressThresholdBytes, cfg.Media.MaxDimensionPx, log), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.MetadataRepo, error) {
		return repo.NewMetadataRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.MediaService, error) {
		return service.NewMediaService(
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*imageprep.Preparer](i),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*reconcile.Engine, error) {
		media := do.MustInvoke[service.MediaService](i)
		return reconcile.NewEngine(media, media, do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.MetadataRepo](i),
			do.MustInvoke[*reconcile.Engine](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MetadataService, error) {
		return service.NewMetadataService(
			do.MustInvoke[repo.MetadataRepo](i),
			do.MustInvoke[service.MediaService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[identity.Provider](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MediaHandler, error) {
		return handler.NewMediaHandler(
			do.MustInvoke[service.MediaService](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MetadataHandler, error) {
		return handler.NewMetadataHandler(
			do.MustInvoke[service.MetadataService](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	return inj
}
