package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"toyshop/internal/config"
	"toyshop/internal/models"
	"toyshop/internal/repositories"
	"toyshop/internal/services"
	"toyshop/pkg/logger"
	"toyshop/pkg/natsbus"
	"toyshop/pkg/rabbitmq"
	"toyshop/pkg/redisstore"
)

func main() {
	if err := run(); err != nil {
		zap.S().Errorf("toyshop stopped: %v", err)
		zap.L().Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	flush, err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return err
	}
	defer flush()

	ctx := context.Background()

	// --- Repositories ---
	products, err := openProductRepository(cfg.Database)
	if err != nil {
		return err
	}

	// --- Media host ---
	assets, err := openAssets(ctx, cfg.Assets)
	if err != nil {
		return err
	}

	// --- Change events ---
	events, closeEvents, err := openEvents(cfg.Events)
	if err != nil {
		return err
	}
	defer closeEvents()

	deps := Deps{
		Config:    cfg,
		Products:  products,
		Assets:    assets,
		Events:    events,
		AccessLog: true,
	}

	// --- Session storage ---
	if cfg.Redis.Addr != "" {
		store, err := redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "toyshop:session:",
		})
		if err != nil {
			return err
		}
		defer store.Close()
		deps.SessionStorage = store
		deps.LimiterStorage = store.WithPrefix("toyshop:limiter:")
		zap.S().Infof("sessions stored in redis at %s", cfg.Redis.Addr)
	}

	app, err := NewApp(deps)
	if err != nil {
		return err
	}

	// --- Start HTTP Server ---
	zap.S().Infof("starting %s on %s", cfg.Shop.Name, cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	zap.S().Info("shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zap.S().Errorf("error during Fiber shutdown: %v", err)
	}
	zap.S().Info("server gracefully stopped")
	return nil
}

func openProductRepository(cfg config.Database) (repositories.ProductRepository, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "memory":
		zap.S().Warn("using the in-memory product store, data is lost on restart")
		return repositories.NewInMemoryProductRepository(), nil
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		dialector = postgres.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return repositories.NewGORMProductRepository(db), nil
}

func openAssets(ctx context.Context, cfg config.Assets) (*services.AssetService, error) {
	assetCfg := services.AssetConfig{
		Bucket:    cfg.Bucket,
		Folder:    cfg.Folder,
		PublicURL: cfg.PublicURL,
	}
	if cfg.Endpoint == "" {
		zap.S().Warn("ASSETS_ENDPOINT is not set, image uploads are disabled")
		return services.NewAssetService(nil, assetCfg), nil
	}

	store, err := services.NewMinioStore(services.MinioConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx, cfg.Bucket); err != nil {
		return nil, err
	}
	if assetCfg.PublicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		assetCfg.PublicURL = scheme + "://" + cfg.Endpoint
	}
	return services.NewAssetService(store, assetCfg), nil
}

func openEvents(cfg config.Events) (services.EventPublisher, func(), error) {
	switch cfg.Backend {
	case "amqp":
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.URL, Exchange: cfg.Topic})
		if err != nil {
			return nil, nil, err
		}
		if err := mqClient.ConsumeProductEvents(auditProductEvent); err != nil {
			zap.S().Warnf("failed to start product audit consumer: %v", err)
		}
		return mqClient, func() {
			if err := mqClient.Close(); err != nil {
				zap.S().Warnf("error closing RabbitMQ client: %v", err)
			}
		}, nil
	case "nats":
		nc, publisher, err := natsbus.Connect(cfg.URL, cfg.Topic)
		if err != nil {
			return nil, nil, err
		}
		return publisher, func() {
			if err := nc.Drain(); err != nil {
				zap.S().Warnf("error draining NATS connection: %v", err)
			}
		}, nil
	default:
		return nil, func() {}, nil
	}
}

// auditProductEvent writes every product change to the log.
func auditProductEvent(msg amqp.Delivery) error {
	var event services.ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("malformed product event: %w", err)
	}
	zap.S().Infow("product changed",
		"type", event.Type,
		"productId", event.ProductID,
		"routingKey", msg.RoutingKey,
		"at", event.OccurredAt,
	)
	return nil
}
