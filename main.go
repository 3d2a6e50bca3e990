package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	bidding "bid-ledger/internal/biddingService"
	"bid-ledger/internal/catalog"
	"bid-ledger/internal/config"
	"bid-ledger/internal/fanout"
	model "bid-ledger/internal/models"
	"bid-ledger/internal/notification"
	"bid-ledger/internal/repository"
	"bid-ledger/internal/server"
	"bid-ledger/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

// bus carries new-bid events from the publisher to the notification consumer
type bus interface {
	fanout.Transport
	fanout.Subscriber
}

// seedableCatalog is a catalog that development environments can prepopulate
type seedableCatalog interface {
	catalog.Catalog
	AddItem(ctx context.Context, item model.Item) error
}

func main() {
	cfg, err := loadConfig(parseArgs())
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)
	utils.Info("configuration loaded", map[string]any{"config": cfg.GetConfigString()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb, err = connectRedis(ctx, cfg.Redis)
		if err != nil {
			utils.Fatal("failed to connect to redis", map[string]any{"address": cfg.Redis.Address, "error": err.Error()})
		}
		defer rdb.Close()
	}

	ledger, store, err := openStorage(cfg.Storage)
	if err != nil {
		utils.Fatal("failed to open storage", map[string]any{"driver": cfg.Storage.Driver, "error": err.Error()})
	}

	items := openCatalog(cfg.Catalog, rdb)
	prepopulateItems(ctx, items)

	eventBus, err := openBus(cfg.Fanout, rdb)
	if err != nil {
		utils.Fatal("failed to open fanout", map[string]any{"driver": cfg.Fanout.Driver, "error": err.Error()})
	}

	publisher, err := notification.NewPublisher(eventBus, cfg.Fanout.Topic,
		notification.WithPublisherBufferSize(cfg.Fanout.BufferSize),
		notification.WithPublisherTimeout(cfg.Request.Timeout),
	)
	if err != nil {
		utils.Fatal("failed to create publisher", map[string]any{"error": err.Error()})
	}
	publisher.Start()

	consumer := notification.NewConsumer(store, notification.WithConsumerTimeout(cfg.Request.Timeout))
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	var consumerWG sync.WaitGroup
	consumerWG.Add(1)
	go func() {
		defer consumerWG.Done()
		if err := eventBus.Run(consumerCtx, consumer.Consume); err != nil {
			utils.Error("notification consumer stopped", map[string]any{"error": err.Error()})
		}
	}()

	biddingSvc := bidding.NewBiddingService(ledger, items,
		bidding.WithPublisher(publisher),
		bidding.WithTimeout(cfg.Request.Timeout),
	)
	feed := notification.NewFeed(store, cfg.Notifications.RecentLimit, cfg.Request.Timeout)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.SetupRouter(biddingSvc, feed),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server shutdown failed", map[string]any{"error": err.Error()})
	}

	// queued bids are published before the consumer stops
	publisher.Close()
	stopConsumer()
	consumerWG.Wait()
	utils.Info("shutdown complete", nil)
}

// parseArgs returns the --config path; empty means the default search paths
func parseArgs() string {
	configPath := pflag.String("config", "", "path to a config file; defaults and environment still apply")
	pflag.Parse()
	return *configPath
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// openStorage returns the bid ledger and notification store for the configured driver
func openStorage(cfg config.StorageConfig) (repository.Ledger, notification.Store, error) {
	if cfg.Driver == "memory" {
		return repository.NewMemoryRepo(), notification.NewMemoryStore(), nil
	}

	db, err := repository.OpenDatabase(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return openGormStorage(db)
}

func openGormStorage(db *gorm.DB) (repository.Ledger, notification.Store, error) {
	ledger, err := repository.NewGormRepo(db)
	if err != nil {
		return nil, nil, err
	}
	store, err := notification.NewGormStore(db)
	if err != nil {
		return nil, nil, err
	}
	return ledger, store, nil
}

func openCatalog(cfg config.CatalogConfig, rdb *redis.Client) seedableCatalog {
	if cfg.Driver == "redis" {
		return catalog.NewRedisCatalog(rdb)
	}
	return catalog.NewMemoryCatalog()
}

func openBus(cfg config.FanoutConfig, rdb *redis.Client) (bus, error) {
	if cfg.Driver == "redis" {
		return fanout.NewRedisStream(rdb, cfg.Topic, cfg.Group, cfg.Consumer,
			fanout.WithBatchSize(int64(cfg.BatchSize)),
			fanout.WithBlockTimeout(cfg.BlockTimeout),
			fanout.WithRetryDelay(cfg.RetryDelay),
		)
	}
	return fanout.NewMemoryBus(cfg.Topic, cfg.BufferSize, cfg.BatchSize, cfg.RetryDelay), nil
}

// prepopulateItems adds sample items when the catalog is empty
func prepopulateItems(ctx context.Context, items seedableCatalog) {
	existing, err := items.ListItems(ctx)
	if err != nil {
		utils.Warn("skipping catalog seed", map[string]any{"error": err.Error()})
		return
	}
	if len(existing) > 0 {
		return
	}

	end := time.Now().UTC().Add(24 * time.Hour)
	samples := []model.Item{
		{ItemID: "item1", Title: "title1", Description: "description1", StartingPrice: model.MustPrice("100"), AuctionEndTime: end},
		{ItemID: "item2", Title: "title2", Description: "Description2", StartingPrice: model.MustPrice("200"), AuctionEndTime: end},
		{ItemID: "item3", Title: "title3", Description: "Description3", StartingPrice: model.MustPrice("150"), AuctionEndTime: end.Add(-23 * time.Hour)},
	}

	for _, item := range samples {
		if err := items.AddItem(ctx, item); err != nil {
			utils.Warn("failed to seed item", map[string]any{"item_id": item.ItemID, "error": err.Error()})
		}
	}
}
