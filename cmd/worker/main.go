package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/webhook-courier/config"
	"github.com/marcelsud/webhook-courier/delivery"
	deliverypostgres "github.com/marcelsud/webhook-courier/delivery/postgres"
	deliverysqlite "github.com/marcelsud/webhook-courier/delivery/sqlite"
	"github.com/marcelsud/webhook-courier/queue"
	"github.com/marcelsud/webhook-courier/queue/redisqueue"
	"github.com/marcelsud/webhook-courier/subscription"
	subscriptionpostgres "github.com/marcelsud/webhook-courier/subscription/postgres"
	"github.com/marcelsud/webhook-courier/subscription/rediscache"
	subscriptionsqlite "github.com/marcelsud/webhook-courier/subscription/sqlite"
	"github.com/rs/zerolog"
)

// promoteInterval is how often due retry jobs move from the scheduled
// set to the ready stream.
const promoteInterval = time.Second

/*
* Processo de entrega: consome jobs da fila, executa as tentativas de
* entrega e agenda os retries. Roda separado da API para escalar de
* forma independente.
 */

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "worker").Logger()

	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	subscriptionStore, deliveryRepo, err := openStores(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening stores")
	}
	defer subscriptionStore.Close(ctx)
	defer deliveryRepo.Close(ctx)

	cache, err := rediscache.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to redis")
	}
	defer cache.Close(ctx)

	jobs := redisqueue.NewQueueWithClient(cache.GetClient(), "worker")

	directory := subscription.NewDirectory(subscriptionStore, cache, cfg.CacheTTL(), log)

	client := &http.Client{Timeout: cfg.DeliveryTimeout()}
	worker := delivery.NewWorker(deliveryRepo, directory, client, cfg.MaxAttempts, cfg.BaseRetryDelay(), log)

	go jobs.RunPromoter(ctx, promoteInterval)

	runner := queue.NewRunner(jobs, worker, jobs, cfg.WorkerCount, log)
	log.Info().Int("workers", cfg.WorkerCount).Msg("delivery workers started")
	runner.Run(ctx)
	log.Info().Msg("delivery workers stopped")
}

// openStores picks PostgreSQL when DATABASE_URL is set, SQLite otherwise.
func openStores(cfg *config.Config) (subscription.Store, delivery.Repository, error) {
	if cfg.DatabaseURL != "" {
		subscriptionStore, err := subscriptionpostgres.NewRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres: %w", err)
		}
		return subscriptionStore, deliverypostgres.NewRepositoryWithDB(subscriptionStore.DB), nil
	}

	path := cfg.SQLitePath
	if path == "" {
		path = "courier.db"
	}
	subscriptionStore, err := subscriptionsqlite.NewRepository(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sqlite: %w", err)
	}
	deliveryRepo := deliverysqlite.NewRepositoryWithDB(subscriptionStore.DB)

	// The worker may start before the API has ever touched the database.
	ctx := context.Background()
	if err := subscriptionStore.CreateTable(ctx); err != nil {
		return nil, nil, err
	}
	if err := deliveryRepo.CreateTables(ctx); err != nil {
		return nil, nil, err
	}
	return subscriptionStore, deliveryRepo, nil
}
