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
	"github.com/marcelsud/webhook-courier/internal/http/chi"
	"github.com/marcelsud/webhook-courier/metrics"
	"github.com/marcelsud/webhook-courier/queue/redisqueue"
	"github.com/marcelsud/webhook-courier/retention"
	"github.com/marcelsud/webhook-courier/subscription"
	subscriptionpostgres "github.com/marcelsud/webhook-courier/subscription/postgres"
	"github.com/marcelsud/webhook-courier/subscription/rediscache"
	subscriptionsqlite "github.com/marcelsud/webhook-courier/subscription/sqlite"
	"github.com/rs/zerolog"
)

const TIMEOUT = 30 * time.Second

// retentionSchedule runs the purge at the top of every hour.
const retentionSchedule = "0 * * * *"

/*
* O main.go é a porta de entrada e saída da aplicação: é nele onde iniciamos
* as dependências, fazemos as configurações e a invocação dos pacotes que
* desempenham a lógica de negócio.
 */

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api").Logger()

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
		log.Fatal().Err(err).Msg("connecting to redis cache")
	}
	defer cache.Close(ctx)

	jobs := redisqueue.NewQueueWithClient(cache.GetClient(), "api")

	directory := subscription.NewDirectory(subscriptionStore, cache, cfg.CacheTTL(), log)
	subscriptionService := subscription.NewService(subscriptionStore, directory, log)
	deliveryService := delivery.NewService(deliveryRepo, directory, jobs, log)

	if cfg.SubscriptionSeedFile != "" {
		subs, err := subscription.LoadSeed(cfg.SubscriptionSeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.SubscriptionSeedFile).Msg("loading subscription seed")
		}
		if err := subscription.ApplySeed(ctx, subscriptionStore, subs, log); err != nil {
			log.Fatal().Err(err).Msg("applying subscription seed")
		}
	}

	collector := metrics.NewSystemCollector(jobs, deliveryRepo)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		log.Fatal().Err(err).Msg("creating metrics exporter")
	}
	defer exporter.Shutdown(ctx)

	sweeper := retention.NewSweeper(deliveryRepo, cfg.RetentionWindow(), log)
	if err := sweeper.Start(retentionSchedule); err != nil {
		log.Fatal().Err(err).Msg("starting retention sweeper")
	}
	defer sweeper.Stop()

	r := chi.Handlers(subscriptionService, deliveryService, collector, exporter.ServeHTTP())
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	log.Info().Str("port", cfg.Port).Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
	if err := <-errShutdown; err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// openStores picks PostgreSQL when DATABASE_URL is set, SQLite otherwise.
// Both stores share the same database handle per engine.
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

	// SQLite deployments are single-binary, so the schema is applied here.
	ctx := context.Background()
	if err := subscriptionStore.CreateTable(ctx); err != nil {
		return nil, nil, err
	}
	if err := deliveryRepo.CreateTables(ctx); err != nil {
		return nil, nil, err
	}
	return subscriptionStore, deliveryRepo, nil
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("forcing closing the server")
	}
}
