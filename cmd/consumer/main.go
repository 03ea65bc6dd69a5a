package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/effort/internal/catalog"
	"example.com/effort/internal/config"
	"example.com/effort/internal/consumer"
	"example.com/effort/internal/dish"
	"example.com/effort/internal/effort"
	persistence "example.com/effort/internal/persistence/postgres"
)

// activityStoreAdapter bridges the postgres store's activity methods onto
// the consumer's write contract.
type activityStoreAdapter struct {
	store *persistence.Store
}

func (a activityStoreAdapter) Upsert(ctx context.Context, activity effort.Activity) error {
	return a.store.UpsertActivity(ctx, activity)
}

func (a activityStoreAdapter) Delete(ctx context.Context, key string) error {
	return a.store.DeleteActivity(ctx, key)
}

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}
	go func() {
		log.Printf("catalog consumer metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	var activities consumer.ActivityWriter
	var dishes dish.Repository

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		store := persistence.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
		activities = activityStoreAdapter{store}
		dishes = store
	default:
		activities = catalog.NewInMemoryCatalog()
		dishes = dish.NewInMemoryRepository()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.ConsumerGroup,
		Topic:          cfg.KafkaTopic,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})

	handler := consumer.NewCatalogHandler(activities, dishes)
	proc := consumer.NewProcessor(reader, handler)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer reader.Close()
		if err := proc.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("consumer stopped with error: %v", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	log.Println("catalog consumer shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics shutdown error: %v", err)
	}

	<-done
}
