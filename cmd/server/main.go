package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-reconciler/config"
	"stock-reconciler/internal/api"
	"stock-reconciler/internal/broker"
	"stock-reconciler/internal/cache"
	"stock-reconciler/internal/engine"
	"stock-reconciler/internal/redisclient"
	"stock-reconciler/internal/service"
	"stock-reconciler/internal/store"
	"stock-reconciler/internal/upstream"
	"stock-reconciler/internal/util"
	"stock-reconciler/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting stock reconciler")

	tp, err := util.InitTracer("stock-reconciler", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// Shared Redis cache store when configured, per-process memory store
	// otherwise.
	var cacheStore cache.Store
	if cfg.Redis.Addr != "" {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cacheStore = redisClient
		log.Println("Redis connected, using shared cache store")
	} else {
		cacheStore = cache.NewMemoryStore()
		log.Println("Using in-memory cache store")
	}

	warehouseClient := upstream.NewWarehouseClient(cfg.Upstream.BaseURL, cfg.Upstream.CompanyID, cfg.Upstream.Timeout)
	reconEngine := engine.NewEngine(warehouseClient)
	stockCache := cache.New(cacheStore, reconEngine, cfg.Cache.TTL)
	aggregator := engine.NewVariationAggregator(stockCache)

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicStock)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	updateService := service.NewStockUpdateService(db, stockCache, eventPublisher)
	reportService := service.NewReportService(db, aggregator, cfg.Report.LowStockThreshold)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	stockConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicStock, cfg.Kafka.ConsumerGroup)
	stockWorker := worker.NewStockEventWorker(stockConsumer, stockCache)
	go func() {
		if err := stockWorker.Start(workerCtx); err != nil {
			log.Printf("Stock event worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(stockCache, aggregator, db, updateService, reportService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	stockWorker.Stop()

	log.Println("Server exited")
}
