package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"salesroute/internal/api"
	routes "salesroute/internal/api/handlers"
	"salesroute/internal/config"
	"salesroute/internal/cortex"
	"salesroute/internal/here"
	"salesroute/internal/logger"
	"salesroute/internal/model"
	"salesroute/internal/postgres"
	"salesroute/internal/redis"
	"salesroute/internal/service/address"
	"salesroute/internal/service/assistant"
	"salesroute/internal/service/location"
	"salesroute/internal/service/route"
	"salesroute/internal/service/storage"
	"salesroute/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.HereAPIKey == "" {
		logger.Warn("HERE_API_KEY is not set, geocoding and routing requests will fail")
	}
	if cfg.CortexAccountURL == "" || cfg.CortexToken == "" {
		logger.Warn("Cortex account URL or token is not set, agent requests will fail")
	}

	db, err := postgres.Init(cfg.DBUrl, logger)
	if err != nil {
		logger.Fatal("failed to initialize PostgreSQL", zap.Error(err))
	}

	// Redis is a cache only; run without it when unreachable
	var geocodeCache location.Cache
	var routeCache route.Cache
	redisClient, err := redis.Init(cfg.RedisUrl, logger)
	if err != nil {
		logger.Warn("Redis unavailable, caching disabled", zap.Error(err))
	} else {
		geocodeCache = redisClient
		routeCache = redisClient
	}

	hereClient := here.NewClient(here.Config{
		APIKey:      cfg.HereAPIKey,
		GeocodeURL:  cfg.HereGeocodeURL,
		RouterURL:   cfg.HereRouterURL,
		RouterV7URL: cfg.HereRouterV7URL,
		Timeout:     cfg.HereTimeout,
	}, logger.Named("here"))

	cortexClient := cortex.NewClient(cortex.Config{
		AccountURL:    cfg.CortexAccountURL,
		Token:         cfg.CortexToken,
		Model:         cfg.CortexModel,
		SearchService: cfg.CortexSearchService,
		SemanticModel: cfg.CortexSemanticModel,
		Timeout:       cfg.CortexTimeout,
	}, logger.Named("cortex"))

	locationService := location.NewLocationService(hereClient, geocodeCache, cfg.CacheTTL, logger.Named("location"))
	routeService := route.NewRouteService(hereClient, routeCache, cfg.CacheTTL, cfg.RoutingAPIVersion, logger.Named("route"))
	mapService := route.NewMapService(newExtractor(cfg, cortexClient, logger), locationService, routeService, logger.Named("map"))

	conversations := storage.NewShardedMemoryStorage[string, *model.Conversation](16, nil)
	repo := postgres.NewConversationRepository(db)
	assistantService := assistant.NewAssistantService(
		conversations,
		repo,
		cortexClient,
		mapService,
		postgres.NewSalesStore(db),
		cfg.CortexSearchLimit,
		logger.Named("assistant"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers := worker.StartAllWorkers(ctx, logger,
		worker.NewConversationWorker(conversations, repo, config.ConversationFlushInterval, logger.Named("worker")),
	)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.SetupRouter(r, api.Handlers{
		Info: routes.ServiceInfo{
			Port:              cfg.Port,
			Env:               cfg.AppEnv,
			RoutingAPIVersion: cfg.RoutingAPIVersion,
			AddressExtractor:  cfg.AddressExtractor,
		},
		Conversations: routes.NewConversationHandler(assistantService, logger.Named("api")),
		Routes:        routes.NewRouteHandler(mapService, logger.Named("api")),
	})

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	// The conversation worker flushes once more before returning
	workers.Wait()
	closeConnections(db, redisClient, logger)
}

func newExtractor(cfg config.Config, agent *cortex.Client, logger *zap.Logger) address.Extractor {
	if cfg.AddressExtractor == "regex" {
		return address.NewChain(logger.Named("address"), address.RegexExtractor{})
	}
	return address.NewChain(logger.Named("address"),
		address.NewLLMExtractor(agent, logger.Named("address")),
		address.RegexExtractor{},
	)
}

func closeConnections(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) {
	if err := postgres.Close(db); err != nil {
		logger.Error("error closing PostgreSQL connection", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("error closing Redis connection", zap.Error(err))
		}
	}

	logger.Info("connections closed")
}
