package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/cyberpulse/backend/internal/api/handlers"
	rediscache "github.com/cyberpulse/backend/internal/cache/redis"
	"github.com/cyberpulse/backend/internal/catalog"
	"github.com/cyberpulse/backend/internal/extract"
	"github.com/cyberpulse/backend/internal/feed"
	"github.com/cyberpulse/backend/internal/llm"
	"github.com/cyberpulse/backend/internal/metrics"
	"github.com/cyberpulse/backend/internal/middleware/ratelimit"
	"github.com/cyberpulse/backend/internal/middleware/security"
	"github.com/cyberpulse/backend/internal/middleware/validation"
	"github.com/cyberpulse/backend/internal/score"
	"github.com/cyberpulse/backend/internal/search"
	"github.com/cyberpulse/backend/internal/sentiment"
	"github.com/cyberpulse/backend/internal/storage/sqlite"
	"github.com/cyberpulse/backend/pkg/config"
	appLogger "github.com/cyberpulse/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting CyberPulse API Server")

	metrics.Init()

	cat, err := catalog.Default()
	if err != nil {
		appLogger.Fatal("Invalid threat catalog", zap.Error(err))
	}

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cache feed.Cache
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without feed cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = redisClient
		}
	}

	var brief feed.BriefGenerator
	if cfg.LLM.Enabled {
		brief = llm.NewClient(
			cfg.LLM.APIKey,
			cfg.LLM.Model,
			cfg.LLM.Temperature,
			cfg.LLM.MaxTokens,
		)
	}

	searchClient := search.NewClient(
		cfg.Provider.URL,
		cfg.Provider.APIKey,
		cfg.Provider.TimeoutSec,
		cfg.Provider.MaxResults,
	)

	scorer := score.New(cat, sentiment.NewAdapter(sentiment.NewVader()))

	engine := feed.NewEngine(feed.Options{
		Catalog:               cat,
		Extractor:             extract.New(cat),
		Scorer:                scorer,
		Provider:              searchClient,
		Cache:                 cache,
		History:               sqliteClient,
		Brief:                 brief,
		FetchDelay:            time.Duration(cfg.Provider.FetchDelayMS) * time.Millisecond,
		ArticlesPerTopic:      cfg.Scoring.ArticlesPerTopic,
		SeverityFilter:        cfg.Scoring.SeverityFilter,
		HighSeverityThreshold: cfg.Scoring.HighSeverityThreshold,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	feedHandler := handlers.NewFeedHandler(engine, searchClient)
	catalogHandler := handlers.NewCatalogHandler(cat)
	wsHandler := handlers.NewWebSocketHandler(engine)

	api := app.Group("/api/v1")

	api.Post("/feed", feedHandler.HandleFeed)
	api.Get("/feed/history", feedHandler.GetFeedHistory)
	api.Get("/feed/test", feedHandler.TestConnection)
	api.Get("/topics", catalogHandler.ListTopics)

	app.Get("/ws", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
