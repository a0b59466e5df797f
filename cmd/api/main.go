package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/support-agent/backend/internal/api/handlers"
	"github.com/support-agent/backend/internal/api/middleware"
	"github.com/support-agent/backend/internal/auth"
	rediscache "github.com/support-agent/backend/internal/cache/redis"
	"github.com/support-agent/backend/internal/chat"
	"github.com/support-agent/backend/internal/knowledge"
	"github.com/support-agent/backend/internal/llm"
	"github.com/support-agent/backend/internal/metrics"
	mongostore "github.com/support-agent/backend/internal/storage/mongo"
	"github.com/support-agent/backend/internal/storage/sqlite"
	"github.com/support-agent/backend/internal/vector"
	"github.com/support-agent/backend/internal/vector/milvus"
	"github.com/support-agent/backend/pkg/config"
	appLogger "github.com/support-agent/backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

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

	appLogger.Info("Starting support agent API server")

	metrics.Register()

	mongoClient, err := mongostore.NewClient(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		appLogger.Fatal("Failed to create Mongo client", zap.Error(err))
	}
	defer mongoClient.Close(context.Background())

	if err := mongoClient.EnsureIndexes(context.Background()); err != nil {
		appLogger.Fatal("Failed to ensure Mongo indexes", zap.Error(err))
	}

	userRepo := mongostore.NewUserRepo(mongoClient)
	messageRepo := mongostore.NewMessageRepo(mongoClient)
	documentRepo := mongostore.NewDocumentRepo(mongoClient)

	auditLog, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer auditLog.Close()

	if err := auditLog.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize audit schema", zap.Error(err))
	}

	milvusClient, err := milvus.NewClient(cfg.Vector.Endpoint, cfg.Vector.CollectionName, cfg.Vector.Dimension)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	if err := milvusClient.EnsureCollection(context.Background()); err != nil {
		appLogger.Fatal("Failed to ensure vector collection", zap.Error(err))
	}

	var embeddingCache chat.EmbeddingCache
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLHours)*time.Hour,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		embeddingCache = redisClient
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.Vector.Dimension,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	catalog, err := knowledge.LoadCatalog(cfg.Knowledge.CatalogPath)
	if err != nil {
		appLogger.Fatal("Failed to load knowledge catalog", zap.Error(err))
	}
	appLogger.Info("Knowledge catalog loaded", zap.Int("entries", catalog.Len()))

	resolver := knowledge.NewResolver(catalog, documentRepo)
	admin := knowledge.NewAdmin(llmClient, milvusClient, documentRepo, cfg.Vector.Namespace)
	matcher := vector.NewMatcher(milvusClient, cfg.Vector.Dimension, catalog.Contains)
	history := chat.NewHistoryAssembler(messageRepo, cfg.Chat.IncludeRoles)
	composer := chat.NewPromptComposer(cfg.Chat.Persona, cfg.Chat.MaxAnswerWords)

	engine := chat.NewEngine(
		llmClient,
		matcher,
		resolver,
		history,
		composer,
		llmClient,
		messageRepo,
		auditLog,
		embeddingCache,
		chat.Options{
			Namespace:        cfg.Vector.Namespace,
			TopK:             cfg.Vector.TopK,
			MaxHistoryTurns:  cfg.Chat.MaxHistoryTurns,
			MaxHistoryTokens: cfg.Chat.MaxHistoryTokens,
			FallbackAnswer:   cfg.Chat.FallbackAnswer,
		},
	)

	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenExpirySec, cfg.Auth.BcryptCost)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(engine, messageRepo)
	knowledgeHandler := handlers.NewKnowledgeHandler(admin)
	adminHandler := handlers.NewAdminHandler(auditLog)

	app.Post("/auth/register", authHandler.Register)
	app.Post("/auth/token", authHandler.Token)

	app.Post("/process", middleware.RequireAuth(authService), chatHandler.Process)
	app.Get("/user/messages", middleware.RequireAuth(authService), chatHandler.Messages)
	app.Get("/user/last_messages", middleware.RequireAuth(authService), chatHandler.LastMessages)
	app.Get("/user/last_messages/:n", middleware.RequireAuth(authService), chatHandler.LastMessages)

	app.Post("/admin/documents", middleware.RequireAuth(authService), knowledgeHandler.AddDocument)
	app.Delete("/admin/documents/:id", middleware.RequireAuth(authService), knowledgeHandler.RemoveDocument)
	app.Get("/admin/exchanges/:username", middleware.RequireAuth(authService), adminHandler.RecentExchanges)

	app.Get("/metrics", metrics.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
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
