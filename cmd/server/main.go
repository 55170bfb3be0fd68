package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/config"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/database"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/handlers"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/knowledge"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/logging"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/middleware"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/nlp"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/services"
	"github.com/Team-TALIX/legalhelp-gh-api/pkg/auth"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting LegalHelp GH API...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Languages: %v)", cfg.Port, cfg.SupportedLanguages)

	// Knowledge base
	registry, err := knowledge.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load knowledge base: %v", err)
	}
	log.Printf("✅ Knowledge base loaded (%d topics)", len(registry.Topics()))

	// MongoDB (optional - the server falls back to an in-memory session
	// store so the chat API still works without a database)
	var mongoDB *database.MongoDB
	var repo services.SessionRepository
	var usageService *services.UsageService
	if cfg.MongoURI != "" {
		log.Println("🔗 Connecting to MongoDB...")
		mongoDB, err = database.NewMongoDB(cfg.MongoURI)
		if err != nil {
			log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
		}
		defer mongoDB.Close(context.Background())

		indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := mongoDB.Initialize(indexCtx); err != nil {
			cancel()
			log.Fatalf("❌ Failed to initialize database indexes: %v", err)
		}
		cancel()
		repo = services.NewMongoSessionRepository(mongoDB)
		usageService = services.NewUsageService(mongoDB)
		log.Println("✅ MongoDB connected successfully")
	} else {
		repo = services.NewMemorySessionRepository()
		log.Println("⚠️ MONGODB_URI not set - sessions will not survive a restart")
	}

	// Redis cache (optional - degrades to an in-process cache)
	var cacheBackend services.CacheBackend
	if cfg.RedisURL != "" {
		redisService, err := services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (using in-process cache)", err)
		} else {
			defer redisService.Close()
			cacheBackend = redisService
			log.Println("✅ Redis connected successfully")
		}
	}
	cacheStore := services.NewCacheStore(cacheBackend)
	sessionCache := services.NewSessionCache(cacheStore)

	// GhanaNLP provider
	nlpClient := nlp.NewClient(cfg.GhanaNLPBaseURL, cfg.GhanaNLPAPIKey, cfg.NLPTimeout, cfg.NLPRatePerSec)
	nlpService := nlp.NewService(nlpClient, cacheStore)

	// Chat orchestrator
	chatService := services.NewChatService(repo, sessionCache, registry, nlpService, usageService)

	// JWT auth (optional - without a secret everything runs anonymous)
	var jwtAuth *auth.JWTAuth
	if cfg.JWTSecret != "" {
		jwtAuth, err = auth.NewJWTAuth(cfg.JWTSecret, 24*time.Hour)
		if err != nil {
			log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
		}
		log.Println("✅ JWT auth initialized")
	} else {
		if cfg.Environment == "production" {
			log.Fatal("❌ JWT_SECRET is required in production")
		}
		log.Println("⚠️ JWT_SECRET not set - all requests run as anonymous")
	}

	app := fiber.New(fiber.Config{
		AppName:      "LegalHelp GH API v1.0",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    10 * 1024 * 1024, // audio uploads for speech-to-text
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("legalhelp")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowedOrigins != "*",
	}))

	app.Use("/api", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please slow down",
			})
		},
	}))

	// Handlers
	chatHandler := handlers.NewChatHandler(chatService, cfg.SupportedLanguages)
	nlpHandler := handlers.NewNLPHandler(nlpService)
	knowledgeHandler := handlers.NewKnowledgeHandler(registry)
	healthHandler := handlers.NewHealthHandler(mongoDB, cacheStore, nlpService)

	// Routes
	app.Get("/health", healthHandler.Health)

	api := app.Group("/api")

	chat := api.Group("/chat", middleware.OptionalAuth(jwtAuth))
	chat.Post("/session", chatHandler.CreateSession)
	chat.Get("/session/:sessionId", chatHandler.GetSession)
	chat.Post("/query", chatHandler.Query)
	chat.Get("/history/:sessionId", chatHandler.History)
	chat.Post("/feedback", chatHandler.Feedback)
	chat.Put("/session/:sessionId", chatHandler.UpdateSession)
	chat.Delete("/session/:sessionId", chatHandler.DeleteSession)
	chat.Get("/sessions", middleware.RequireAuth(jwtAuth), chatHandler.ListSessions)

	nlpRoutes := api.Group("/nlp")
	nlpRoutes.Post("/translate", nlpHandler.Translate)
	nlpRoutes.Post("/speech-to-text", nlpHandler.SpeechToText)
	nlpRoutes.Post("/text-to-speech", nlpHandler.TextToSpeech)
	nlpRoutes.Get("/languages", nlpHandler.Languages)
	nlpRoutes.Get("/speakers", nlpHandler.Speakers)

	knowledgeRoutes := api.Group("/knowledge")
	knowledgeRoutes.Get("/topics", knowledgeHandler.Topics)
	knowledgeRoutes.Get("/emergency-contacts", knowledgeHandler.EmergencyContacts)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
