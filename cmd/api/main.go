package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	pkgvalidator "github.com/johnquangdev/call-insights/pkg/validator"

	"github.com/johnquangdev/call-insights/internal/adapter/handler"
	"github.com/johnquangdev/call-insights/internal/adapter/repository"
	"github.com/johnquangdev/call-insights/internal/domain/repositories"
	"github.com/johnquangdev/call-insights/internal/infrastructure/cache"
	"github.com/johnquangdev/call-insights/internal/infrastructure/database"
	"github.com/johnquangdev/call-insights/internal/infrastructure/events"
	"github.com/johnquangdev/call-insights/internal/infrastructure/external/assemblyai"
	"github.com/johnquangdev/call-insights/internal/infrastructure/external/awsclient"
	"github.com/johnquangdev/call-insights/internal/infrastructure/external/bedrock"
	"github.com/johnquangdev/call-insights/internal/infrastructure/external/openai"
	"github.com/johnquangdev/call-insights/internal/infrastructure/external/transcribe"
	"github.com/johnquangdev/call-insights/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-insights/internal/infrastructure/storage"
	"github.com/johnquangdev/call-insights/internal/usecase/assistant"
	"github.com/johnquangdev/call-insights/internal/usecase/knowledge"
	"github.com/johnquangdev/call-insights/internal/usecase/relay"
	"github.com/johnquangdev/call-insights/internal/usecase/transcription"
	"github.com/johnquangdev/call-insights/pkg/config"
	"github.com/johnquangdev/call-insights/pkg/logger"
)

const contextCacheSweep = time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	m := metrics.DefaultMetrics

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	log.Println("☁️  Loading AWS configuration...")
	awsCfg, err := awsclient.LoadConfig(startupCtx, &cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}

	// Initialize object storage
	log.Println("📦 Connecting to object storage...")
	store, err := storage.NewMinIOClient(&cfg.Storage, &cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}
	if err := store.CheckBucket(startupCtx); err != nil {
		zlog.Warn("⚠️ Storage bucket check failed", zap.String("bucket", store.Bucket()), zap.Error(err))
	}

	// Initialize generation model
	log.Println("🤖 Initializing generation model...")
	var model repositories.GenerationModel
	switch cfg.Generation.Provider {
	case config.ProviderOpenAI:
		model = openai.NewChatModel(&cfg.Generation)
	default:
		model = bedrock.NewTitanModelFromConfig(awsCfg, cfg.Generation.BedrockModelID)
	}
	zlog.Info("✅ Generation model ready", zap.String("provider", cfg.Generation.Provider))

	contextCache := cache.NewMemoryStore(contextCacheSweep)
	defer contextCache.Close()

	assistantService := assistant.NewService(store, model, contextCache, assistant.Config{
		Bucket:          cfg.Storage.BucketName,
		KnowledgePrefix: cfg.Storage.KnowledgePrefix,
		Params: repositories.GenerationParams{
			MaxTokens:     cfg.Generation.MaxTokens,
			Temperature:   cfg.Generation.Temperature,
			TopP:          cfg.Generation.TopP,
			StopSequences: []string{},
		},
		Timeout:         cfg.Generation.Timeout,
		ContextCacheTTL: cfg.Generation.ContextCacheTTL,
	}, zlog.Named("assistant"), m)

	knowledgeService := knowledge.NewService(store, assistantService, knowledge.Config{
		Bucket:           cfg.Storage.BucketName,
		KnowledgePrefix:  cfg.Storage.KnowledgePrefix,
		RecordingsPrefix: cfg.Storage.RecordingsPrefix,
		PresignExpiry:    cfg.Storage.PresignExpiry,
	}, zlog.Named("knowledge"))

	// Initialize batch transcription
	log.Println("📝 Initializing batch transcription...")
	transcriptionService := transcription.NewService(store, assemblyai.NewTranscriber(&cfg.Assembly, zlog.Named("assemblyai")), transcription.Config{
		Bucket:        cfg.Storage.BucketName,
		PresignExpiry: cfg.Storage.PresignExpiry,
		JobTimeout:    cfg.Assembly.JobTimeout,
	}, zlog.Named("transcription"))

	// Initialize conversation store backend
	log.Printf("💾 Initializing %s conversation store...", cfg.Conversation.Store)
	backends := repository.ConversationBackends{AWS: &awsCfg}
	switch cfg.Conversation.Store {
	case config.StoreRedis:
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		backends.Redis = redisClient
	case config.StorePostgres:
		db := openDatabase(cfg)
		defer database.CloseDB(db)
		backends.DB = db
	}
	conversations, err := repository.NewConversationRepository(&cfg.Conversation, backends, m)
	if err != nil {
		log.Fatalf("Failed to initialize conversation store: %v", err)
	}

	publisher := events.NewPublisher(&cfg.Kafka, zlog.Named("events"))
	defer publisher.Close()

	// Initialize streaming relay
	log.Println("🎙️  Initializing streaming relay...")
	presigner := transcribe.NewPresigner(awsCfg.Credentials, cfg.AWS.Region, &cfg.Transcribe)
	streamRelay := relay.NewRelay(
		transcribe.NewClient(presigner, zlog.Named("transcribe")),
		assistantService,
		conversations,
		publisher,
		relay.Config{SaveTimeout: cfg.Conversation.SaveTimeout},
		zlog.Named("relay"),
		m,
	)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(
		cfg,
		handler.NewKnowledgeHandler(knowledgeService, zlog),
		handler.NewChatHandler(assistantService, zlog),
		handler.NewTranscriptionHandler(transcriptionService, zlog),
		handler.NewStreamHandler(streamRelay, cfg.Server.AllowedOrigins, zlog),
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	// Hijacked WebSocket connections outlive e.Shutdown
	if err := streamRelay.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Streaming relay did not drain before timeout: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

// openDatabase connects to Postgres and applies schema per configuration
func openDatabase(cfg *config.Config) *gorm.DB {
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; run cmd/migrate for schema migrations")
	}
	return db
}
