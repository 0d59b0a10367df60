package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"quarry/internal/assets"
	"quarry/internal/auth"
	"quarry/internal/config"
	identityRepo "quarry/internal/domain/repositories/identity"
	"quarry/internal/handler"
	"quarry/internal/middleware"
	"quarry/internal/repository/postgres"
	postgresAssets "quarry/internal/repository/postgres/assets"
	postgresChat "quarry/internal/repository/postgres/chat"
	postgresIdentity "quarry/internal/repository/postgres/identity"
	"quarry/internal/repository/redisstore"
	serviceChat "quarry/internal/service/chat"
	"quarry/internal/service/sharing"
	"quarry/internal/tasks"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	// In debug mode logs also go to a timestamped file under logs/.
	var logOutput io.Writer = os.Stdout
	if cfg.Debug {
		logFile, err := config.SetupLogFile("logs", 10)
		if err != nil {
			log.Printf("warning: file logging disabled: %v", err)
		} else {
			defer logFile.Close()
			logOutput = io.MultiWriter(os.Stdout, logFile)
		}
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	chatRepo := postgresChat.NewChatRepository(repoConfig)
	messageRepo := postgresChat.NewMessageRepository(repoConfig)
	assetRepo := postgresAssets.NewAssetRepository(repoConfig)
	userRepo := postgresIdentity.NewUserRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Shortcut tracking is best effort; without Redis it is a no-op.
	var shortcutRecorder identityRepo.ShortcutRecorder = noopShortcutRecorder{}
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		shortcutRecorder = redisstore.NewShortcutRecorder(redis.NewClient(redisOpts), logger)
		logger.Info("shortcut tracking enabled")
	}

	// Background task runtime.
	var submitter tasks.Submitter = tasks.NewNopSubmitter(logger)
	temporalClient, err := tasks.NewClient(cfg.TemporalAddress, cfg.TemporalNamespace, logger)
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}
	if temporalClient != nil {
		defer temporalClient.Close()
		submitter = tasks.NewTemporalSubmitter(temporalClient, cfg.TemporalTaskQueue, logger)
	}

	// Asset import pipeline.
	assetRegistry, err := assets.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load asset type registry: %v", err)
	}
	generator := assets.NewMessageGenerator(assetRepo, assetRegistry, logger)

	accessChecker := sharing.NewPermissionChecker(repoConfig)

	// Chat services.
	lifecycle := serviceChat.NewMessageLifecycle(messageRepo, logger)
	creator := serviceChat.NewChatCreatorService(chatRepo, messageRepo, txManager, logger)
	resumer := serviceChat.NewExistingChatResumer(chatRepo, messageRepo, accessChecker, lifecycle, logger)
	initializer := serviceChat.NewChatInitializer(creator, resumer)
	importer := serviceChat.NewAssetImporter(generator, chatRepo, messageRepo, logger)
	chatService := serviceChat.NewChatOrchestrator(
		initializer,
		importer,
		lifecycle,
		chatRepo,
		messageRepo,
		userRepo,
		shortcutRecorder,
		accessChecker,
		submitter,
		logger,
	)

	chatHandler := handler.NewChatHandler(chatService, userRepo, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", chatHandler.HealthCheck)

	mux.HandleFunc("POST /api/chats", chatHandler.CreateChat)
	mux.HandleFunc("GET /api/chats/{id}", chatHandler.GetChat)
	mux.HandleFunc("PATCH /api/chats/{id}", chatHandler.UpdateChat)
	mux.HandleFunc("DELETE /api/chats/{id}/messages/{message_id}", chatHandler.RedoFromMessage)

	// Middleware wrap order: CORS -> Recovery -> Auth -> Routes.
	var httpHandler http.Handler = mux
	httpHandler = middleware.Auth(jwtVerifier)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}

// noopShortcutRecorder satisfies the recorder interface when Redis is
// not configured.
type noopShortcutRecorder struct{}

func (noopShortcutRecorder) RecordLastUsed(context.Context, string, []string) error { return nil }
