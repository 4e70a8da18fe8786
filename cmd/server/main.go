package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"codeforge/internal/config"
	builderRepo "codeforge/internal/domain/repositories/builder"
	"codeforge/internal/handler"
	"codeforge/internal/metrics"
	"codeforge/internal/middleware"
	"codeforge/internal/repository/memory"
	"codeforge/internal/repository/postgres"
	postgresBuilder "codeforge/internal/repository/postgres/builder"
	"codeforge/internal/sandbox"
	"codeforge/internal/service/builder/chat"
	"codeforge/internal/service/builder/session"
	"codeforge/internal/service/builder/template"
	serviceLLM "codeforge/internal/service/llm"
	"codeforge/internal/templates"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	var logFile *os.File
	if cfg.LogDir != "" {
		f, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		logFile = f
		defer logFile.Close()
	}

	var logger *slog.Logger
	if logFile != nil {
		logger = config.NewLogger(cfg, logFile)
	} else {
		logger = config.NewLogger(cfg, nil)
	}
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session storage: postgres when DATABASE_URL is set, process memory otherwise
	var sessionRepo builderRepo.SessionRepository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("database connected", "sessions_table", tables.Sessions)

		sessionRepo = postgresBuilder.NewSessionRepository(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		})
	} else {
		logger.Warn("DATABASE_URL not set - sessions are kept in memory")
		sessionRepo = memory.NewSessionRepository()
	}

	generator, err := serviceLLM.SetupGenerator(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}

	registry, err := templates.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	logger.Info("template registry initialized", "templates", len(registry.List()))

	box, err := sandbox.NewLocal(sandbox.Options{
		Root:            cfg.SandboxDir,
		AllowedCommands: cfg.SandboxAllowedCmds,
		Timeout:         cfg.SandboxCommandTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create sandbox: %v", err)
	}
	logger.Info("sandbox ready",
		"dir", cfg.SandboxDir,
		"allowed_commands", cfg.SandboxAllowedCmds,
		"auto_run", cfg.SandboxAutoRun,
	)

	templateService := template.NewService(generator, registry, template.Options{
		Model:       cfg.ClassifyModel,
		MaxTokens:   cfg.ClassifyMaxTokens,
		Temperature: cfg.Temperature,
	}, logger)
	chatService := chat.NewService(generator, chat.Options{
		Model:        cfg.DefaultModel,
		MaxTokens:    cfg.ChatMaxTokens,
		Temperature:  cfg.Temperature,
		SystemPrompt: registry.Prompts().System,
	}, logger)
	sessionService := session.NewService(sessionRepo, templateService, chatService, box, session.Options{
		AutoRun: cfg.SandboxAutoRun,
	}, logger)
	defer sessionService.Close()

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.Register(mux, handler.Handlers{
		System:   handler.NewSystemHandler(),
		Legacy:   handler.NewLegacyHandler(templateService, chatService, box, logger),
		Catalog:  handler.NewCatalogHandler(registry, logger),
		Sessions: handler.NewSessionHandler(sessionService, logger),
	})

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestID → Logging → Recovery → Metrics → Routes
	var h http.Handler = mux
	h = metrics.Middleware(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 15 * time.Second,
		// Chat turns wait on the model; keep the write deadline above the provider timeout
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	<-shutdownDone
}
