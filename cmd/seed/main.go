package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"codeforge/internal/config"
	"codeforge/internal/domain"
	models "codeforge/internal/domain/models/builder"
	builderSvc "codeforge/internal/domain/services/builder"
	"codeforge/internal/repository/postgres"
	postgresBuilder "codeforge/internal/repository/postgres/builder"
	"codeforge/internal/service/builder/filetree"
	"codeforge/internal/service/builder/steps"
	"codeforge/internal/service/builder/template"
	"codeforge/internal/templates"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop the builder tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo sessions")
	clearData := flag.Bool("clear-data", false, "Delete all sessions (keep schema)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// Destructive operations are never allowed against production tables
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: --drop-tables and --clear-data are not allowed in the prod environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	logger.Info("seeding", "environment", cfg.Environment, "prefix", cfg.TablePrefix)

	if *dropTables {
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		logger.Info("tables dropped")
	}

	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready", "tables", tables.All())

	if *schemaOnly {
		return
	}

	if *clearData {
		n, err := clearSessions(ctx, pool, tables)
		if err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		logger.Info("sessions cleared", "count", n)
		return
	}

	registry, err := templates.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	// Bundle never calls the model, so no generator is needed
	bundles := template.NewService(nil, registry, template.Options{}, logger)

	repo := postgresBuilder.NewSessionRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	})

	for _, tmpl := range registry.List() {
		bundle, err := bundles.Bundle(tmpl.ID)
		if err != nil {
			log.Fatalf("Failed to build bundle for %s: %v", tmpl.ID, err)
		}

		session := demoSession(tmpl, bundle)
		err = repo.Create(ctx, session)
		var conflict *domain.ConflictError
		switch {
		case errors.As(err, &conflict):
			logger.Info("demo session exists", "session_id", session.ID)
		case err != nil:
			log.Fatalf("Failed to create %s: %v", session.ID, err)
		default:
			files, folders := filetree.Count(session.Tree)
			logger.Info("demo session created",
				"session_id", session.ID,
				"files", files,
				"folders", folders,
			)
		}
	}
}

// demoSession is a session holding only the template's seed batches
func demoSession(tmpl templates.Template, bundle *builderSvc.TemplateBundle) *models.Session {
	session := &models.Session{
		ID:         "demo-" + string(tmpl.ID),
		Prompt:     fmt.Sprintf("Start from the %s template", tmpl.DisplayName),
		Template:   tmpl.ID,
		LLMContext: bundle.Prompts,
		Messages:   []models.ChatMessage{},
		Steps:      []models.SessionStep{},
		Tree:       []models.FileNode{},
	}

	for _, doc := range bundle.UIPrompts {
		var applied []models.BuildStep
		session.Tree, applied = filetree.Apply(session.Tree, steps.Parse(doc))
		session.Batches++
		for _, step := range applied {
			session.Steps = append(session.Steps, models.SessionStep{Batch: session.Batches, Step: step})
		}
	}
	return session
}

// clearSessions deletes every session; messages and steps cascade
func clearSessions(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) (int64, error) {
	tag, err := pool.Exec(ctx, "DELETE FROM "+tables.Sessions)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
