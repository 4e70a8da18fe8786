package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeforge/internal/domain"
	models "codeforge/internal/domain/models/builder"
	"codeforge/internal/domain/repositories"
	builderRepo "codeforge/internal/domain/repositories/builder"
	"codeforge/internal/repository/postgres"
)

// PostgresSessionRepository implements the SessionRepository interface.
// The session row carries the tree and template context as JSONB; messages and
// steps are append-only child rows.
type PostgresSessionRepository struct {
	pool      *pgxpool.Pool
	tables    *postgres.TableNames
	txManager repositories.TransactionManager
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(config *postgres.RepositoryConfig) builderRepo.SessionRepository {
	return &PostgresSessionRepository{
		pool:      config.Pool,
		tables:    config.Tables,
		txManager: postgres.NewTransactionManager(config.Pool, config.Logger),
	}
}

// Create stores a new session with its messages and steps
func (r *PostgresSessionRepository) Create(ctx context.Context, session *models.Session) error {
	llmContext, tree, err := encodeDocuments(session)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.Version = 1
	session.CreatedAt = now
	session.UpdatedAt = now

	return r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		query := fmt.Sprintf(`
			INSERT INTO %s (id, prompt, template, llm_context, tree, batches, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, r.tables.Sessions)

		executor := postgres.GetExecutor(txCtx, r.pool)
		_, err := executor.Exec(txCtx, query,
			session.ID,
			session.Prompt,
			string(session.Template),
			llmContext,
			tree,
			session.Batches,
			session.Version,
			session.CreatedAt,
			session.UpdatedAt,
		)
		if err != nil {
			if postgres.IsPgDuplicateError(err) {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("session %s already exists", session.ID),
					ResourceType: "session",
					ResourceID:   session.ID,
				}
			}
			return fmt.Errorf("create session: %w", err)
		}

		if err := r.insertMessages(txCtx, session.ID, session.Messages, 0); err != nil {
			return err
		}
		return r.insertSteps(txCtx, session.ID, session.Steps, 0)
	})
}

// Get retrieves a session with its messages and steps
func (r *PostgresSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT id, prompt, template, llm_context, tree, batches, version, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Sessions)

	var (
		session    models.Session
		template   string
		llmContext []byte
		tree       []byte
	)
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.Prompt,
		&template,
		&llmContext,
		&tree,
		&session.Batches,
		&session.Version,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	session.Template = models.TemplateID(template)
	if err := json.Unmarshal(llmContext, &session.LLMContext); err != nil {
		return nil, fmt.Errorf("decode llm context: %w", err)
	}
	if err := json.Unmarshal(tree, &session.Tree); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}

	if session.Messages, err = r.listMessages(ctx, id); err != nil {
		return nil, err
	}
	if session.Steps, err = r.listSteps(ctx, id); err != nil {
		return nil, err
	}

	return &session, nil
}

// Update stores the session if nobody else has written it since it was read.
// Messages and steps past the stored ones are appended.
func (r *PostgresSessionRepository) Update(ctx context.Context, session *models.Session) error {
	llmContext, tree, err := encodeDocuments(session)
	if err != nil {
		return err
	}

	return r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		executor := postgres.GetExecutor(txCtx, r.pool)

		lock := fmt.Sprintf(`SELECT version, batches FROM %s WHERE id = $1 FOR UPDATE`, r.tables.Sessions)
		var storedVersion, storedBatches int
		if err := executor.QueryRow(txCtx, lock, session.ID).Scan(&storedVersion, &storedBatches); err != nil {
			if postgres.IsPgNoRowsError(err) {
				return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", session.ID)}
			}
			return fmt.Errorf("lock session: %w", err)
		}
		if storedVersion != session.Version {
			return domain.NewVersionConflict("session", session.ID, session.Version)
		}

		var storedMessages int
		count := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE session_id = $1`, r.tables.Messages)
		if err := executor.QueryRow(txCtx, count, session.ID).Scan(&storedMessages); err != nil {
			return fmt.Errorf("count messages: %w", err)
		}

		updatedAt := time.Now().UTC()
		update := fmt.Sprintf(`
			UPDATE %s
			SET llm_context = $2, tree = $3, batches = $4, version = version + 1, updated_at = $5
			WHERE id = $1
		`, r.tables.Sessions)
		if _, err := executor.Exec(txCtx, update, session.ID, llmContext, tree, session.Batches, updatedAt); err != nil {
			return fmt.Errorf("update session: %w", err)
		}

		if err := r.insertMessages(txCtx, session.ID, session.Messages, storedMessages); err != nil {
			return err
		}
		if err := r.insertSteps(txCtx, session.ID, session.Steps, storedBatches); err != nil {
			return err
		}

		session.Version = storedVersion + 1
		session.UpdatedAt = updatedAt
		return nil
	})
}

// insertMessages inserts messages[from:] at their positions
func (r *PostgresSessionRepository) insertMessages(ctx context.Context, sessionID string, messages []models.ChatMessage, from int) error {
	if from >= len(messages) {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (session_id, position, role, content, summary)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	for i := from; i < len(messages); i++ {
		msg := messages[i]
		if _, err := executor.Exec(ctx, query, sessionID, i, msg.Role, msg.Content, msg.Summary); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}
	return nil
}

// insertSteps inserts the steps of batches after afterBatch
func (r *PostgresSessionRepository) insertSteps(ctx context.Context, sessionID string, steps []models.SessionStep, afterBatch int) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (session_id, batch, sequence_index, kind, status, path, content, command, action_type, body, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.tables.Steps)

	executor := postgres.GetExecutor(ctx, r.pool)
	for _, s := range steps {
		if s.Batch <= afterBatch {
			continue
		}
		row := flattenStep(s.Step)
		_, err := executor.Exec(ctx, query,
			sessionID,
			s.Batch,
			s.Step.SequenceIndex,
			string(s.Step.Kind()),
			string(s.Step.Status),
			row.path,
			row.content,
			row.command,
			row.actionType,
			row.body,
			s.Step.Reason,
		)
		if err != nil {
			return fmt.Errorf("insert step %d/%d: %w", s.Batch, s.Step.SequenceIndex, err)
		}
	}
	return nil
}

func (r *PostgresSessionRepository) listMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	query := fmt.Sprintf(`
		SELECT role, content, summary
		FROM %s
		WHERE session_id = $1
		ORDER BY position
	`, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Summary); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (r *PostgresSessionRepository) listSteps(ctx context.Context, sessionID string) ([]models.SessionStep, error) {
	query := fmt.Sprintf(`
		SELECT batch, sequence_index, kind, status, path, content, command, action_type, body, reason
		FROM %s
		WHERE session_id = $1
		ORDER BY batch, sequence_index
	`, r.tables.Steps)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	steps := []models.SessionStep{}
	for rows.Next() {
		var (
			s            models.SessionStep
			kind, status string
			row          stepRow
		)
		err := rows.Scan(
			&s.Batch,
			&s.Step.SequenceIndex,
			&kind,
			&status,
			&row.path,
			&row.content,
			&row.command,
			&row.actionType,
			&row.body,
			&s.Step.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}

		action, err := models.NewAction(models.StepKind(kind), row.path, row.content, row.command, row.actionType, row.body)
		if err != nil {
			return nil, fmt.Errorf("decode step %d/%d: %w", s.Batch, s.Step.SequenceIndex, err)
		}
		s.Step.Action = action
		s.Step.Status = models.StepStatus(status)
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// stepRow is the column-wise form of a step's action
type stepRow struct {
	path, content, command, actionType, body string
}

func flattenStep(step models.BuildStep) stepRow {
	switch a := step.Action.(type) {
	case models.CreateFile:
		return stepRow{path: a.Path, content: a.Content}
	case models.CreateFolder:
		return stepRow{path: a.Path}
	case models.RunShellCommand:
		return stepRow{command: a.Command}
	case models.Unknown:
		return stepRow{actionType: a.Type, body: a.Body}
	default:
		return stepRow{}
	}
}

// encodeDocuments marshals the JSONB columns, never as null
func encodeDocuments(session *models.Session) (llmContext, tree string, err error) {
	contextPrompts := session.LLMContext
	if contextPrompts == nil {
		contextPrompts = []string{}
	}
	nodes := session.Tree
	if nodes == nil {
		nodes = []models.FileNode{}
	}

	contextJSON, err := json.Marshal(contextPrompts)
	if err != nil {
		return "", "", fmt.Errorf("encode llm context: %w", err)
	}
	treeJSON, err := json.Marshal(nodes)
	if err != nil {
		return "", "", fmt.Errorf("encode tree: %w", err)
	}
	return string(contextJSON), string(treeJSON), nil
}
