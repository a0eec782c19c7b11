package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
	"github.com/youthguide/opportunity-assistant/internal/core/ports"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

var _ ports.ConversationStore = (*ConversationRepository)(nil)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ConversationRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent api startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS conversations (
	conversation_id TEXT PRIMARY KEY,
	last_user_message TEXT NOT NULL DEFAULT '',
	last_assistant_message TEXT NOT NULL DEFAULT '',
	last_opportunity_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_turns (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	opportunity_ids JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversation_turns_recent
	ON conversation_turns(conversation_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ConversationRepository) EnsureConversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversations (conversation_id, created_at, updated_at)
VALUES ($1, $2, $2)
ON CONFLICT (conversation_id) DO NOTHING
`, conversationID, now)
	if err != nil {
		return nil, fmt.Errorf("ensure conversation insert: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
SELECT conversation_id, last_user_message, last_assistant_message, last_opportunity_count, created_at, updated_at
FROM conversations
WHERE conversation_id = $1
`, conversationID)

	var conv domain.Conversation
	if err := row.Scan(
		&conv.ConversationID,
		&conv.LastUserMessage,
		&conv.LastAssistantMessage,
		&conv.LastOpportunityCount,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("ensure conversation select: %w", err)
	}
	return &conv, nil
}

// AppendExchange stores a user/assistant turn pair and refreshes the summary
// row in one transaction. Turns are append-only.
func (r *ConversationRepository) AppendExchange(ctx context.Context, userTurn, assistantTurn domain.ConversationTurn) error {
	if userTurn.ConversationID == "" || userTurn.ConversationID != assistantTurn.ConversationID {
		return fmt.Errorf("append exchange: turns must share one conversation id")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin exchange tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, turn := range []domain.ConversationTurn{userTurn, assistantTurn} {
		if turn.CreatedAt.IsZero() {
			turn.CreatedAt = time.Now().UTC()
		}
		ids, err := json.Marshal(nonNil(turn.OpportunityIDs))
		if err != nil {
			return fmt.Errorf("marshal opportunity ids: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO conversation_turns (id, conversation_id, role, content, opportunity_ids, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, turn.ID, turn.ConversationID, turn.Role, turn.Content, ids, turn.CreatedAt); err != nil {
			return fmt.Errorf("insert %s turn: %w", turn.Role, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE conversations
SET last_user_message = $2,
	last_assistant_message = $3,
	last_opportunity_count = $4,
	updated_at = $5
WHERE conversation_id = $1
`, userTurn.ConversationID, userTurn.Content, assistantTurn.Content, len(assistantTurn.OpportunityIDs), time.Now().UTC()); err != nil {
		return fmt.Errorf("update conversation summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit exchange tx: %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListRecentTurns(ctx context.Context, conversationID string, limit int) ([]domain.ConversationTurn, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, conversation_id, role, content, opportunity_ids, created_at
FROM conversation_turns
WHERE conversation_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent turns: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ConversationTurn, 0, limit)
	for rows.Next() {
		var turn domain.ConversationTurn
		var rawIDs []byte
		if err := rows.Scan(
			&turn.ID,
			&turn.ConversationID,
			&turn.Role,
			&turn.Content,
			&rawIDs,
			&turn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if len(rawIDs) > 0 {
			if err := json.Unmarshal(rawIDs, &turn.OpportunityIDs); err != nil {
				return nil, fmt.Errorf("decode opportunity ids: %w", err)
			}
		}
		out = append(out, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	// SQL returns newest-first; reverse to chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
