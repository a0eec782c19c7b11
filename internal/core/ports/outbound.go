package ports

import (
	"context"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
)

// CatalogSource serves immutable catalog snapshots with a time-boxed cache
// and a switchable backing source.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*domain.Catalog, error)
	Invalidate()
	SelectSource(name string) error
	ActiveSource() string
}

// CompletionService is the external LLM boundary. JSON-mode generation is
// used wherever the reply must be machine-parseable.
type CompletionService interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
	GenerateJSONFromPrompt(ctx context.Context, prompt string) (string, error)
}

// ConversationStore persists conversation summaries and append-only turns.
type ConversationStore interface {
	EnsureConversation(ctx context.Context, conversationID string) (*domain.Conversation, error)
	AppendExchange(ctx context.Context, userTurn, assistantTurn domain.ConversationTurn) error
	// ListRecentTurns returns up to limit most recent turns in chronological order.
	ListRecentTurns(ctx context.Context, conversationID string, limit int) ([]domain.ConversationTurn, error)
}

// CatalogEvents propagates catalog invalidation between processes.
type CatalogEvents interface {
	PublishCatalogUpdated(ctx context.Context, source string) error
	SubscribeCatalogUpdated(ctx context.Context, handler func(ctx context.Context, source string) error) error
}
