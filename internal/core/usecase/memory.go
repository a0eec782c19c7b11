package usecase

import (
	"context"
	"log/slog"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
	"github.com/youthguide/opportunity-assistant/internal/core/ports"
)

const defaultTurnWindow = 5

// ConversationMemory fetches the short-term history window injected into the
// final prompt. A turn window of T yields up to 2T messages (user plus
// assistant per exchange) in chronological order.
type ConversationMemory struct {
	store   ports.ConversationStore
	enabled bool
	turns   int
	record  StageRecorder
	logger  *slog.Logger
}

func NewConversationMemory(store ports.ConversationStore, enabled bool, turns int, record StageRecorder, logger *slog.Logger) *ConversationMemory {
	if turns <= 0 {
		turns = defaultTurnWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationMemory{
		store:   store,
		enabled: enabled,
		turns:   turns,
		record:  record,
		logger:  logger,
	}
}

// History returns the recent window, or nil for fresh conversations, a
// disabled feature, or an unreachable store. A store failure degrades to an
// empty history so the conversation proceeds without memory.
func (m *ConversationMemory) History(ctx context.Context, conversationID string) []domain.ConversationTurn {
	if !m.enabled || conversationID == "" {
		return nil
	}
	turns, err := m.store.ListRecentTurns(ctx, conversationID, m.turns*2)
	if err != nil {
		m.record.degraded(stageHistory)
		m.logger.Warn("conversation_history_degraded", "conversation_id", conversationID, "error", err)
		return nil
	}
	return turns
}
