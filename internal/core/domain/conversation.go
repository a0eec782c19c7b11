package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one append-only message of a conversation.
type ConversationTurn struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	OpportunityIDs []string  `json:"opportunity_ids,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation is the per-conversation summary row kept alongside the turns.
type Conversation struct {
	ConversationID       string    `json:"conversation_id"`
	LastUserMessage      string    `json:"last_user_message"`
	LastAssistantMessage string    `json:"last_assistant_message"`
	LastOpportunityCount int       `json:"last_opportunity_count"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewConversationID generates a fresh identifier in the
// conv_<timestamp>_<random> shape the UI collaborator expects.
func NewConversationID() string {
	return fmt.Sprintf("conv_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
