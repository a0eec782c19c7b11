package ports

import (
	"context"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
)

// ChatService is the inbound contract for one conversational exchange.
type ChatService interface {
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error)
}

// OpportunitySearcher is the inbound contract for direct lexical search.
type OpportunitySearcher interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ScoredCandidate, error)
}
