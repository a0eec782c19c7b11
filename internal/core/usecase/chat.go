package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
	"github.com/youthguide/opportunity-assistant/internal/core/ports"
)

type ChatConfig struct {
	RerankEnabled bool

	StageOneTopK    int
	MinLexicalScore float64

	// GoodMatchThreshold drops the whole candidate set when every semantic
	// score falls below it: better to say nothing suitable was found than to
	// recommend weak matches. Tunable because that tradeoff is a product
	// decision, not a constant.
	GoodMatchThreshold int

	PipelineTimeout time.Duration
	IntentTimeout   time.Duration
	ComposeTimeout  time.Duration
}

func (c ChatConfig) normalize() ChatConfig {
	if c.StageOneTopK <= 0 {
		c.StageOneTopK = defaultRetrievalTopK
	}
	if c.GoodMatchThreshold <= 0 {
		c.GoodMatchThreshold = 65
	}
	if c.PipelineTimeout <= 0 {
		c.PipelineTimeout = 8 * time.Second
	}
	if c.IntentTimeout <= 0 {
		c.IntentTimeout = 10 * time.Second
	}
	if c.ComposeTimeout <= 0 {
		c.ComposeTimeout = 30 * time.Second
	}
	return c
}

// ChatUseCase sequences the pipeline: intent detection, lexical retrieval,
// semantic reranking, intent scoping, final composition, persistence. Every
// model-facing stage has a documented fail-safe; only the final completion
// call's failure surfaces to the caller.
type ChatUseCase struct {
	retriever *LexicalRetriever
	reranker  *SemanticReranker
	scoper    *IntentScoper
	memory    *ConversationMemory
	store     ports.ConversationStore
	llm       ports.CompletionService
	cfg       ChatConfig
	record    StageRecorder
	logger    *slog.Logger
}

func NewChatUseCase(
	retriever *LexicalRetriever,
	reranker *SemanticReranker,
	scoper *IntentScoper,
	memory *ConversationMemory,
	store ports.ConversationStore,
	llm ports.CompletionService,
	cfg ChatConfig,
	record StageRecorder,
	logger *slog.Logger,
) *ChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatUseCase{
		retriever: retriever,
		reranker:  reranker,
		scoper:    scoper,
		memory:    memory,
		store:     store,
		llm:       llm,
		cfg:       cfg.normalize(),
		record:    record,
		logger:    logger,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("message is required"))
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = domain.NewConversationID()
	}

	var matches []domain.ScoredCandidate
	var stats domain.RetrievalStats
	if uc.wantsOpportunities(ctx, message) {
		matches, stats = uc.retrieveMatches(ctx, message, req.Profile)
	}

	history := uc.memory.History(ctx, conversationID)

	composeCtx, cancel := context.WithTimeout(ctx, uc.cfg.ComposeTimeout)
	defer cancel()
	response, err := uc.llm.GenerateFromPrompt(composeCtx, buildChatPrompt(message, req.Profile, history, matches))
	if err != nil {
		// No safe default text exists here, so this is the one model failure
		// that surfaces to the user.
		return nil, domain.WrapError(domain.ErrUpstreamModel, "compose response", err)
	}
	response = strings.TrimSpace(response)

	uc.persistExchange(ctx, conversationID, message, response, matches)

	return &domain.ChatResult{
		Response:       response,
		Matches:        matches,
		ConversationID: conversationID,
		Retrieval:      stats,
	}, nil
}

// wantsOpportunities classifies whether the utterance requests opportunities
// at all. On any failure it defaults to false: skipping retrieval is the
// safer and cheaper mistake.
func (uc *ChatUseCase) wantsOpportunities(ctx context.Context, message string) bool {
	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.IntentTimeout)
	defer cancel()

	raw, err := uc.llm.GenerateFromPrompt(callCtx, buildIntentDetectPrompt(message))
	if err != nil {
		uc.record.degraded(stageIntentDetect)
		uc.logger.Warn("intent_detect_degraded", "error", err)
		return false
	}
	return parseYesNo(raw, false)
}

func (uc *ChatUseCase) retrieveMatches(ctx context.Context, message string, profile *domain.UserProfile) ([]domain.ScoredCandidate, domain.RetrievalStats) {
	start := time.Now()
	pipelineCtx, cancel := context.WithTimeout(ctx, uc.cfg.PipelineTimeout)
	defer cancel()

	candidates, err := uc.retriever.Search(pipelineCtx, message, domain.SearchOptions{
		Profile:  profile,
		TopK:     uc.cfg.StageOneTopK,
		MinScore: uc.cfg.MinLexicalScore,
	})
	if err != nil {
		uc.record.degraded(stageRetrieval)
		uc.logger.Warn("lexical_retrieval_failed", "error", err)
		return nil, domain.RetrievalStats{LatencyMs: time.Since(start).Milliseconds()}
	}

	if uc.cfg.RerankEnabled && uc.reranker != nil && len(candidates) > 0 {
		reranked, err := uc.reranker.Rerank(pipelineCtx, message, profile, candidates)
		if err != nil {
			// Whole-stage failure degrades to lexical-only ranking.
			uc.record.degraded(stageRerank)
			uc.logger.Warn("rerank_degraded", "error", err)
			if len(candidates) > uc.rerankTopK() {
				candidates = candidates[:uc.rerankTopK()]
			}
		} else {
			candidates = reranked
		}
	} else if len(candidates) > uc.rerankTopK() {
		candidates = candidates[:uc.rerankTopK()]
	}

	if uc.allBelowGoodMatch(candidates) {
		uc.logger.Info("weak_matches_discarded",
			"count", len(candidates),
			"threshold", uc.cfg.GoodMatchThreshold,
		)
		candidates = nil
	}

	if len(candidates) > 0 {
		candidates = uc.scoper.Scope(pipelineCtx, message, candidates)
	}

	return candidates, domain.RetrievalStats{
		LatencyMs:      time.Since(start).Milliseconds(),
		CandidateCount: len(candidates),
	}
}

func (uc *ChatUseCase) rerankTopK() int {
	if uc.reranker != nil && uc.reranker.cfg.TopK > 0 {
		return uc.reranker.cfg.TopK
	}
	return defaultRerankTopK
}

// allBelowGoodMatch reports whether every candidate carries a semantic score
// under the threshold. Unscored candidates (lexical-only fallback) are never
// discarded on semantic grounds.
func (uc *ChatUseCase) allBelowGoodMatch(candidates []domain.ScoredCandidate) bool {
	if len(candidates) == 0 {
		return false
	}
	for _, c := range candidates {
		if !c.SemanticScored || c.SemanticScore >= uc.cfg.GoodMatchThreshold {
			return false
		}
	}
	return true
}

// persistExchange records the turn pair after the response is generated,
// never before. A persistence failure is logged and swallowed: response
// delivery takes priority over durability.
func (uc *ChatUseCase) persistExchange(ctx context.Context, conversationID, message, response string, matches []domain.ScoredCandidate) {
	if _, err := uc.store.EnsureConversation(ctx, conversationID); err != nil {
		uc.record.degraded(stagePersist)
		uc.logger.Warn("conversation_persist_failed", "conversation_id", conversationID, "error", err)
		return
	}

	opportunityIDs := make([]string, 0, len(matches))
	for _, c := range matches {
		opportunityIDs = append(opportunityIDs, c.Opportunity.ID)
	}

	now := time.Now().UTC()
	userTurn := domain.ConversationTurn{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           domain.RoleUser,
		Content:        message,
		CreatedAt:      now,
	}
	assistantTurn := domain.ConversationTurn{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Content:        response,
		OpportunityIDs: opportunityIDs,
		CreatedAt:      now,
	}
	if err := uc.store.AppendExchange(ctx, userTurn, assistantTurn); err != nil {
		uc.record.degraded(stagePersist)
		uc.logger.Warn("turn_persist_failed", "conversation_id", conversationID, "error", err)
	}
}
