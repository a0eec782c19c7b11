package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
	"github.com/youthguide/opportunity-assistant/internal/core/ports"
)

const defaultScopeCallTimeout = 15 * time.Second

// IntentScoper is stage three: a single model call deciding whether the user
// wants everything retrieved, nothing (they asked for an absent category), or
// a specific subset. It catches the synonyms and misspellings lexical
// matching cannot ("funding" for scholarships, "scholerships").
type IntentScoper struct {
	llm     ports.CompletionService
	timeout time.Duration
	record  StageRecorder
	logger  *slog.Logger
}

func NewIntentScoper(llm ports.CompletionService, timeout time.Duration, record StageRecorder, logger *slog.Logger) *IntentScoper {
	if timeout <= 0 {
		timeout = defaultScopeCallTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IntentScoper{llm: llm, timeout: timeout, record: record, logger: logger}
}

// Scope returns a subset of candidates; it never invents entries and never
// fails. An unreachable model or an unparseable reply fails open to the full
// input set.
func (s *IntentScoper) Scope(ctx context.Context, message string, candidates []domain.ScoredCandidate) []domain.ScoredCandidate {
	if len(candidates) == 0 {
		return candidates
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llm.GenerateFromPrompt(callCtx, buildScopePrompt(message, candidates))
	if err != nil {
		s.record.degraded(stageScope)
		s.logger.Warn("intent_scope_degraded", "reason", "completion_failed", "error", err)
		return candidates
	}

	switch sel := parseSelection(raw, len(candidates)); sel.kind {
	case selectNone:
		return nil
	case selectSubset:
		keep := make(map[int]struct{}, len(sel.indices))
		for _, idx := range sel.indices {
			keep[idx-1] = struct{}{}
		}
		out := make([]domain.ScoredCandidate, 0, len(keep))
		for i, c := range candidates {
			if _, ok := keep[i]; ok {
				out = append(out, c)
			}
		}
		return out
	default:
		return candidates
	}
}
