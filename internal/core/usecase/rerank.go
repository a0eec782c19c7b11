package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
	"github.com/youthguide/opportunity-assistant/internal/core/ports"
)

const (
	defaultRerankTopK        = 5
	defaultMinSemanticScore  = 30
	defaultRerankConcurrency = 8
	defaultScoreCallTimeout  = 20 * time.Second

	semanticExponent = 1.1
	semanticWeight   = 0.75
	lexicalWeight    = 0.25
)

type RerankConfig struct {
	TopK             int
	MinSemanticScore int
	Concurrency      int
	ScoreCallTimeout time.Duration
}

func (c RerankConfig) normalize() RerankConfig {
	if c.TopK <= 0 {
		c.TopK = defaultRerankTopK
	}
	if c.MinSemanticScore <= 0 {
		c.MinSemanticScore = defaultMinSemanticScore
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultRerankConcurrency
	}
	if c.ScoreCallTimeout <= 0 {
		c.ScoreCallTimeout = defaultScoreCallTimeout
	}
	return c
}

// SemanticReranker is stage two: each lexical candidate is scored 0-100 by
// the completion service against an explicit rubric, then the lexical and
// semantic signals are blended. Per-candidate calls are independent and run
// on a bounded worker pool; results are joined back in candidate order.
type SemanticReranker struct {
	llm    ports.CompletionService
	pool   *ants.Pool
	cfg    RerankConfig
	logger *slog.Logger
}

func NewSemanticReranker(llm ports.CompletionService, cfg RerankConfig, logger *slog.Logger) (*SemanticReranker, error) {
	cfg = cfg.normalize()
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := ants.NewPool(cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("create rerank pool: %w", err)
	}
	return &SemanticReranker{
		llm:    llm,
		pool:   pool,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (r *SemanticReranker) Close() {
	r.pool.Release()
}

// Rerank returns a subset of candidates re-sorted by blended score. An error
// is returned only when not a single candidate could be scored; the caller
// then falls back to lexical-only ranking.
func (r *SemanticReranker) Rerank(ctx context.Context, query string, profile *domain.UserProfile, candidates []domain.ScoredCandidate) ([]domain.ScoredCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	// Indexed result slots keep candidate order independent of completion
	// order.
	scored := make([]domain.ScoredCandidate, len(candidates))
	var wg sync.WaitGroup
	for i := range candidates {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			scored[i] = r.scoreCandidate(ctx, query, profile, candidates[i])
		}
		if err := r.pool.Submit(task); err != nil {
			// Pool rejected the task; score inline rather than losing the
			// candidate.
			task()
		}
	}
	wg.Wait()

	out := make([]domain.ScoredCandidate, 0, len(scored))
	anyScored := false
	for _, c := range scored {
		if !c.SemanticScored {
			continue
		}
		anyScored = true
		if c.SemanticScore < r.cfg.MinSemanticScore {
			continue
		}
		out = append(out, c)
	}
	if !anyScored {
		return nil, fmt.Errorf("semantic scoring failed for all %d candidates", len(candidates))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		return out[i].Opportunity.ID < out[j].Opportunity.ID
	})
	if len(out) > r.cfg.TopK {
		out = out[:r.cfg.TopK]
	}
	return out, nil
}

func (r *SemanticReranker) scoreCandidate(ctx context.Context, query string, profile *domain.UserProfile, candidate domain.ScoredCandidate) domain.ScoredCandidate {
	if ctx.Err() != nil {
		// Request deadline reached; keep whatever scores completed and skip
		// the rest.
		return candidate
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.ScoreCallTimeout)
	defer cancel()

	raw, err := r.llm.GenerateJSONFromPrompt(callCtx, buildMatchScorePrompt(query, profile, candidate.Opportunity))
	if err != nil {
		r.logger.Warn("candidate_score_failed",
			"opportunity_id", candidate.Opportunity.ID,
			"error", err,
		)
		return candidate
	}

	payload, ok := parseScorePayload(raw)
	if !ok {
		r.logger.Warn("candidate_score_unparseable", "opportunity_id", candidate.Opportunity.ID)
		return candidate
	}

	candidate.SemanticScore = payload.Score
	candidate.SemanticScored = true
	candidate.SemanticReasoning = payload.Reasoning
	candidate.FinalScore = blendScores(payload.Score, candidate.LexicalScore)
	return candidate
}

// blendScores rewards high semantic scores super-linearly so a truly
// excellent match dominates a mediocre lexical coincidence. The result is
// normalized back to roughly [0, 1.2].
func blendScores(semantic int, lexical float64) float64 {
	return (math.Pow(float64(semantic), semanticExponent)*semanticWeight + lexical*lexicalWeight) / 100.0
}
