package domain

// SearchOptions narrows and tunes one lexical retrieval call.
type SearchOptions struct {
	Type     OpportunityType
	Location string
	Profile  *UserProfile
	TopK     int
	MinScore float64
}

// ScoredCandidate wraps an Opportunity with per-stage scores. It lives only
// for the duration of one retrieval call and is never persisted.
type ScoredCandidate struct {
	Opportunity Opportunity

	LexicalScore      float64
	SemanticScore     int
	SemanticScored    bool
	SemanticReasoning string
	FinalScore        float64
}

// RetrievalStats describes one pipeline run (stages 1-3 only).
type RetrievalStats struct {
	LatencyMs      int64 `json:"latencyMs"`
	CandidateCount int   `json:"candidateCount"`
}
