package httpadapter

import (
	"math"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
)

// SanitizedOpportunity is the wire shape of a matched opportunity. Internal
// retrieval fields (lexical vectors, reasoning text) stay server-side.
type SanitizedOpportunity struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Type         string  `json:"type"`
	Organization string  `json:"organization,omitempty"`
	Location     string  `json:"location"`
	Description  string  `json:"description,omitempty"`
	URL          string  `json:"url,omitempty"`
	Source       string  `json:"source"`
	DatePosted   string  `json:"datePosted,omitempty"`
	Verified     bool    `json:"verified"`
	Score        float64 `json:"score"`
}

func sanitizeCandidates(candidates []domain.ScoredCandidate) []SanitizedOpportunity {
	out := make([]SanitizedOpportunity, 0, len(candidates))
	for _, c := range candidates {
		score := c.FinalScore
		if score == 0 && !c.SemanticScored {
			score = c.LexicalScore
		}
		out = append(out, SanitizedOpportunity{
			ID:           c.Opportunity.ID,
			Title:        c.Opportunity.Title,
			Type:         string(c.Opportunity.Type),
			Organization: c.Opportunity.Organization,
			Location:     c.Opportunity.Location,
			Description:  c.Opportunity.Description,
			URL:          c.Opportunity.URL,
			Source:       c.Opportunity.Source,
			DatePosted:   c.Opportunity.DatePosted,
			Verified:     c.Opportunity.Verified,
			Score:        roundScore(score),
		})
	}
	return out
}

func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}
