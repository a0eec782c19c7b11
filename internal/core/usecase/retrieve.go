package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
	"github.com/youthguide/opportunity-assistant/internal/core/ports"
)

const (
	defaultRetrievalTopK = 20

	boostLocationMatch  = 0.3
	boostProfileTerm    = 0.2
	boostPreferredType  = 0.15
	boostPostedWeek     = 0.10
	boostPostedMonth    = 0.05
	boostTypeAligned    = 2.0
	boostGeneralJobWord = 1.3
)

// LexicalRetriever is stage one of the pipeline: TF-IDF cosine scoring over
// the in-memory catalog with deterministic preference and type-alignment
// boosts. Given a fixed catalog, profile and query its output order is fully
// reproducible.
type LexicalRetriever struct {
	catalog ports.CatalogSource
	now     func() time.Time
}

func NewLexicalRetriever(catalog ports.CatalogSource) *LexicalRetriever {
	return &LexicalRetriever{
		catalog: catalog,
		now:     time.Now,
	}
}

func (r *LexicalRetriever) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ScoredCandidate, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	catalog, err := r.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	filtered := filterOpportunities(catalog.Opportunities, opts)
	if len(filtered) == 0 {
		return nil, nil
	}

	excludeType := opts.Type != ""
	excludeLocation := strings.TrimSpace(opts.Location) != ""

	docs := make([][]string, len(filtered))
	for i, opp := range filtered {
		docs[i] = tokenize(opp.SearchText(excludeType, excludeLocation))
	}

	idf := inverseDocumentFrequency(queryTokens, docs)
	queryVec := tfidfVector(queryTokens, idf)

	topK := opts.TopK
	if topK <= 0 {
		topK = defaultRetrievalTopK
	}

	now := r.now()
	out := make([]domain.ScoredCandidate, 0, len(filtered))
	for i, opp := range filtered {
		cos := cosineSimilarity(queryVec, tfidfVector(docs[i], idf))
		if cos == 0 {
			continue
		}
		score := cos *
			preferenceBoost(opp, opts.Profile, now) *
			typeAlignmentBoost(queryTokens, opp.Type)
		if score < opts.MinScore {
			continue
		}
		out = append(out, domain.ScoredCandidate{
			Opportunity:  opp,
			LexicalScore: score,
			FinalScore:   score,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LexicalScore != out[j].LexicalScore {
			return out[i].LexicalScore > out[j].LexicalScore
		}
		return out[i].Opportunity.ID < out[j].Opportunity.ID
	})

	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func filterOpportunities(opportunities []domain.Opportunity, opts domain.SearchOptions) []domain.Opportunity {
	location := strings.ToLower(strings.TrimSpace(opts.Location))
	out := make([]domain.Opportunity, 0, len(opportunities))
	for _, opp := range opportunities {
		if opts.Type != "" && !strings.EqualFold(string(opp.Type), string(opts.Type)) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(opp.Location), location) {
			continue
		}
		out = append(out, opp)
	}
	return out
}

// preferenceBoost starts at 1.0 and grows with every profile signal present
// in the opportunity. The skill/interest contribution is intentionally
// unbounded: a profile matching on five terms should outrank one matching on
// two.
func preferenceBoost(opp domain.Opportunity, profile *domain.UserProfile, now time.Time) float64 {
	boost := 1.0
	if profile != nil {
		oppText := strings.ToLower(opp.SearchText(false, false))
		if loc := strings.ToLower(strings.TrimSpace(profile.Location)); loc != "" &&
			strings.Contains(strings.ToLower(opp.Location), loc) {
			boost += boostLocationMatch
		}
		for _, term := range append(append([]string{}, profile.Skills...), profile.Interests...) {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" && strings.Contains(oppText, term) {
				boost += boostProfileTerm
			}
		}
		if profile.PrefersType(opp.Type) {
			boost += boostPreferredType
		}
	}
	if posted, ok := opp.PostedAt(); ok {
		age := now.Sub(posted)
		switch {
		case age < 7*24*time.Hour:
			boost += boostPostedWeek
		case age < 30*24*time.Hour:
			boost += boostPostedMonth
		}
	}
	return boost
}

// typeAlignmentBoost doubles the score when the query names the candidate's
// specific category. The generic "job" vocabulary gets a smaller multiplier
// since it matches most of the catalog.
func typeAlignmentBoost(queryTokens []string, oppType domain.OpportunityType) float64 {
	boost := 1.0
	for _, token := range queryTokens {
		kwType, ok := domain.KeywordType(token)
		if !ok || kwType != oppType {
			continue
		}
		if kwType == domain.TypeJob {
			if boost < boostGeneralJobWord {
				boost = boostGeneralJobWord
			}
			continue
		}
		return boostTypeAligned
	}
	return boost
}

// tokenize lowercases, splits on non-alphanumeric runes, and drops tokens of
// length <= 2.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, 16)
	var b strings.Builder
	runes := 0
	// Tokens of one or two characters are noise; count runes, not bytes, so
	// accented words are measured the same as plain ASCII.
	flush := func() {
		if runes > 2 {
			tokens = append(tokens, b.String())
		}
		b.Reset()
		runes = 0
	}
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			runes++
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// inverseDocumentFrequency computes smoothed IDF over the combined corpus of
// the query and every filtered document.
func inverseDocumentFrequency(queryTokens []string, docs [][]string) map[string]float64 {
	df := make(map[string]int)
	count := func(tokens []string) {
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	count(queryTokens)
	for _, doc := range docs {
		count(doc)
	}

	n := float64(len(docs) + 1)
	idf := make(map[string]float64, len(df))
	for term, freq := range df {
		idf[term] = math.Log(n/(1.0+float64(freq))) + 1.0
	}
	return idf
}

func tfidfVector(tokens []string, idf map[string]float64) map[string]float64 {
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	vec := make(map[string]float64, len(counts))
	total := float64(len(tokens))
	for term, c := range counts {
		vec[term] = (float64(c) / total) * idf[term]
	}
	return vec
}

func cosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for term, wa := range a {
		normA += wa * wa
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}
	if dot == 0 || normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
