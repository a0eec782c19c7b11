package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
)

type catalogFake struct {
	opportunities []domain.Opportunity
	err           error
}

func (f *catalogFake) Snapshot(context.Context) (*domain.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Catalog{
		TotalCount:    len(f.opportunities),
		Opportunities: f.opportunities,
	}, nil
}
func (f *catalogFake) Invalidate() {}

func (f *catalogFake) SelectSource(string) error { return nil }

func (f *catalogFake) ActiveSource() string { return "fixture" }

func testCatalog() *catalogFake {
	return &catalogFake{opportunities: []domain.Opportunity{
		{
			ID:           "opp-1",
			Source:       "namibiajobs",
			Title:        "Software Developer",
			Type:         domain.TypeJob,
			Organization: "TechCo",
			Location:     "Windhoek, Namibia",
			Description:  "Build web applications with Python and JavaScript.",
		},
		{
			ID:           "opp-2",
			Source:       "youthportal",
			Title:        "Plumbing Training Programme",
			Type:         domain.TypeTraining,
			Organization: "Vocational Institute",
			Location:     "Walvis Bay, Namibia",
			Description:  "Hands-on plumbing certification for beginners.",
		},
		{
			ID:           "opp-3",
			Source:       "unam",
			Title:        "Engineering Scholarship",
			Type:         domain.TypeScholarship,
			Organization: "University of Namibia",
			Location:     "Windhoek, Namibia",
			Description:  "Full scholarship for engineering students.",
		},
	}}
}

func fixedNowRetriever(catalog *catalogFake) *LexicalRetriever {
	r := NewLexicalRetriever(catalog)
	r.now = func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestLexicalRetrieverEmptyQuery(t *testing.T) {
	r := fixedNowRetriever(testCatalog())
	got, err := r.Search(context.Background(), "   ", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result for empty query, got %d candidates", len(got))
	}
}

func TestLexicalRetrieverCatalogError(t *testing.T) {
	r := fixedNowRetriever(&catalogFake{err: errors.New("file gone")})
	_, err := r.Search(context.Background(), "developer", domain.SearchOptions{})
	if err == nil {
		t.Fatalf("expected error when catalog cannot load")
	}
}

func TestLexicalRetrieverDeterministicOrder(t *testing.T) {
	catalog := testCatalog()
	query := "software developer python windhoek"
	opts := domain.SearchOptions{Profile: &domain.UserProfile{Skills: []string{"python"}}}

	first, err := fixedNowRetriever(catalog).Search(context.Background(), query, opts)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(first) == 0 {
		t.Fatalf("expected candidates")
	}
	for i := 0; i < 5; i++ {
		again, err := fixedNowRetriever(catalog).Search(context.Background(), query, opts)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d returned a different result set", i)
		}
	}
}

func TestLexicalRetrieverTypeFilterExcludesOthers(t *testing.T) {
	r := fixedNowRetriever(testCatalog())
	got, err := r.Search(context.Background(), "programme training", domain.SearchOptions{Type: domain.TypeTraining})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, c := range got {
		if c.Opportunity.Type != domain.TypeTraining {
			t.Fatalf("type filter leaked %s record %s", c.Opportunity.Type, c.Opportunity.ID)
		}
	}
}

func TestLexicalRetrieverLocationFilterSubstring(t *testing.T) {
	r := fixedNowRetriever(testCatalog())
	got, err := r.Search(context.Background(), "scholarship engineering", domain.SearchOptions{Location: "windhoek"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("expected windhoek candidates")
	}
	for _, c := range got {
		if c.Opportunity.ID == "opp-2" {
			t.Fatalf("walvis bay record passed the windhoek filter")
		}
	}
}

func TestPreferenceBoostGrowsWithProfileSignals(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	opp := domain.Opportunity{
		ID:          "opp-1",
		Title:       "Software Developer",
		Type:        domain.TypeJob,
		Location:    "Windhoek, Namibia",
		Description: "Python development role",
	}

	base := preferenceBoost(opp, nil, now)
	if base != 1.0 {
		t.Fatalf("expected neutral boost without profile, got %f", base)
	}

	withLocation := preferenceBoost(opp, &domain.UserProfile{Location: "Windhoek"}, now)
	if withLocation <= base {
		t.Fatalf("location match did not raise boost: %f", withLocation)
	}

	withSkills := preferenceBoost(opp, &domain.UserProfile{
		Location: "Windhoek",
		Skills:   []string{"python", "developer"},
	}, now)
	if withSkills <= withLocation {
		t.Fatalf("skill matches did not raise boost further: %f", withSkills)
	}
}

func TestPreferenceBoostRecency(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	fresh := domain.Opportunity{DatePosted: "2026-08-18"}
	recent := domain.Opportunity{DatePosted: "2026-08-01"}
	old := domain.Opportunity{DatePosted: "2026-01-01"}

	if got := preferenceBoost(fresh, nil, now); got != 1.0+boostPostedWeek {
		t.Fatalf("fresh posting boost = %f", got)
	}
	if got := preferenceBoost(recent, nil, now); got != 1.0+boostPostedMonth {
		t.Fatalf("recent posting boost = %f", got)
	}
	if got := preferenceBoost(old, nil, now); got != 1.0 {
		t.Fatalf("old posting boost = %f", got)
	}
}

func TestTypeAlignmentBoost(t *testing.T) {
	specific := typeAlignmentBoost(tokenize("scholarship for engineering"), domain.TypeScholarship)
	if specific != boostTypeAligned {
		t.Fatalf("specific keyword boost = %f, want %f", specific, boostTypeAligned)
	}

	generic := typeAlignmentBoost(tokenize("any jobs available"), domain.TypeJob)
	if generic != boostGeneralJobWord {
		t.Fatalf("generic job word boost = %f, want %f", generic, boostGeneralJobWord)
	}

	mismatch := typeAlignmentBoost(tokenize("scholarship please"), domain.TypeJob)
	if mismatch != 1.0 {
		t.Fatalf("mismatched keyword boost = %f, want 1.0", mismatch)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Software-Developer, Windhoek! at TechCo 2026")
	want := []string{"software", "developer", "windhoek", "techco", "2026"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenize() = %v, want %v", got, want)
	}
	if tokens := tokenize("a an of"); len(tokens) != 0 {
		t.Fatalf("short tokens not dropped: %v", tokens)
	}
}

func TestTokenizeCountsRunesNotBytes(t *testing.T) {
	// "éç" is two runes but four bytes; it must still be dropped as short.
	got := tokenize("éç über helloworld")
	want := []string{"über", "helloworld"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenize() = %v, want %v", got, want)
	}
}

func TestSearchTextExcludesFilteredAttributes(t *testing.T) {
	opp := domain.Opportunity{
		Title:    "Developer",
		Type:     domain.TypeJob,
		Location: "Windhoek",
		Source:   "portal",
	}
	full := opp.SearchText(false, false)
	if !strings.Contains(full, "Windhoek") || !strings.Contains(full, "Job") {
		t.Fatalf("full search text missing fields: %q", full)
	}
	trimmed := opp.SearchText(true, true)
	if strings.Contains(trimmed, "Windhoek") || strings.Contains(trimmed, "Job") {
		t.Fatalf("filtered attributes still searchable: %q", trimmed)
	}
}
