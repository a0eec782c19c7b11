package domain

import "testing"

func TestInferOpportunityType(t *testing.T) {
	cases := map[string]OpportunityType{
		"Graduate Internship Programme":   TypeInternship,
		"Learnership at TransNamib":       TypeInternship,
		"NSFAF Bursary Applications Open": TypeScholarship,
		"Welding Certification Course":    TypeTraining,
		"Driver Vacancy in Windhoek":      TypeJob,
		"Office Administrator":            TypeJob,
	}
	for text, want := range cases {
		if got := InferOpportunityType(text); got != want {
			t.Fatalf("InferOpportunityType(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestKeywordType(t *testing.T) {
	if got, ok := KeywordType("bursary"); !ok || got != TypeScholarship {
		t.Fatalf("bursary -> %s ok=%v", got, ok)
	}
	if got, ok := KeywordType("learnership"); !ok || got != TypeInternship {
		t.Fatalf("learnership -> %s ok=%v", got, ok)
	}
	if got, ok := KeywordType("jobs"); !ok || got != TypeJob {
		t.Fatalf("jobs -> %s ok=%v", got, ok)
	}
	if _, ok := KeywordType("banana"); ok {
		t.Fatalf("banana should not map to a type")
	}
}

func TestPostedAt(t *testing.T) {
	if _, ok := (Opportunity{DatePosted: "2026-08-20"}).PostedAt(); !ok {
		t.Fatalf("valid date rejected")
	}
	if _, ok := (Opportunity{DatePosted: "soon"}).PostedAt(); ok {
		t.Fatalf("garbage date accepted")
	}
	if _, ok := (Opportunity{}).PostedAt(); ok {
		t.Fatalf("empty date accepted")
	}
}

func TestProfileNilReceivers(t *testing.T) {
	var p *UserProfile
	if p.PrefersType(TypeJob) {
		t.Fatalf("nil profile prefers a type")
	}
	if p.Summary() != "" {
		t.Fatalf("nil profile produced a summary")
	}
}
