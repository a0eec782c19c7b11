package domain

import (
	"strings"
	"time"
)

type OpportunityType string

const (
	TypeJob         OpportunityType = "Job"
	TypeTraining    OpportunityType = "Training"
	TypeInternship  OpportunityType = "Internship"
	TypeScholarship OpportunityType = "Scholarship"
)

// typeKeywords maps lowercase trigger words to the opportunity type they
// signal. Ordering of checks matters: an "internship programme" is an
// internship, not a training.
var internshipKeywords = []string{"internship", "intern", "learnership"}
var scholarshipKeywords = []string{"scholarship", "bursary", "grant"}
var trainingKeywords = []string{"training", "course", "workshop", "program", "programme", "certification"}
var jobKeywords = []string{"job", "jobs", "vacancy", "vacancies", "work", "employment"}

// InferOpportunityType guesses a record's type from free text. Records from
// the ingestion pipeline occasionally arrive without an explicit type.
func InferOpportunityType(text string) OpportunityType {
	lower := strings.ToLower(text)
	containsAny := func(words []string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
	switch {
	case containsAny(internshipKeywords):
		return TypeInternship
	case containsAny(scholarshipKeywords):
		return TypeScholarship
	case containsAny(trainingKeywords):
		return TypeTraining
	default:
		return TypeJob
	}
}

// KeywordType reports which opportunity type a single query token refers to.
// Used by the lexical retriever's type-alignment boost.
func KeywordType(token string) (OpportunityType, bool) {
	for _, w := range internshipKeywords {
		if token == w {
			return TypeInternship, true
		}
	}
	for _, w := range scholarshipKeywords {
		if token == w {
			return TypeScholarship, true
		}
	}
	for _, w := range trainingKeywords {
		if token == w {
			return TypeTraining, true
		}
	}
	for _, w := range jobKeywords {
		if token == w {
			return TypeJob, true
		}
	}
	return "", false
}

// Opportunity is one curated catalog record. Records are immutable per load;
// the whole catalog is replaced on cache expiry.
type Opportunity struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	Title        string          `json:"title"`
	Type         OpportunityType `json:"type"`
	Organization string          `json:"organization"`
	Location     string          `json:"location"`
	Description  string          `json:"description"`
	URL          string          `json:"url"`
	DatePosted   string          `json:"date_posted"`
	Verified     bool            `json:"verified"`
}

// PostedAt parses the catalog's YYYY-MM-DD posting date.
func (o Opportunity) PostedAt() (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(o.DatePosted))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SearchText concatenates the searchable fields. Attributes the caller is
// already filtering on are excluded so a shared attribute value cannot
// saturate every remaining candidate's score.
func (o Opportunity) SearchText(excludeType, excludeLocation bool) string {
	parts := make([]string, 0, 6)
	parts = append(parts, o.Title, o.Description, o.Organization)
	if !excludeLocation {
		parts = append(parts, o.Location)
	}
	if !excludeType {
		parts = append(parts, string(o.Type))
	}
	parts = append(parts, o.Source)
	return strings.Join(parts, " ")
}

// Catalog is an immutable snapshot of the opportunity file.
type Catalog struct {
	LastUpdated   string        `json:"last_updated"`
	TotalCount    int           `json:"total_count"`
	Sources       []string      `json:"sources"`
	Opportunities []Opportunity `json:"opportunities"`

	SourceName string    `json:"-"`
	LoadedAt   time.Time `json:"-"`
}
