package domain

import "strings"

// UserProfile is supplied per request by the caller and never mutated here.
// It only influences ranking boosts and prompt context.
type UserProfile struct {
	Skills         []string          `json:"skills"`
	Interests      []string          `json:"interests"`
	Location       string            `json:"location"`
	EducationLevel string            `json:"educationLevel"`
	PreferredTypes []OpportunityType `json:"preferredTypes"`
}

func (p *UserProfile) PrefersType(t OpportunityType) bool {
	if p == nil {
		return false
	}
	for _, pt := range p.PreferredTypes {
		if strings.EqualFold(string(pt), string(t)) {
			return true
		}
	}
	return false
}

// Summary renders the profile for prompt injection. Empty fields are omitted.
func (p *UserProfile) Summary() string {
	if p == nil {
		return ""
	}
	lines := make([]string, 0, 5)
	if len(p.Skills) > 0 {
		lines = append(lines, "Skills: "+strings.Join(p.Skills, ", "))
	}
	if len(p.Interests) > 0 {
		lines = append(lines, "Interests: "+strings.Join(p.Interests, ", "))
	}
	if strings.TrimSpace(p.Location) != "" {
		lines = append(lines, "Location: "+p.Location)
	}
	if strings.TrimSpace(p.EducationLevel) != "" {
		lines = append(lines, "Education level: "+p.EducationLevel)
	}
	if len(p.PreferredTypes) > 0 {
		types := make([]string, 0, len(p.PreferredTypes))
		for _, t := range p.PreferredTypes {
			types = append(types, string(t))
		}
		lines = append(lines, "Preferred types: "+strings.Join(types, ", "))
	}
	return strings.Join(lines, "\n")
}
