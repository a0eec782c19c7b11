package jsonfile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
)

// The scrapers normalize records before writing the catalog file, but older
// catalog snapshots and hand-maintained fixtures do not always carry every
// field. The loader applies the same defaults the ingestion side uses.

const defaultLocation = "Namibia"

var cityAbbreviations = []struct{ abbr, city string }{
	{"whk", "Windhoek"},
	{"wdh", "Windhoek"},
	{"swk", "Swakopmund"},
	{"wal", "Walvis Bay"},
	{"osh", "Oshakati"},
	{"run", "Rundu"},
	{"kat", "Katima Mulilo"},
}

func normalizeOpportunity(opp domain.Opportunity) (domain.Opportunity, bool) {
	opp.Title = strings.TrimSpace(opp.Title)
	opp.Source = strings.TrimSpace(opp.Source)
	if opp.Title == "" || opp.Source == "" {
		return domain.Opportunity{}, false
	}

	opp.Organization = strings.TrimSpace(opp.Organization)
	opp.Description = strings.TrimSpace(opp.Description)
	opp.Location = formatLocation(opp.Location)
	if opp.Type == "" {
		opp.Type = domain.InferOpportunityType(opp.Title + " " + opp.Description)
	}
	if opp.ID == "" {
		opp.ID = generateID(opp.Title, opp.Source, opp.URL)
	}
	return opp, true
}

// generateID derives the stable hash id the ingestion pipeline would have
// assigned: first 16 hex characters of SHA-256 over source, title and url.
func generateID(title, source, url string) string {
	unique := strings.ToLower(fmt.Sprintf("%s_%s_%s", source, title, url))
	sum := sha256.Sum256([]byte(unique))
	return hex.EncodeToString(sum[:])[:16]
}

func formatLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return defaultLocation
	}
	lower := strings.ToLower(location)
	for _, entry := range cityAbbreviations {
		if strings.Contains(lower, entry.abbr) {
			return entry.city
		}
	}
	return location
}
