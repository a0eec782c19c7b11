package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
)

const assistantSystemPrompt = `You are an assistant helping young people in Namibia find jobs, training,
internships and scholarships from a curated catalog.
Be warm, concise and practical. Only mention opportunities listed in the
current message; never invent opportunities, organizations or links.
If no opportunities are listed, say honestly that nothing suitable was found
right now and suggest how the user could refine their request.`

func buildIntentDetectPrompt(message string) string {
	return fmt.Sprintf(`Decide whether the user is asking to find or browse opportunities
(jobs, training, internships, scholarships, funding, learnerships).
Greetings, thanks, follow-up questions about an earlier answer, and general
chit-chat are NOT opportunity requests.
Reply with exactly YES or NO.

User message:
%s`, message)
}

func buildMatchScorePrompt(query string, profile *domain.UserProfile, opp domain.Opportunity) string {
	profileBlock := profile.Summary()
	if profileBlock == "" {
		profileBlock = "(no profile provided)"
	}
	return fmt.Sprintf(`You are scoring how well one opportunity matches a user's request.
Return ONLY a JSON object: {"score": <integer 0-100>, "reasoning": "<one short sentence>"}

Weigh these factors:
- skill match (30%%): user's skills appear in the requirements or description
- query relevance (30%%): the opportunity answers what was actually asked
- interest alignment (15%%): overlaps with the user's stated interests
- location fit (15%%): same town/region or explicitly remote
- type match (10%%): job vs training vs internship vs scholarship as requested

Score bands:
90-100 excellent match, 75-89 strong, 55-74 reasonable, 40-54 weak, 0-39 poor.

User request:
%s

User profile:
%s

Opportunity:
Title: %s
Type: %s
Organization: %s
Location: %s
Description: %s`,
		query,
		profileBlock,
		opp.Title,
		opp.Type,
		opp.Organization,
		opp.Location,
		truncate(opp.Description, 1500),
	)
}

func buildScopePrompt(message string, candidates []domain.ScoredCandidate) string {
	var list strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&list, "%d. %s | %s | %s | %s\n",
			i+1, c.Opportunity.Title, c.Opportunity.Type, c.Opportunity.Organization, c.Opportunity.Location)
	}
	return fmt.Sprintf(`The user sent a request and we retrieved the numbered opportunities below.
Decide whether the request is general or targets a specific category.

Rules:
- If the request is general ("what's available?", "anything for me?"), reply ALL.
- If it targets a specific category and some listed items belong to it, reply
  with the comma-separated numbers of ONLY those items (example: 1,3).
- If it targets a specific category and NO listed item belongs to it, reply NONE.
- Treat misspellings and synonyms as matches: "scholerships"/"funding"/"bursary"
  mean Scholarship, "learnership" means Internship, "course"/"workshop" mean
  Training.
Reply with exactly ALL, NONE, or the comma-separated numbers. No other text.

User request:
%s

Opportunities:
%s`, message, list.String())
}

func buildChatPrompt(message string, profile *domain.UserProfile, history []domain.ConversationTurn, matches []domain.ScoredCandidate) string {
	var b strings.Builder
	b.WriteString(assistantSystemPrompt)
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}

	if summary := profile.Summary(); summary != "" {
		b.WriteString("User profile:\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	if len(matches) == 0 {
		b.WriteString("Retrieved opportunities: none\n\n")
	} else {
		b.WriteString("Retrieved opportunities:\n")
		for i, c := range matches {
			fmt.Fprintf(&b, "%d. %s (%s) - %s, %s\n   %s\n",
				i+1,
				c.Opportunity.Title,
				c.Opportunity.Type,
				c.Opportunity.Organization,
				c.Opportunity.Location,
				truncate(c.Opportunity.Description, 400),
			)
		}
		b.WriteString("\n")
	}

	b.WriteString("User message:\n")
	b.WriteString(message)
	return b.String()
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
