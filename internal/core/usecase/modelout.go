package usecase

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Model replies are the one genuinely non-deterministic input in the
// pipeline. Every parser in this file follows the same ladder: strict JSON
// first, then a best-effort extraction from raw text, then a documented
// sentinel. None of them ever return an error.

// scorePayload is the contract for per-candidate match scoring.
type scorePayload struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// parseScorePayload parses a 0-100 match score. When the reply is not valid
// JSON it falls back to the first integer found in the text with an empty
// reasoning. The second return value is false only when no score could be
// recovered at all.
func parseScorePayload(raw string) (scorePayload, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return scorePayload{}, false
	}

	var payload scorePayload
	if err := json.Unmarshal([]byte(extractJSONObject(trimmed)), &payload); err == nil {
		payload.Score = clampScore(payload.Score)
		return payload, true
	}

	if n, ok := firstInteger(trimmed); ok {
		return scorePayload{Score: clampScore(n)}, true
	}
	return scorePayload{}, false
}

type selectionKind int

const (
	selectAll selectionKind = iota
	selectNone
	selectSubset
)

type selection struct {
	kind    selectionKind
	indices []int
}

// parseSelection interprets an intent-scoping reply: exactly "ALL", "NONE",
// or a comma-separated list of 1-based indices within [1, max]. Anything
// else fails open to ALL so a malformed model reply can never silently drop
// every result.
func parseSelection(raw string, max int) selection {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	trimmed = strings.Trim(trimmed, `"'.`)
	switch trimmed {
	case "ALL":
		return selection{kind: selectAll}
	case "NONE":
		return selection{kind: selectNone}
	}

	parts := strings.Split(trimmed, ",")
	indices := make([]int, 0, len(parts))
	seen := make(map[int]struct{}, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > max {
			return selection{kind: selectAll}
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		indices = append(indices, n)
	}
	if len(indices) == 0 {
		return selection{kind: selectAll}
	}
	return selection{kind: selectSubset, indices: indices}
}

// parseYesNo interprets a binary classification reply. The fallback default
// is the caller's safe choice.
func parseYesNo(raw string, fallback bool) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	trimmed = strings.Trim(trimmed, `"'.`)
	switch {
	case strings.HasPrefix(trimmed, "YES"):
		return true
	case strings.HasPrefix(trimmed, "NO"):
		return false
	default:
		return fallback
	}
}

// extractJSONObject trims any prose wrapped around the outermost JSON object.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func firstInteger(raw string) (int, bool) {
	start := -1
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(raw[start:i])
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(raw[start:])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
