package usecase

import "testing"

func TestParseScorePayloadJSON(t *testing.T) {
	payload, ok := parseScorePayload(`{"score": 87, "reasoning": "strong skill overlap"}`)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if payload.Score != 87 || payload.Reasoning != "strong skill overlap" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestParseScorePayloadJSONWithProse(t *testing.T) {
	payload, ok := parseScorePayload("Here is my assessment:\n{\"score\": 42, \"reasoning\": \"weak\"}\nHope that helps.")
	if !ok {
		t.Fatalf("expected parse success")
	}
	if payload.Score != 42 {
		t.Fatalf("score = %d, want 42", payload.Score)
	}
}

func TestParseScorePayloadFirstIntegerFallback(t *testing.T) {
	payload, ok := parseScorePayload("I would rate this 73 out of 100.")
	if !ok {
		t.Fatalf("expected fallback parse success")
	}
	if payload.Score != 73 {
		t.Fatalf("score = %d, want 73", payload.Score)
	}
	if payload.Reasoning != "" {
		t.Fatalf("fallback should not invent reasoning")
	}
}

func TestParseScorePayloadClamps(t *testing.T) {
	payload, ok := parseScorePayload(`{"score": 250}`)
	if !ok || payload.Score != 100 {
		t.Fatalf("expected clamp to 100, got %+v ok=%v", payload, ok)
	}
	payload, ok = parseScorePayload(`{"score": -5}`)
	if !ok || payload.Score != 0 {
		t.Fatalf("expected clamp to 0, got %+v ok=%v", payload, ok)
	}
}

func TestParseScorePayloadUnrecoverable(t *testing.T) {
	if _, ok := parseScorePayload(""); ok {
		t.Fatalf("empty reply should not parse")
	}
	if _, ok := parseScorePayload("no numbers here at all"); ok {
		t.Fatalf("numberless reply should not parse")
	}
}

func TestParseSelection(t *testing.T) {
	if sel := parseSelection("ALL", 5); sel.kind != selectAll {
		t.Fatalf("ALL not recognized")
	}
	if sel := parseSelection(" none. ", 5); sel.kind != selectNone {
		t.Fatalf("NONE not recognized")
	}

	sel := parseSelection("1, 3, 3", 5)
	if sel.kind != selectSubset {
		t.Fatalf("subset not recognized")
	}
	if len(sel.indices) != 2 || sel.indices[0] != 1 || sel.indices[1] != 3 {
		t.Fatalf("indices = %v, want deduplicated [1 3]", sel.indices)
	}
}

func TestParseSelectionFailsOpen(t *testing.T) {
	cases := []string{"", "1,99", "0", "maybe 2", "1;2", "-1"}
	for _, raw := range cases {
		if sel := parseSelection(raw, 5); sel.kind != selectAll {
			t.Fatalf("parseSelection(%q) did not fail open", raw)
		}
	}
}

func TestParseYesNo(t *testing.T) {
	if !parseYesNo("YES", false) {
		t.Fatalf("YES not recognized")
	}
	if !parseYesNo("yes, definitely", false) {
		t.Fatalf("prefixed yes not recognized")
	}
	if parseYesNo("No.", true) {
		t.Fatalf("NO not recognized")
	}
	if parseYesNo("unsure", true) != true {
		t.Fatalf("fallback not honored")
	}
	if parseYesNo("unsure", false) != false {
		t.Fatalf("fallback not honored")
	}
}
