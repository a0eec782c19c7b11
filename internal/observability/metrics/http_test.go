package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecordDegradedStageExportsCounter(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.RecordDegradedStage("api", "rerank")
	m.RecordDegradedStage("api", "rerank")
	m.RecordDegradedStage("api", "persist")

	body := scrape(t, m)
	if !strings.Contains(body, `oa_chat_degraded_stage_total{service="api",stage="rerank"} 2`) {
		t.Fatalf("rerank counter missing from scrape:\n%s", body)
	}
	if !strings.Contains(body, `oa_chat_degraded_stage_total{service="api",stage="persist"} 1`) {
		t.Fatalf("persist counter missing from scrape:\n%s", body)
	}
}

func TestRecordChatObservationCountsNoMatch(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.RecordChatObservation("api", "ok", 0, 0)
	m.RecordChatObservation("api", "ok", 3, 0)

	body := scrape(t, m)
	if !strings.Contains(body, `oa_chat_no_match_total{service="api"} 1`) {
		t.Fatalf("no-match counter missing from scrape:\n%s", body)
	}
	if !strings.Contains(body, `oa_chat_requests_total{outcome="ok",service="api"} 2`) {
		t.Fatalf("request counter missing from scrape:\n%s", body)
	}
}

func scrape(t *testing.T, m *HTTPServerMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}
