package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/youthguide/opportunity-assistant/internal/config"
	"github.com/youthguide/opportunity-assistant/internal/core/domain"
	"github.com/youthguide/opportunity-assistant/internal/core/ports"
	"github.com/youthguide/opportunity-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	chat     ports.ChatService
	searcher ports.OpportunitySearcher
	catalog  ports.CatalogSource
	metrics  *metrics.HTTPServerMetrics
	cfg      config.Config
}

func NewRouter(
	chat ports.ChatService,
	searcher ports.OpportunitySearcher,
	catalog ports.CatalogSource,
	m *metrics.HTTPServerMetrics,
	cfg config.Config,
) *Router {
	return &Router{
		chat:     chat,
		searcher: searcher,
		catalog:  catalog,
		metrics:  m,
		cfg:      cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.handleChat)
	mux.HandleFunc("/v1/opportunities", rt.handleSearch)
	mux.HandleFunc("/v1/catalog/stats", rt.handleCatalogStats)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.cfg.APIMaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 100*time.Millisecond)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Message        string              `json:"message"`
	ConversationID string              `json:"conversationId"`
	Context        *domain.UserProfile `json:"context"`
}

type chatResponse struct {
	Response       string                 `json:"response"`
	Opportunities  []SanitizedOpportunity `json:"opportunities"`
	ConversationID string                 `json:"conversationId"`
	Retrieval      domain.RetrievalStats  `json:"retrieval"`
}

func (rt *Router) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	result, err := rt.chat.Chat(r.Context(), domain.ChatRequest{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		Profile:        req.Context,
	})
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordChatObservation(serviceName, "error", 0, 0)
		}
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{
			"error": userFacingError(err),
		})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChatObservation(
			serviceName,
			"ok",
			len(result.Matches),
			time.Duration(result.Retrieval.LatencyMs)*time.Millisecond,
		)
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Response:       result.Response,
		Opportunities:  sanitizeCandidates(result.Matches),
		ConversationID: result.ConversationID,
		Retrieval:      result.Retrieval,
	})
}

func (rt *Router) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'q' is required"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	candidates, err := rt.searcher.Search(r.Context(), query, domain.SearchOptions{
		Type:     domain.OpportunityType(r.URL.Query().Get("type")),
		Location: r.URL.Query().Get("location"),
		TopK:     limit,
	})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": userFacingError(err)})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": sanitizeCandidates(candidates),
		"count":         len(candidates),
	})
}

func (rt *Router) handleCatalogStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	catalog, err := rt.catalog.Snapshot(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": userFacingError(err)})
		return
	}

	perSource := make(map[string]int)
	for _, opp := range catalog.Opportunities {
		perSource[opp.Source]++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lastUpdated":  catalog.LastUpdated,
		"totalCount":   catalog.TotalCount,
		"sources":      catalog.Sources,
		"perSource":    perSource,
		"activeSource": rt.catalog.ActiveSource(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
