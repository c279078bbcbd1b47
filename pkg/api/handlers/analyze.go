package handlers

import (
	"log/slog"
	"net/http"

	"mercator-hq/feedback/pkg/api"
	"mercator-hq/feedback/pkg/api/types"
)

// CacheHeader reports whether the result came from the cache.
const CacheHeader = "X-Cache"

// AnalyzeHandler handles POST /api/analyze.
type AnalyzeHandler struct {
	analyzer Analyzer
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(analyzer Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

// ServeHTTP implements http.Handler.
//
// Request:
//
//	{"text": "Great product, love it!"}
//
// Response:
//
//	{
//	    "success": true,
//	    "id": "0b9e...",
//	    "sentiment": "positive",
//	    "score": 9,
//	    "suggestions": ["Keep it up"],
//	    "summary": "Very satisfied customer"
//	}
//
// A failed or unparseable model reply still returns 200, with the neutral
// fallback result.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := requireAccount(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	var req types.AnalyzeRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	outcome, err := h.analyzer.Analyze(ctx, account, req.Text)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	if outcome.CacheHit {
		w.Header().Set(CacheHeader, "HIT")
	} else {
		w.Header().Set(CacheHeader, "MISS")
	}

	p := outcome.Payload
	suggestions := p.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	resp := types.AnalyzeResponse{
		Success:     true,
		ID:          outcome.RecordID,
		Sentiment:   p.Sentiment,
		Score:       p.Score,
		Suggestions: suggestions,
		Summary:     p.Summary,
	}

	if err := api.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
