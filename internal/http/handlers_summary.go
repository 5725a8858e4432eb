package http

import (
	"net/http"

	"hauskasse/internal/core"
	"hauskasse/internal/log"
)

type summaryResponse struct {
	Currency                string     `json:"currency"`
	ApprovedTotalMaPiClaims core.Money `json:"approved_total_mapi_claims"`
	ApprovedTotalMilaClaims core.Money `json:"approved_total_mila_claims"`
	NetBalanceForMila       core.Money `json:"net_balance_for_mila"`
	PendingTotalMilaClaims  core.Money `json:"pending_total_mila_claims"`
	PendingCountMilaClaims  int64      `json:"pending_count_mila_claims"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		Currency:                s.Currency,
		ApprovedTotalMaPiClaims: s.ApprovedTotalMaPiClaims,
		ApprovedTotalMilaClaims: s.ApprovedTotalMilaClaims,
		NetBalanceForMila:       s.NetBalanceForMila,
		PendingTotalMilaClaims:  s.PendingTotalMilaClaims,
		PendingCountMilaClaims:  s.PendingCountMilaClaims,
	}
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.summaryCache.Get(summaryCacheKey); ok {
		writeJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}

	summary, err := s.summaries.Summarize(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	s.summaryCache.Set(summaryCacheKey, summary)
	log.FromContext(r.Context()).Debug("Summary cache refreshed")

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}
