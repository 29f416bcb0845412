package http

import (
	"net/http"
)

// handleSummary returns the monthly aggregation: totals, savings,
// spend percentages and the per-category breakdown.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.finance.MonthlySummary(r.Context(), userIDFrom(r.Context()), year, month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSummaryJSON(summary))
}

// handleDashboard returns the home-screen payload: the month summary
// plus the all-time balance and the latest movements.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dashboard, err := s.finance.Dashboard(r.Context(), userIDFrom(r.Context()), year, month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDashboardJSON(dashboard))
}
