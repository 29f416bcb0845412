package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/felipetaua/finan/internal/core"
)

type addTransactionRequest struct {
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	CategoryIcon  string `json:"category_icon,omitempty"`
	CategoryColor string `json:"category_color,omitempty"`
	Description   string `json:"description"`
	Details       string `json:"details,omitempty"`
	IsFixed       bool   `json:"is_fixed,omitempty"`
	Date          string `json:"date"`
}

type editAmountRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date")
		return
	}

	tx, err := s.finance.AddTransaction(r.Context(), core.Transaction{
		UserID:        userIDFrom(r.Context()),
		Type:          core.TransactionType(req.Type),
		Amount:        core.Money{Cents: cents},
		Category:      req.Category,
		CategoryIcon:  req.CategoryIcon,
		CategoryColor: req.CategoryColor,
		Description:   req.Description,
		Details:       req.Details,
		IsFixed:       req.IsFixed,
		Date:          date,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	list, err := s.finance.ListTransactions(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionListJSON(list))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.finance.GetTransaction(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionJSON(tx))
}

// handleEditTransactionAmount rewrites the amount wholesale. Amounts
// are never edited by increment.
func (s *Server) handleEditTransactionAmount(w http.ResponseWriter, r *http.Request) {
	var req editAmountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	userID := userIDFrom(r.Context())
	id := chi.URLParam(r, "id")
	if err := s.finance.EditTransactionAmount(r.Context(), userID, id, core.Money{Cents: cents}); err != nil {
		respondServiceError(w, r, err)
		return
	}

	tx, err := s.finance.GetTransaction(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionJSON(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.finance.DeleteTransaction(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
