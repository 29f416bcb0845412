package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/felipetaua/finan/internal/core"
)

type startChallengeRequest struct {
	TemplateID string `json:"template_id"`
	Goal       string `json:"goal,omitempty"`
}

type contributeRequest struct {
	Amount    string `json:"amount"`
	Direction string `json:"direction"` // "add" or "withdraw"
}

func (s *Server) handleChallengeTemplates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toTemplateListJSON(s.challenges.Templates()))
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	list, err := s.challenges.Active(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toChallengeListJSON(list))
}

func (s *Server) handleStartChallenge(w http.ResponseWriter, r *http.Request) {
	var req startChallengeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var goal core.Money
	if req.Goal != "" {
		cents, err := core.ParseDecimalToCents(req.Goal)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid goal")
			return
		}
		goal = core.Money{Cents: cents}
	}

	c, err := s.challenges.Start(r.Context(), userIDFrom(r.Context()), req.TemplateID, goal)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toChallengeJSON(c))
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Moving money needs an explicit direction; there is no default.
	if req.Direction != "add" && req.Direction != "withdraw" {
		respondError(w, http.StatusBadRequest, "direction must be add or withdraw")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	c, err := s.challenges.Contribute(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"),
		core.Money{Cents: cents}, req.Direction == "withdraw")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toChallengeJSON(c))
}

func (s *Server) handleDeleteChallenge(w http.ResponseWriter, r *http.Request) {
	if err := s.challenges.Delete(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
