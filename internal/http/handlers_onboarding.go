package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/felipetaua/finan/internal/onboarding"
)

func (s *Server) handleOnboardingStart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusCreated, map[string]any{
		"session": s.onboarding.Start(),
		"steps":   onboarding.Steps,
	})
}

// handleOnboardingStep stores one wizard answer. Answers are opaque
// JSON; setting a step again replaces the previous answer.
func (s *Server) handleOnboardingStep(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")
	step := chi.URLParam(r, "step")

	acc, ok := s.onboarding.Get(session)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown or expired session")
		return
	}

	var value json.RawMessage
	if err := decodeJSON(r, &value); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := acc.Set(step, value); err != nil {
		if errors.Is(err, onboarding.ErrUnknownStep) {
			respondError(w, http.StatusBadRequest, "unknown step")
			return
		}
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
