package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felipetaua/finan/internal/auth"
	"github.com/felipetaua/finan/internal/core"
	"github.com/felipetaua/finan/internal/services"
	"github.com/felipetaua/finan/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps domain errors onto HTTP statuses. Unknown
// errors become a generic 500 so internals never leak.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateUser):
		respondError(w, http.StatusConflict, "account already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrInvalidCode):
		respondError(w, http.StatusUnauthorized, "invalid or expired code")
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidPhone),
		errors.Is(err, services.ErrUnknownTemplate),
		errors.Is(err, core.ErrZeroDelta),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyTitle):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// monthQuery reads year and month query parameters, defaulting to the
// current UTC month.
func monthQuery(r *http.Request) (int, time.Month, error) {
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()

	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return 0, 0, errors.New("invalid year")
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, errors.New("invalid month")
		}
		month = time.Month(m)
	}
	return year, month, nil
}

// parseDate accepts a plain date or a full RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
