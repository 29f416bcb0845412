package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The token in the handshake is the access control, not the
	// Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

type wsSnapshot struct {
	Type       string          `json:"type"`
	Dashboard  dashboardJSON   `json:"dashboard"`
	Challenges []challengeJSON `json:"challenges"`
	User       userJSON        `json:"user"`
}

// handleWebSocket streams the user's view: on connect and after every
// change to their records it pushes a freshly computed snapshot.
// Changes are coalesced, so a burst of writes may produce a single
// push.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	userID, err := s.tokens.UserID(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	changes, cancel := s.store.Bus().Subscribe(userID)
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	// Reads are only used to notice the peer going away.
	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	slog.InfoContext(ctx, "Websocket client connected", "user_id", userID)

	if err := s.pushSnapshot(ctx, conn, userID); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Websocket client disconnected", "user_id", userID)
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if err := s.pushSnapshot(ctx, conn, userID); err != nil {
				slog.WarnContext(ctx, "Websocket push failed", "user_id", userID, "error", err)
				return
			}
		}
	}
}

func (s *Server) pushSnapshot(ctx context.Context, conn *websocket.Conn, userID string) error {
	now := time.Now().UTC()

	dashboard, err := s.finance.Dashboard(ctx, userID, now.Year(), now.Month())
	if err != nil {
		return err
	}
	challenges, err := s.challenges.Active(ctx, userID)
	if err != nil {
		return err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(wsSnapshot{
		Type:       "snapshot",
		Dashboard:  toDashboardJSON(dashboard),
		Challenges: toChallengeListJSON(challenges),
		User:       toUserJSON(user),
	})
}
