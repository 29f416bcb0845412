// Package http exposes the JSON API: auth, onboarding, transactions,
// challenges, monthly summaries and the websocket live feed.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/felipetaua/finan/internal/auth"
	"github.com/felipetaua/finan/internal/middleware/ratelimit"
	"github.com/felipetaua/finan/internal/middleware/trace"
	"github.com/felipetaua/finan/internal/onboarding"
	"github.com/felipetaua/finan/internal/services"
	"github.com/felipetaua/finan/internal/store"
)

// Auth endpoints get a tighter limit than the rest of the API.
const authRateDivisor = 6

type Config struct {
	Port               string
	RateLimitPerMinute int
}

type Deps struct {
	Finance    *services.FinanceService
	Challenges *services.ChallengeService
	Auth       *auth.Service
	Tokens     *auth.TokenIssuer
	Onboarding *onboarding.Registry
	Store      *store.Store
}

type Server struct {
	httpServer  *http.Server
	finance     *services.FinanceService
	challenges  *services.ChallengeService
	auth        *auth.Service
	tokens      *auth.TokenIssuer
	onboarding  *onboarding.Registry
	store       *store.Store
	apiLimiter  *ratelimit.Limiter
	authLimiter *ratelimit.Limiter
}

func NewServer(cfg Config, deps Deps) *Server {
	s := &Server{
		finance:    deps.Finance,
		challenges: deps.Challenges,
		auth:       deps.Auth,
		tokens:     deps.Tokens,
		onboarding: deps.Onboarding,
		store:      deps.Store,
	}

	rpm := cfg.RateLimitPerMinute
	if rpm <= 0 {
		rpm = ratelimit.DefaultConfig().RequestsPerMinute
	}
	authRPM := rpm / authRateDivisor
	if authRPM < 1 {
		authRPM = 1
	}
	s.apiLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: rpm})
	s.authLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: authRPM})

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	tracer := trace.NewMiddleware(clientIP)
	r.Use(tracer.Middleware)
	r.Use(s.apiLimiter.Middleware(clientIP, nil))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.With(s.authLimiter.Middleware(clientIP, nil)).Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/google", s.handleGoogleSignIn)
			r.Post("/phone/request", s.handlePhoneRequest)
			r.Post("/phone/verify", s.handlePhoneVerify)
		})

		r.Route("/onboarding", func(r chi.Router) {
			r.Post("/start", s.handleOnboardingStart)
			r.Put("/{session}/{step}", s.handleOnboardingStep)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/me", s.handleMe)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.handleListTransactions)
				r.Post("/", s.handleAddTransaction)
				r.Get("/{id}", s.handleGetTransaction)
				r.Put("/{id}/amount", s.handleEditTransactionAmount)
				r.Delete("/{id}", s.handleDeleteTransaction)
			})

			r.Get("/summary", s.handleSummary)
			r.Get("/dashboard", s.handleDashboard)

			r.Route("/challenges", func(r chi.Router) {
				r.Get("/templates", s.handleChallengeTemplates)
				r.Get("/", s.handleListChallenges)
				r.Post("/", s.handleStartChallenge)
				r.Post("/{id}/contribute", s.handleContribute)
				r.Delete("/{id}", s.handleDeleteChallenge)
			})
		})

		// The websocket handshake carries the token itself.
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.apiLimiter.Stop()
	s.authLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed mux, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
