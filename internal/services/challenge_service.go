package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/felipetaua/finan/internal/core"
	"github.com/felipetaua/finan/internal/store"
)

var ErrUnknownTemplate = errors.New("unknown challenge template")

// ChallengeTemplate is a preset savings goal the user can start from.
// Goals are in cents; meta-livre starts at zero and takes whatever
// goal the user types.
type ChallengeTemplate struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	IconName string     `json:"iconName"`
	IconType string     `json:"iconType"`
	Color    string     `json:"color"`
	Goal     core.Money `json:"goalAmount"`
}

var challengeTemplates = []ChallengeTemplate{
	{
		ID:       "guardando-dinheiro",
		Title:    "Guardando Dinheiro",
		Subtitle: "Focado em economia mensal recorrente.",
		IconName: "piggy-bank",
		IconType: "MaterialCommunityIcons",
		Color:    "#3b82f6",
		Goal:     core.Money{Cents: 100_000},
	},
	{
		ID:       "desafio-chines",
		Title:    "Desafio Chinês",
		Subtitle: "Junte dinheiro de forma crescente.",
		IconName: "grid-outline",
		IconType: "Ionicons",
		Color:    "#0ea5e9",
		Goal:     core.Money{Cents: 200_000},
	},
	{
		ID:       "52-semanas",
		Title:    "52 Semanas",
		Subtitle: "O clássico para poupar o ano todo.",
		IconName: "calendar-outline",
		IconType: "Ionicons",
		Color:    "#8b5cf6",
		Goal:     core.Money{Cents: 137_800},
	},
	{
		ID:       "meta-livre",
		Title:    "Meta Livre",
		Subtitle: "Crie um objetivo personalizado agora.",
		IconName: "rocket-outline",
		IconType: "Ionicons",
		Color:    "#f59e0b",
		Goal:     core.Money{Cents: 0},
	},
}

// ChallengeService manages savings challenges: starting one from a
// template, moving money in and out, and reading progress.
type ChallengeService struct {
	store *store.Store
}

func NewChallengeService(st *store.Store) *ChallengeService {
	return &ChallengeService{store: st}
}

// Templates returns the preset catalogue.
func (s *ChallengeService) Templates() []ChallengeTemplate {
	out := make([]ChallengeTemplate, len(challengeTemplates))
	copy(out, challengeTemplates)
	return out
}

func templateByID(id string) (ChallengeTemplate, bool) {
	for _, t := range challengeTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return ChallengeTemplate{}, false
}

// Start creates an active challenge from a template. A custom goal
// overrides the template default when positive; meta-livre is the
// template meant for that.
func (s *ChallengeService) Start(ctx context.Context, userID, templateID string, customGoal core.Money) (core.Challenge, error) {
	template, ok := templateByID(templateID)
	if !ok {
		return core.Challenge{}, ErrUnknownTemplate
	}

	goal := template.Goal
	if customGoal.Cents > 0 {
		goal = customGoal
	}

	c := core.Challenge{
		UserID:     userID,
		TemplateID: template.ID,
		Title:      template.Title,
		IconName:   template.IconName,
		IconType:   template.IconType,
		Color:      template.Color,
		Goal:       goal,
		Status:     core.ChallengeActive,
	}
	id, err := s.store.InsertChallenge(ctx, c)
	if err != nil {
		return core.Challenge{}, fmt.Errorf("start challenge: %w", err)
	}
	c.ID = id
	return c, nil
}

// Contribute moves money into the challenge, or out of it when
// withdraw is set. The stored amount is incremented atomically and
// never clamped, so over-saving past the goal and withdrawing below
// zero both persist as-is.
func (s *ChallengeService) Contribute(ctx context.Context, userID, id string, amount core.Money, withdraw bool) (core.Challenge, error) {
	delta := amount
	if withdraw {
		delta = delta.Neg()
	}
	if err := s.store.AddToChallenge(ctx, userID, id, delta); err != nil {
		return core.Challenge{}, err
	}
	return s.store.GetChallenge(ctx, userID, id)
}

// Active returns the user's active challenges, newest first.
func (s *ChallengeService) Active(ctx context.Context, userID string) ([]core.Challenge, error) {
	return s.store.ListActiveChallenges(ctx, userID)
}

func (s *ChallengeService) Get(ctx context.Context, userID, id string) (core.Challenge, error) {
	return s.store.GetChallenge(ctx, userID, id)
}

func (s *ChallengeService) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteChallenge(ctx, userID, id)
}
