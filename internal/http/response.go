package http

import (
	"encoding/json"
	"time"

	"github.com/felipetaua/finan/internal/core"
	"github.com/felipetaua/finan/internal/services"
	"github.com/felipetaua/finan/internal/store"
)

// DTOs returned by the API. Amounts carry both exact cents and the
// display value in reais.

type transactionJSON struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	AmountCents   int64   `json:"amount_cents"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category"`
	CategoryIcon  string  `json:"category_icon,omitempty"`
	CategoryColor string  `json:"category_color,omitempty"`
	Description   string  `json:"description"`
	Details       string  `json:"details,omitempty"`
	IsFixed       bool    `json:"is_fixed"`
	Date          string  `json:"date"`
	CreatedAt     string  `json:"created_at"`
}

type categoryShareJSON struct {
	Category    string  `json:"category"`
	AmountCents int64   `json:"amount_cents"`
	Amount      float64 `json:"amount"`
	Percent     float64 `json:"percent"`
}

type summaryJSON struct {
	TotalIncomeCents   int64               `json:"total_income_cents"`
	TotalIncome        float64             `json:"total_income"`
	TotalExpensesCents int64               `json:"total_expenses_cents"`
	TotalExpenses      float64             `json:"total_expenses"`
	SavingsCents       int64               `json:"savings_cents"`
	Savings            float64             `json:"savings"`
	PercentSpent       float64             `json:"percent_spent"`
	PercentLeft        float64             `json:"percent_left"`
	ByCategory         []categoryShareJSON `json:"by_category"`
}

type dashboardJSON struct {
	Summary      summaryJSON       `json:"summary"`
	BalanceCents int64             `json:"balance_cents"`
	Balance      float64           `json:"balance"`
	Recent       []transactionJSON `json:"recent"`
}

type challengeJSON struct {
	ID           string  `json:"id"`
	TemplateID   string  `json:"template_id"`
	Title        string  `json:"title"`
	IconName     string  `json:"icon_name"`
	IconType     string  `json:"icon_type"`
	Color        string  `json:"color"`
	GoalCents    int64   `json:"goal_cents"`
	Goal         float64 `json:"goal"`
	CurrentCents int64   `json:"current_cents"`
	Current      float64 `json:"current"`
	Percent      float64 `json:"percent"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

type templateJSON struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Subtitle  string  `json:"subtitle"`
	IconName  string  `json:"icon_name"`
	IconType  string  `json:"icon_type"`
	Color     string  `json:"color"`
	GoalCents int64   `json:"goal_cents"`
	Goal      float64 `json:"goal"`
}

type userJSON struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Provider   string          `json:"provider"`
	XP         int64           `json:"xp"`
	Onboarding json.RawMessage `json:"onboarding"`
	CreatedAt  string          `json:"created_at"`
}

type sessionJSON struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:            t.ID,
		Type:          string(t.Type),
		AmountCents:   t.Amount.Cents,
		Amount:        t.Amount.Reais(),
		Category:      t.Category,
		CategoryIcon:  t.CategoryIcon,
		CategoryColor: t.CategoryColor,
		Description:   t.Description,
		Details:       t.Details,
		IsFixed:       t.IsFixed,
		Date:          t.Date.UTC().Format("2006-01-02"),
		CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionListJSON(list []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(list))
	for _, t := range list {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

func toSummaryJSON(s core.Summary) summaryJSON {
	byCategory := make([]categoryShareJSON, 0, len(s.ByCategory))
	for _, c := range s.ByCategory {
		byCategory = append(byCategory, categoryShareJSON{
			Category:    c.Category,
			AmountCents: c.Amount.Cents,
			Amount:      c.Amount.Reais(),
			Percent:     c.Percent,
		})
	}
	return summaryJSON{
		TotalIncomeCents:   s.TotalIncome.Cents,
		TotalIncome:        s.TotalIncome.Reais(),
		TotalExpensesCents: s.TotalExpenses.Cents,
		TotalExpenses:      s.TotalExpenses.Reais(),
		SavingsCents:       s.Savings.Cents,
		Savings:            s.Savings.Reais(),
		PercentSpent:       s.PercentSpent,
		PercentLeft:        s.PercentLeft,
		ByCategory:         byCategory,
	}
}

func toDashboardJSON(d services.Dashboard) dashboardJSON {
	return dashboardJSON{
		Summary:      toSummaryJSON(d.Summary),
		BalanceCents: d.Balance.Cents,
		Balance:      d.Balance.Reais(),
		Recent:       toTransactionListJSON(d.Recent),
	}
}

func toChallengeJSON(c core.Challenge) challengeJSON {
	return challengeJSON{
		ID:           c.ID,
		TemplateID:   c.TemplateID,
		Title:        c.Title,
		IconName:     c.IconName,
		IconType:     c.IconType,
		Color:        c.Color,
		GoalCents:    c.Goal.Cents,
		Goal:         c.Goal.Reais(),
		CurrentCents: c.Current.Cents,
		Current:      c.Current.Reais(),
		Percent:      c.Percent(),
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toChallengeListJSON(list []core.Challenge) []challengeJSON {
	out := make([]challengeJSON, 0, len(list))
	for _, c := range list {
		out = append(out, toChallengeJSON(c))
	}
	return out
}

func toTemplateListJSON(list []services.ChallengeTemplate) []templateJSON {
	out := make([]templateJSON, 0, len(list))
	for _, t := range list {
		out = append(out, templateJSON{
			ID:        t.ID,
			Title:     t.Title,
			Subtitle:  t.Subtitle,
			IconName:  t.IconName,
			IconType:  t.IconType,
			Color:     t.Color,
			GoalCents: t.Goal.Cents,
			Goal:      t.Goal.Reais(),
		})
	}
	return out
}

func toUserJSON(u store.User) userJSON {
	onboarding := u.Onboarding
	if len(onboarding) == 0 {
		onboarding = json.RawMessage("null")
	}
	return userJSON{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Provider:   u.Provider,
		XP:         u.XP,
		Onboarding: onboarding,
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toSessionJSON(u store.User, token string) sessionJSON {
	return sessionJSON{Token: token, User: toUserJSON(u)}
}
