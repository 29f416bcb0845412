// Package auth covers the three ways into a Finan account: email and
// password, a Google ID token, and a phone number verified by a
// one-time code. All three end in the same place, a signed session
// token for an existing-or-created user record.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/felipetaua/finan/internal/store"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderPhone    = "phone"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidCode        = errors.New("invalid verification code")
)

// GoogleVerifier validates a Google ID token and returns the identity
// it asserts. Production uses the google.golang.org/api validator;
// tests substitute their own.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

type GoogleIdentity struct {
	Email string
	Name  string
}

type Service struct {
	store    *store.Store
	tokens   *TokenIssuer
	google   GoogleVerifier
	otpTTL   time.Duration
	otpCodes CodeGenerator
}

// CodeGenerator produces one-time phone codes; swapped in tests for a
// deterministic one.
type CodeGenerator func() (string, error)

func NewService(st *store.Store, tokens *TokenIssuer, google GoogleVerifier, otpTTL time.Duration) *Service {
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &Service{
		store:    st,
		tokens:   tokens,
		google:   google,
		otpTTL:   otpTTL,
		otpCodes: GenerateCode,
	}
}

// Register creates a password account, writing the onboarding
// snapshot once as part of the same user document.
func (s *Service) Register(ctx context.Context, name, email, password string, onboarding json.RawMessage) (store.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !ValidEmail(email) {
		return store.User{}, "", ErrInvalidEmail
	}
	if len(password) < 8 {
		return store.User{}, "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, store.User{
		Name:         name,
		Email:        email,
		Provider:     ProviderPassword,
		PasswordHash: hash,
		Onboarding:   onboarding,
	})
	if err != nil {
		return store.User{}, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return store.User{}, "", err
	}
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (store.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.User{}, "", ErrInvalidCredentials
		}
		return store.User{}, "", err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		slog.WarnContext(ctx, "Invalid password attempt", "user_id", user.ID)
		return store.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return store.User{}, "", err
	}
	return user, token, nil
}

// GoogleSignIn verifies the ID token server-side and signs the user
// in, creating the account on first contact. The onboarding snapshot
// is only written on that first contact, matching the one-time-write
// rule.
func (s *Service) GoogleSignIn(ctx context.Context, idToken string, onboarding json.RawMessage) (store.User, string, error) {
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return store.User{}, "", fmt.Errorf("verify google token: %w", err)
	}

	email := strings.ToLower(identity.Email)
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.store.CreateUser(ctx, store.User{
			Name:       identity.Name,
			Email:      email,
			Provider:   ProviderGoogle,
			Onboarding: onboarding,
		})
	}
	if err != nil {
		return store.User{}, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return store.User{}, "", err
	}
	return user, token, nil
}

// RequestPhoneCode issues a fresh one-time code for the number. Only
// the bcrypt hash is stored; delivery is an SMS-provider concern
// outside this service, so the code is returned to the caller (the
// handler logs it in development builds).
func (s *Service) RequestPhoneCode(ctx context.Context, phone string) (string, error) {
	phone, ok := NormalizePhone(phone)
	if !ok {
		return "", ErrInvalidPhone
	}

	code, err := s.otpCodes()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	err = s.store.SaveOTP(ctx, store.OTPCode{
		Phone:     phone,
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(s.otpTTL),
	})
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Phone verification code issued", "phone", phone, "ttl", s.otpTTL)
	return code, nil
}

// VerifyPhoneCode consumes the pending code and signs the user in,
// creating the account on first contact.
func (s *Service) VerifyPhoneCode(ctx context.Context, phone, code string, onboarding json.RawMessage) (store.User, string, error) {
	phone, ok := NormalizePhone(phone)
	if !ok {
		return store.User{}, "", ErrInvalidPhone
	}

	otp, err := s.store.TakeOTP(ctx, phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrOTPExpired) {
			return store.User{}, "", ErrInvalidCode
		}
		return store.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword(otp.CodeHash, []byte(code)) != nil {
		return store.User{}, "", ErrInvalidCode
	}

	user, err := s.store.GetUserByPhone(ctx, phone)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.store.CreateUser(ctx, store.User{
			Phone:      phone,
			Provider:   ProviderPhone,
			Onboarding: onboarding,
		})
	}
	if err != nil {
		return store.User{}, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return store.User{}, "", err
	}
	return user, token, nil
}
