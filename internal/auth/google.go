package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// IDTokenVerifier checks Google ID tokens against the app's OAuth
// client id using Google's public keys.
type IDTokenVerifier struct {
	audience string
}

func NewIDTokenVerifier(audience string) *IDTokenVerifier {
	return &IDTokenVerifier{audience: audience}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, token string) (GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, v.audience)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("validate id token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return GoogleIdentity{}, errors.New("id token has no email claim")
	}
	name, _ := payload.Claims["name"].(string)

	return GoogleIdentity{Email: email, Name: name}, nil
}
