package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrOTPExpired = errors.New("verification code expired")

// OTPCode is a pending phone verification. The code itself is never
// stored, only its hash; one pending code per phone number.
type OTPCode struct {
	Phone     string
	CodeHash  []byte
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SaveOTP upserts the pending code for a phone number, replacing any
// earlier one.
func (s *Store) SaveOTP(ctx context.Context, otp OTPCode) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO otp_codes (phone, code_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(phone) DO UPDATE SET
			code_hash = excluded.code_hash,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		otp.Phone, otp.CodeHash, formatTime(otp.ExpiresAt), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

// TakeOTP returns and removes the pending code for a phone number.
// Removal happens regardless of whether the caller's verification
// succeeds: each code is usable once.
func (s *Store) TakeOTP(ctx context.Context, phone string) (OTPCode, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT phone, code_hash, expires_at, created_at FROM otp_codes WHERE phone = ?`, phone)

	var (
		otp                  OTPCode
		expiresAt, createdAt string
	)
	err := row.Scan(&otp.Phone, &otp.CodeHash, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return OTPCode{}, ErrNotFound
	}
	if err != nil {
		return OTPCode{}, fmt.Errorf("get otp: %w", err)
	}
	otp.ExpiresAt = parseTime(expiresAt)
	otp.CreatedAt = parseTime(createdAt)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE phone = ?`, phone); err != nil {
		return OTPCode{}, fmt.Errorf("consume otp: %w", err)
	}

	if time.Now().After(otp.ExpiresAt) {
		return OTPCode{}, ErrOTPExpired
	}
	return otp, nil
}
