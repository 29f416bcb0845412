package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidEmail(email string) bool {
	return len(email) <= 254 && emailPattern.MatchString(email)
}

// NormalizePhone reduces a phone number to +<digits> in E.164 shape.
// Formatting characters from the client's input mask are dropped.
func NormalizePhone(phone string) (string, bool) {
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// input-mask noise
		default:
			return "", false
		}
	}
	normalized := b.String()
	digits := strings.TrimPrefix(normalized, "+")
	if len(digits) < 8 || len(digits) > 15 {
		return "", false
	}
	if !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}
	return normalized, true
}

// GenerateCode returns a 6-digit one-time code from crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
