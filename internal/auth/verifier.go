package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail verification
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier is the verified-identity provider: it checks bearer tokens
// issued by the authentication system and yields the registered user id.
// It never vouches for anything else; guest identity is the resolver's job.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier with an HMAC signing secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Enabled reports whether a signing secret is configured.
// Without one, every caller is treated as a guest.
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify validates a token and returns the registered user id it carries
func (v *Verifier) Verify(tokenString string) (string, error) {
	if !v.Enabled() {
		return "", ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidToken
	}

	return subject, nil
}

// Mint issues a token for a registered user id. Used by the CLI and tests
// to produce verified identities; the production issuer lives elsewhere.
func (v *Verifier) Mint(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
