// Package auth signs and verifies the bearer tokens presented by vendors, operators and
// signed-in visitors. The roles claim says which of these a token speaks for.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"conreach/internal/domain"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or subject checks.
var ErrInvalidToken = errors.New("invalid token")

type jwtClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// JWT signs and verifies HS256 tokens with a shared secret.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a JWT for the given secret. It satisfies domain.TokenVerifier.
func NewJWT(secret string) (*JWT, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWT{secret: []byte(secret), now: time.Now}, nil
}

var _ domain.TokenVerifier = (*JWT)(nil)

// Sign issues a token for subject valid for ttl.
func (j *JWT) Sign(subject string, roles []string, ttl time.Duration) (string, error) {
	now := j.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry and returns the subject with its roles.
func (j *JWT) Verify(tokenString string) (domain.Principal, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return domain.Principal{Subject: claims.Subject, Roles: claims.Roles}, nil
}
