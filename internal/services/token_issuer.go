package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"conreach/internal/domain"
)

const tokenBytes = 16

type tokenIssuer struct {
	store    domain.TokenStore
	generate func() (string, error)
}

// NewTokenIssuer returns a TokenIssuer that draws 16 random bytes per token and
// checks the store until it finds one that is not taken.
func NewTokenIssuer(store domain.TokenStore) domain.TokenIssuer {
	return &tokenIssuer{store: store, generate: randomToken}
}

func (t *tokenIssuer) Issue(ctx context.Context, kind domain.TokenKind) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		token, err := t.generate()
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		exists, err := t.store.TokenExists(ctx, kind, token)
		if err != nil {
			return "", fmt.Errorf("check token: %w", err)
		}
		if !exists {
			return token, nil
		}
	}
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
