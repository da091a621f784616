package domain

import "context"

// TokenStore answers whether a token is already present in its uniqueness scope.
type TokenStore interface {
	TokenExists(ctx context.Context, kind TokenKind, token string) (bool, error)
}

// TokenIssuer returns URL-safe opaque tokens that are absent from their scope at issue time.
type TokenIssuer interface {
	Issue(ctx context.Context, kind TokenKind) (string, error)
}
