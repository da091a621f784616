package domain

import "context"

// UserRepository looks up existing accounts by normalized contact data.
type UserRepository interface {
	// FindIDByPhone and FindIDByEmail return ErrNotFound when no account matches.
	FindIDByPhone(ctx context.Context, phone string) (string, error)
	FindIDByEmail(ctx context.Context, email string) (string, error)
	// Exists reports whether id names an account. Malformed ids report false.
	Exists(ctx context.Context, id string) (bool, error)
}

// UserMatcher links a new opt-in to a known account when possible.
// An empty id with a nil error means no account matched.
type UserMatcher interface {
	Match(ctx context.Context, eventID, phone, email string) (userID string, err error)
	// Exists confirms an account ID supplied by the caller before it is linked.
	Exists(ctx context.Context, userID string) (bool, error)
}

// Roles carried by bearer tokens.
const (
	RoleVisitor  = "visitor"
	RoleVendor   = "vendor"
	RoleOperator = "operator"
)

// Principal is the verified identity behind a bearer token.
type Principal struct {
	Subject string
	Roles   []string
}

// HasRole reports whether p carries any of roles.
func (p Principal) HasRole(roles ...string) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// TokenVerifier verifies a bearer token and returns who presented it.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}
