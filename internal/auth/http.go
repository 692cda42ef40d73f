package auth

import (
	"context"
	"fmt"
	"net/http"

	"partsCatalog/models"
)

// UserLookup resolves a token subject to a stored user. It returns nil, nil
// when no user has that email.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ErrorWriter renders a gate failure. err is ErrUnauthenticated or a storage error.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Gate turns a bearer token into a persisted user.
type Gate struct {
	tokens *TokenService
	users  UserLookup
}

func NewGate(tokens *TokenService, users UserLookup) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate resolves a raw Authorization header value. Every token problem
// and a subject with no matching user yield ErrUnauthenticated.
func (g *Gate) Authenticate(ctx context.Context, header string) (*models.User, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	subject, err := g.tokens.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := g.users.GetByEmail(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	if u == nil {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

// Middleware authenticates every request and stores the user in its context.
func (g *Gate) Middleware(onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
