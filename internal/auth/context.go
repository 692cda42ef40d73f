package auth

import (
	"context"
	"errors"

	"partsCatalog/models"
)

var (
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrForbidden       = errors.New("insufficient permissions")
)

type userKey struct{}

type subjectKey struct{}

// WithUser stores the resolved user in context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// CurrentUser retrieves the user placed in context by the gate.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// WithSubject stores a validated token subject in context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext returns the token subject injected by the gRPC interceptor.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey{}).(string)
	return s, ok && s != ""
}

// RequireRole is the single capability check used by handlers: it fails with
// ErrUnauthenticated when no user is present and ErrForbidden when the user's
// role differs from role.
func RequireRole(ctx context.Context, role models.Role) (*models.User, error) {
	u, ok := CurrentUser(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if u.Role != role {
		return nil, ErrForbidden
	}
	return u, nil
}

// RequireUser fails with ErrUnauthenticated when no user is present.
func RequireUser(ctx context.Context) (*models.User, error) {
	u, ok := CurrentUser(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return u, nil
}
