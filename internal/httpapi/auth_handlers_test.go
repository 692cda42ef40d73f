package httpapi

import (
	"net/http"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsCatalog/models"
)

// countingHasher records how many bcrypt comparisons a request costs.
type countingHasher struct {
	PasswordHasher
	compares int
}

func (c *countingHasher) ComparePassword(password, hash string) error {
	c.compares++
	return c.PasswordHasher.ComparePassword(password, hash)
}

func (c *countingHasher) CompareDummy(password string) {
	c.compares++
	c.PasswordHasher.CompareDummy(password)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", "", registerRequest{Username: "alice", Email: "alice@example.com", Password: "s3cret"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, registerResponse{Message: "User created successfully", User: "alice@example.com"}, decode[registerResponse](t, rec))

	rec = env.login("alice@example.com", "s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode[tokenResponse](t, rec)
	assert.Equal(t, "bearer", tok.TokenType)

	subject, err := env.tokens.Validate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	rec = env.do(http.MethodGet, "/me", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[models.User](t, rec)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, models.RoleRegular, me.Role)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "alice@example.com", "pw")

	cases := []struct {
		name   string
		body   any
		status int
		detail string
	}{
		{"missing username", registerRequest{Email: "b@example.com", Password: "pw"}, http.StatusBadRequest, "username, email and password are required"},
		{"missing email", registerRequest{Username: "b", Password: "pw"}, http.StatusBadRequest, "username, email and password are required"},
		{"missing password", registerRequest{Username: "b", Email: "b@example.com"}, http.StatusBadRequest, "username, email and password are required"},
		{"password too long", registerRequest{Username: "b", Email: "b@example.com", Password: strings.Repeat("x", 73)}, http.StatusBadRequest, "password must be at most 72 bytes"},
		{"duplicate email", registerRequest{Username: "b", Email: "alice@example.com", Password: "pw"}, http.StatusBadRequest, "User already exists"},
		{"duplicate username", registerRequest{Username: "alice", Email: "b@example.com", Password: "pw"}, http.StatusBadRequest, "User already exists"},
		{"empty body", "", http.StatusBadRequest, "request body is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/auth/register", "", tc.body)
			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.detail, detail(t, rec))
		})
	}

	rec := env.do(http.MethodPost, "/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginFailuresCostOneComparison(t *testing.T) {
	var spy *countingHasher
	env := newTestEnv(t, func(d *Deps) {
		spy = &countingHasher{PasswordHasher: d.Hasher}
		d.Hasher = spy
	})
	env.register("alice", "alice@example.com", "right")

	cases := map[string][2]string{
		"unknown email":  {"nobody@example.com", "right"},
		"wrong password": {"alice@example.com", "wrong"},
		"empty form":     {"", ""},
	}
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			spy.compares = 0
			rec := env.login(creds[0], creds[1])
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Incorrect username or password", detail(t, rec))
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.Equal(t, 1, spy.compares)
		})
	}
	assert.Equal(t, float64(len(cases)), promtest.ToFloat64(env.deps.Metrics.AuthFailuresTotal.WithLabelValues("login")))
}
