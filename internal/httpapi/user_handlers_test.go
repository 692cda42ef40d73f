package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsCatalog/models"
)

func TestListRoles(t *testing.T) {
	env := newTestEnv(t)
	token := env.regular("alice")

	rec := env.do(http.MethodGet, "/roles", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.UserType{
		{ID: models.RoleAdmin, Name: "admin"},
		{ID: models.RoleRegular, Name: "default"},
	}, decode[[]models.UserType](t, rec))
}

func TestAdminManagesUsers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin("root")
	bobToken := env.regular("bob")

	rec := env.do(http.MethodGet, "/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]models.User](t, rec)
	require.Len(t, users, 2)

	rec = env.do(http.MethodGet, "/users?limit=1&offset=1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 1)

	rec = env.do(http.MethodGet, "/users?limit=-1", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/users", admin, createUserRequest{Username: "carol", Email: "carol@example.com", Password: "pw", Role: models.RoleAdmin})
	require.Equal(t, http.StatusCreated, rec.Code)
	carol := decode[models.User](t, rec)
	assert.Equal(t, models.RoleAdmin, carol.Role)
	assert.Equal(t, http.StatusOK, env.login("carol@example.com", "pw").Code)

	rec = env.do(http.MethodPost, "/users", admin, createUserRequest{Username: "carol", Email: "other@example.com", Password: "pw"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/users", admin, createUserRequest{Username: "dave", Email: "dave@example.com", Password: "pw", Role: 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bob := users[1]
	require.Equal(t, "bob", bob.Username)
	rec = env.do(http.MethodPatch, fmt.Sprintf("/users/%d/role", bob.ID), admin, updateRoleRequest{Role: models.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleAdmin, decode[models.User](t, rec).Role)

	// Bob's existing token now carries admin rights since the role is read per request.
	rec = env.do(http.MethodGet, "/users", bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPatch, fmt.Sprintf("/users/%d/role", bob.ID), admin, updateRoleRequest{Role: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPatch, "/users/999/role", admin, updateRoleRequest{Role: models.RoleRegular})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", detail(t, rec))

	rec = env.do(http.MethodDelete, fmt.Sprintf("/users/%d", bob.ID), admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodDelete, fmt.Sprintf("/users/%d", bob.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/me", bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "token of a deleted user")

	rec = env.do(http.MethodDelete, "/users/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
