package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"partsCatalog/internal/auth"
	"partsCatalog/models"
	"partsCatalog/repository"
)

// UserHandlers serves the caller's profile, the role list and admin user management.
type UserHandlers struct {
	responder
	users  repository.UserRepositoryI
	hasher PasswordHasher
}

func (h *UserHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/me", h.me).Methods(http.MethodGet)
	router.HandleFunc("/roles", h.listRoles).Methods(http.MethodGet)
	router.HandleFunc("/users", h.admin(h.listUsers)).Methods(http.MethodGet)
	router.HandleFunc("/users", h.admin(h.createUser)).Methods(http.MethodPost)
	router.HandleFunc("/users/{id}/role", h.admin(h.updateRole)).Methods(http.MethodPatch)
	router.HandleFunc("/users/{id}", h.admin(h.deleteUser)).Methods(http.MethodDelete)
}

func (h *UserHandlers) me(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *UserHandlers) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.users.ListRoles(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, roles)
}

// listUsers handles GET /users?limit=&offset=
func (h *UserHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"user_type"`
}

// createUser handles POST /users; unlike self-registration the admin picks the role.
func (h *UserHandlers) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.fail(w, r, badRequest("username, email and password are required"))
		return
	}
	if req.Role == 0 {
		req.Role = models.RoleRegular
	}
	if !req.Role.Valid() {
		h.fail(w, r, badRequest("unknown user_type %d", req.Role))
		return
	}
	hash, err := h.hasher.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.users.Create(r.Context(), &models.User{Username: req.Username, Email: req.Email, PasswordHash: hash, Role: req.Role})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, u)
}

type updateRoleRequest struct {
	Role models.Role `json:"user_type"`
}

func (h *UserHandlers) updateRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req updateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if !req.Role.Valid() {
		h.fail(w, r, badRequest("unknown user_type %d", req.Role))
		return
	}
	if err := h.users.UpdateRole(r.Context(), id, req.Role); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *UserHandlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
