package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"partsCatalog/internal/auth"
	"partsCatalog/models"
	"partsCatalog/repository"
)

// AuthHandlers issues credentials: self-registration and password login.
type AuthHandlers struct {
	responder
	users  repository.UserRepositoryI
	hasher PasswordHasher
	tokens *auth.TokenService
}

func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	User    string `json:"user"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// register handles POST /auth/register. New accounts always get the regular role.
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
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
	hash, err := h.hasher.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_, err = h.users.Create(r.Context(), &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleRegular,
	})
	if errors.Is(err, repository.ErrConflict) {
		h.writeDetail(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, registerResponse{Message: "User created successfully", User: req.Email})
}

// login handles POST /auth/login with form fields username (the email) and
// password. Unknown emails still cost one bcrypt comparison.
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, badRequest("invalid form body"))
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	u, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if u == nil {
		h.hasher.CompareDummy(password)
		h.loginFailed(w)
		return
	}
	if err := h.hasher.ComparePassword(password, u.PasswordHash); err != nil {
		h.loginFailed(w)
		return
	}
	token, err := h.tokens.Issue(u.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *AuthHandlers) loginFailed(w http.ResponseWriter) {
	h.metrics.AuthFailuresTotal.WithLabelValues("login").Inc()
	w.Header().Set("WWW-Authenticate", "Bearer")
	h.writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
}
