package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"partsCatalog/internal/auth"
	"partsCatalog/internal/observability"
	"partsCatalog/models"
	"partsCatalog/repository"
)

const maxBodyBytes = 1 << 20

// errorBody is the shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// requestError is a client mistake found while reading the request.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// responder writes JSON bodies and maps errors to status codes. Every handler
// group embeds one.
type responder struct {
	log     logrus.FieldLogger
	metrics *observability.Metrics
}

func (rs responder) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.log.WithError(err).Warn("encode response")
	}
}

func (rs responder) writeDetail(w http.ResponseWriter, status int, msg string) {
	rs.writeJSON(w, status, errorBody{Detail: msg})
}

// fail maps err onto a status code. Unknown errors are logged and answered
// with a generic 500 so internals never reach the client.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		rs.writeDetail(w, reqErr.status, reqErr.msg)
	case errors.Is(err, auth.ErrUnauthenticated):
		rs.metrics.AuthFailuresTotal.WithLabelValues("token").Inc()
		w.Header().Set("WWW-Authenticate", "Bearer")
		rs.writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, auth.ErrForbidden):
		rs.writeDetail(w, http.StatusForbidden, "Not enough permissions")
	case errors.Is(err, auth.ErrPasswordTooLong), errors.Is(err, repository.ErrInvalid):
		rs.writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		rs.writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrInUse):
		rs.writeDetail(w, http.StatusConflict, err.Error())
	default:
		rs.log.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestID(r.Context()),
		}).Error("request failed")
		rs.writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// admin wraps next with the admin capability check.
func (rs responder) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.RequireRole(r.Context(), models.RoleAdmin); err != nil {
			rs.fail(w, r, err)
			return
		}
		next(w, r)
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

// pathID parses a positive integer route variable.
func pathID(r *http.Request, key string) (int64, error) {
	raw := mux.Vars(r)[key]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s: %q", key, raw)
	}
	return id, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("invalid %s: %q", key, raw)
	}
	return n, nil
}
