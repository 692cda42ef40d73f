package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"partsCatalog/models"
	"partsCatalog/repository"
)

// PartHandlers serves parts together with their stats.
type PartHandlers struct {
	responder
	parts repository.PartRepositoryI
}

func (h *PartHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/parts", h.list).Methods(http.MethodGet)
	router.HandleFunc("/parts", h.admin(h.create)).Methods(http.MethodPost)
	router.HandleFunc("/parts/{id}", h.get).Methods(http.MethodGet)
	router.HandleFunc("/parts/{id}", h.admin(h.update)).Methods(http.MethodPatch)
	router.HandleFunc("/parts/{id}", h.admin(h.delete)).Methods(http.MethodDelete)
}

// partRequest is the create and update payload. The type is referenced by name.
type partRequest struct {
	Name          string       `json:"name"`
	Color         string       `json:"color"`
	Type          string       `json:"type"`
	RestrictionID *int64       `json:"restriction_id"`
	Description   string       `json:"description"`
	Stats         models.Stats `json:"stats"`
}

func (p partRequest) input() models.PartInput {
	return models.PartInput{
		Name:          strings.TrimSpace(p.Name),
		Color:         p.Color,
		TypeName:      strings.TrimSpace(p.Type),
		RestrictionID: p.RestrictionID,
		Description:   p.Description,
		Stats:         p.Stats,
	}
}

// list handles GET /parts with an optional ?type= filter on the type name.
func (h *PartHandlers) list(w http.ResponseWriter, r *http.Request) {
	parts, err := h.parts.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, parts)
}

func (h *PartHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.parts.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if p == nil {
		h.writeDetail(w, http.StatusNotFound, "part not found")
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *PartHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req partRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.parts.Create(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

// update overwrites every part field and every stat field.
func (h *PartHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req partRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.parts.Update(r.Context(), id, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *PartHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.parts.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
