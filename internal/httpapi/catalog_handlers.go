package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"partsCatalog/repository"
)

// CatalogHandlers serves the three lookup tables: part types, restrictions and lines.
type CatalogHandlers struct {
	responder
	types        repository.PartTypeRepositoryI
	restrictions repository.RestrictionRepositoryI
	lines        repository.LineRepositoryI
}

func (h *CatalogHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/types", h.listTypes).Methods(http.MethodGet)
	router.HandleFunc("/types", h.admin(h.createType)).Methods(http.MethodPost)
	router.HandleFunc("/types/{id}", h.admin(h.deleteType)).Methods(http.MethodDelete)

	router.HandleFunc("/restrictions", h.listRestrictions).Methods(http.MethodGet)
	router.HandleFunc("/restrictions", h.admin(h.createRestriction)).Methods(http.MethodPost)
	router.HandleFunc("/restrictions/{id}", h.admin(h.deleteRestriction)).Methods(http.MethodDelete)

	router.HandleFunc("/lines", h.listLines).Methods(http.MethodGet)
	router.HandleFunc("/lines", h.admin(h.createLine)).Methods(http.MethodPost)
	router.HandleFunc("/lines/{id}", h.admin(h.deleteLine)).Methods(http.MethodDelete)
}

type nameRequest struct {
	Name string `json:"name"`
}

type descriptionRequest struct {
	Description string `json:"description"`
}

func (h *CatalogHandlers) listTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.types.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, types)
}

func (h *CatalogHandlers) createType(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.types.Create(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

func (h *CatalogHandlers) deleteType(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.types.Delete)
}

func (h *CatalogHandlers) listRestrictions(w http.ResponseWriter, r *http.Request) {
	restrictions, err := h.restrictions.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, restrictions)
}

func (h *CatalogHandlers) createRestriction(w http.ResponseWriter, r *http.Request) {
	var req descriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.restrictions.Create(r.Context(), strings.TrimSpace(req.Description))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, res)
}

// deleteRestriction clears the restriction from every part that carried it.
func (h *CatalogHandlers) deleteRestriction(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.restrictions.Delete)
}

func (h *CatalogHandlers) listLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.lines.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, lines)
}

func (h *CatalogHandlers) createLine(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	l, err := h.lines.Create(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, l)
}

func (h *CatalogHandlers) deleteLine(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.lines.Delete)
}

func (h *CatalogHandlers) deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id int64) error) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
