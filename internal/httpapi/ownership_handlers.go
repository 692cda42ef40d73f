package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"partsCatalog/internal/auth"
	"partsCatalog/repository"
)

// OwnershipHandlers lets the caller manage the parts they own.
type OwnershipHandlers struct {
	responder
	ownership repository.OwnershipRepositoryI
}

func (h *OwnershipHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ownership", h.list).Methods(http.MethodGet)
	router.HandleFunc("/ownership", h.add).Methods(http.MethodPost)
	router.HandleFunc("/ownership/{part_id}", h.remove).Methods(http.MethodDelete)
}

type ownershipRequest struct {
	PartID int64 `json:"part_id"`
}

func (h *OwnershipHandlers) list(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	owned, err := h.ownership.ListByOwner(r.Context(), u.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, owned)
}

func (h *OwnershipHandlers) add(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req ownershipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.PartID <= 0 {
		h.fail(w, r, badRequest("part_id is required"))
		return
	}
	o, err := h.ownership.Add(r.Context(), u.ID, req.PartID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, o)
}

func (h *OwnershipHandlers) remove(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	partID, err := pathID(r, "part_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.ownership.Remove(r.Context(), u.ID, partID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
