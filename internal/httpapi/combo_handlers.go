package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"partsCatalog/models"
	"partsCatalog/repository"
)

type ComboHandlers struct {
	responder
	combos repository.ComboRepositoryI
}

func (h *ComboHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/combos", h.list).Methods(http.MethodGet)
	router.HandleFunc("/combos", h.admin(h.create)).Methods(http.MethodPost)
	router.HandleFunc("/combos/{id}", h.get).Methods(http.MethodGet)
	router.HandleFunc("/combos/{id}", h.admin(h.delete)).Methods(http.MethodDelete)
}

type comboRequest struct {
	IsStock     bool   `json:"is_stock"`
	LineID      int64  `json:"line_id"`
	LockChip    *int64 `json:"lock_chip"`
	MainBlade   int64  `json:"main_blade"`
	AssistBlade *int64 `json:"assist_blade"`
	Ratchet     int64  `json:"ratchet"`
	Bit         int64  `json:"bit"`
	ComboType   string `json:"combo_type"`
	Description string `json:"description"`
}

func (h *ComboHandlers) list(w http.ResponseWriter, r *http.Request) {
	combos, err := h.combos.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, combos)
}

func (h *ComboHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.combos.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if c == nil {
		h.writeDetail(w, http.StatusNotFound, "combo not found")
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *ComboHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req comboRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.combos.Create(r.Context(), &models.Combo{
		IsStock:     req.IsStock,
		LineID:      req.LineID,
		LockChip:    req.LockChip,
		MainBlade:   req.MainBlade,
		AssistBlade: req.AssistBlade,
		Ratchet:     req.Ratchet,
		Bit:         req.Bit,
		ComboType:   req.ComboType,
		Description: req.Description,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

func (h *ComboHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.combos.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
