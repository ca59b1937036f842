package http

import (
	"net/http"

	"rentdesk-backend/internal/domain"

	"github.com/gorilla/mux"
)

type nameRequest struct {
	Name string `json:"name"`
}

type clientRequest struct {
	Name      string `json:"name"`
	Mobile    string `json:"mobile"`
	Address   string `json:"address"`
	Reference string `json:"reference"`
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.Clients.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(clients))
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	client := &domain.Client{Name: req.Name, Mobile: req.Mobile, Address: req.Address, Reference: req.Reference}
	if err := h.svc.Clients.CreateClient(r.Context(), client); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	client := &domain.Client{ID: mux.Vars(r)["id"], Name: req.Name, Mobile: req.Mobile, Address: req.Address, Reference: req.Reference}
	if err := h.svc.Clients.UpdateClient(r.Context(), client); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clients.DeleteClient(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.svc.Catalog.ListBrands(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(brands))
}

func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	brand, err := h.svc.Catalog.CreateBrand(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, brand)
}

func (h *Handler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	brand, err := h.svc.Catalog.UpdateBrand(r.Context(), mux.Vars(r)["id"], req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, brand)
}

func (h *Handler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteBrand(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(categories))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.svc.Catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.svc.Catalog.UpdateCategory(r.Context(), mux.Vars(r)["id"], req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
