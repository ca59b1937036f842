package http

import (
	"net/http"
	"time"

	"rentdesk-backend/internal/domain"

	"github.com/gorilla/mux"
)

type itemRequest struct {
	Name            string            `json:"name"`
	CategoryID      *string           `json:"category_id"`
	BrandID         *string           `json:"brand_id"`
	Status          domain.ItemStatus `json:"status"`
	PurchaseDate    time.Time         `json:"purchase_date"`
	SoldDate        *time.Time        `json:"sold_date"`
	RealPriceCents  int64             `json:"real_price_cents"`
	PaidPriceCents  int64             `json:"paid_price_cents"`
	SoldPriceCents  *int64            `json:"sold_price_cents"`
	RentAmountCents int64             `json:"rent_amount_cents"`
	SerialNo        string            `json:"serial_no"`
	Description     string            `json:"description"`
	Images          []string          `json:"images"`
}

func (req itemRequest) toItem(id string) *domain.Item {
	return &domain.Item{
		ID:              id,
		Name:            req.Name,
		CategoryID:      req.CategoryID,
		BrandID:         req.BrandID,
		Status:          req.Status,
		PurchaseDate:    req.PurchaseDate,
		SoldDate:        req.SoldDate,
		RealPriceCents:  req.RealPriceCents,
		PaidPriceCents:  req.PaidPriceCents,
		SoldPriceCents:  req.SoldPriceCents,
		RentAmountCents: req.RentAmountCents,
		SerialNo:        req.SerialNo,
		Description:     req.Description,
		Images:          req.Images,
	}
}

// ListCatalog is the public storefront listing.
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Items.ListPublicCatalog(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(items))
}

func (h *Handler) FindAvailableItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "start must be an RFC3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "end must be an RFC3339 timestamp")
		return
	}

	items, err := h.svc.Booking.FindAvailableItems(r.Context(), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(items))
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Items.ListItems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(items))
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item := req.toItem("")
	if err := h.svc.Items.CreateItem(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Items.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item := req.toItem(mux.Vars(r)["id"])
	if err := h.svc.Items.UpdateItem(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.ItemStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.svc.Items.UpdateItemStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Items.DeleteItem(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
