package http

import (
	"net/http"
	"time"

	"rentdesk-backend/internal/service"

	"github.com/gorilla/mux"
)

type rentalRequest struct {
	ItemIDs         []string  `json:"item_ids"`
	ClientID        string    `json:"client_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	RentAmountCents int64     `json:"rent_amount_cents"`
	DiscountCents   int64     `json:"discount_cents"`
	AmountPaidCents int64     `json:"amount_paid_cents"`
	PaymentType     string    `json:"payment_type"`
	Description     string    `json:"description"`
}

func (req rentalRequest) toInput() service.RentalInput {
	return service.RentalInput{
		ItemIDs:         req.ItemIDs,
		ClientID:        req.ClientID,
		Start:           req.StartDate,
		End:             req.EndDate,
		RentAmountCents: req.RentAmountCents,
		DiscountCents:   req.DiscountCents,
		AmountPaidCents: req.AmountPaidCents,
		PaymentType:     req.PaymentType,
		Description:     req.Description,
	}
}

type orderRequest struct {
	ItemIDs               []string  `json:"item_ids"`
	CustomerName          string    `json:"customer_name"`
	StartDate             time.Time `json:"start_date"`
	EndDate               time.Time `json:"end_date"`
	TargetRentAmountCents int64     `json:"target_rent_amount_cents"`
}

func (h *Handler) ListRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.svc.Booking.ListRentals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(rentals))
}

func (h *Handler) CommitRental(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rental, err := h.svc.Booking.CommitRental(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rental)
}

func (h *Handler) GetRental(w http.ResponseWriter, r *http.Request) {
	rental, err := h.svc.Booking.GetRental(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rental)
}

func (h *Handler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rental, err := h.svc.Booking.UpdateRental(r.Context(), mux.Vars(r)["id"], req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rental)
}

func (h *Handler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Booking.DeleteRental(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CompleteRental(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	if err := h.svc.Booking.CompleteRental(r.Context(), mux.Vars(r)["id"], req.Notes); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ReturnRental(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemIDs []string `json:"item_ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.Booking.ReturnRental(r.Context(), mux.Vars(r)["id"], req.ItemIDs); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Booking.ListOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(orders))
}

func (h *Handler) CommitOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.Booking.CommitOrder(r.Context(), service.OrderInput{
		ItemIDs:               req.ItemIDs,
		CustomerName:          req.CustomerName,
		Start:                 req.StartDate,
		End:                   req.EndDate,
		TargetRentAmountCents: req.TargetRentAmountCents,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Booking.DeleteOrder(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard.GetDashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}
