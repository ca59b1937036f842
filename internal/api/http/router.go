package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/security"
	"rentdesk-backend/internal/service"

	"github.com/gorilla/mux"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Booking   service.BookingService
	Items     service.ItemService
	Catalog   service.CatalogService
	Clients   service.ClientService
	Dashboard service.DashboardService
}

// Handler serves the back-office JSON API.
type Handler struct {
	svc          Services
	tokenManager security.TokenManager
	ping         func(ctx context.Context) error
}

// NewHandler creates the API handler. ping backs /healthz and may be nil.
func NewHandler(svc Services, tokenManager security.TokenManager, ping func(ctx context.Context) error) *Handler {
	return &Handler{
		svc:          svc,
		tokenManager: tokenManager,
		ping:         ping,
	}
}

// Routes configures all HTTP routes
func (h *Handler) Routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)

	public := router.PathPrefix("/api/v1").Subrouter()
	public.HandleFunc("/catalog", h.ListCatalog).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(h.authMiddleware)

	api.HandleFunc("/availability", h.FindAvailableItems).Methods(http.MethodGet)

	api.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items", h.CreateItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}", h.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}", h.UpdateItem).Methods(http.MethodPut)
	api.HandleFunc("/items/{id}", h.DeleteItem).Methods(http.MethodDelete)
	api.HandleFunc("/items/{id}/status", h.UpdateItemStatus).Methods(http.MethodPatch)

	api.HandleFunc("/brands", h.ListBrands).Methods(http.MethodGet)
	api.HandleFunc("/brands", h.CreateBrand).Methods(http.MethodPost)
	api.HandleFunc("/brands/{id}", h.UpdateBrand).Methods(http.MethodPut)
	api.HandleFunc("/brands/{id}", h.DeleteBrand).Methods(http.MethodDelete)
	api.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.CreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", h.UpdateCategory).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", h.DeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/clients", h.ListClients).Methods(http.MethodGet)
	api.HandleFunc("/clients", h.CreateClient).Methods(http.MethodPost)
	api.HandleFunc("/clients/{id}", h.UpdateClient).Methods(http.MethodPut)
	api.HandleFunc("/clients/{id}", h.DeleteClient).Methods(http.MethodDelete)

	api.HandleFunc("/rentals", h.ListRentals).Methods(http.MethodGet)
	api.HandleFunc("/rentals", h.CommitRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}", h.GetRental).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}", h.UpdateRental).Methods(http.MethodPut)
	api.HandleFunc("/rentals/{id}", h.DeleteRental).Methods(http.MethodDelete)
	api.HandleFunc("/rentals/{id}/complete", h.CompleteRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return", h.ReturnRental).Methods(http.MethodPost)

	api.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders", h.CommitOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.DeleteOrder).Methods(http.MethodDelete)

	api.HandleFunc("/dashboard", h.GetDashboard).Methods(http.MethodGet)

	return router
}

// HealthCheck reports whether the database answers.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			logger.Warn("Health check failed", "error", err)
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}
	respondJSON(w, code, map[string]string{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		conflict   *domain.ConflictError
		validation *domain.ValidationError
		rangeErr   *domain.InvalidRangeError
	)
	switch {
	case errors.As(err, &conflict):
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":    err.Error(),
			"item_ids": conflict.ItemIDs,
		})
	case errors.Is(err, domain.ErrClientHasRentals):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.As(err, &validation), errors.As(err, &rangeErr):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON for endpoints where the body may be absent. An empty body,
// chunked or not, leaves dst untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
