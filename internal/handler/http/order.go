package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/internal/service"
	"github.com/Aphidet6/earth-bettashop/pkg/httputil"
	"github.com/Aphidet6/earth-bettashop/pkg/middleware"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: svc, logger: logger}
}

// UpdateOrderStatusRequest is the JSON request body for an order status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input service.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	caller := middleware.IdentityFromContext(r.Context())
	order, err := h.service.Create(r.Context(), caller, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, order)
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())

	orders, err := h.service.List(r.Context(), caller)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if orders == nil {
		orders = []domain.Order{}
	}
	httputil.WriteData(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	caller := middleware.IdentityFromContext(r.Context())
	order, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /api/orders/{id}.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, order)
}
