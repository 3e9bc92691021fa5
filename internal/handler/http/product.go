package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/internal/service"
	"github.com/Aphidet6/earth-bettashop/pkg/httputil"
	"github.com/Aphidet6/earth-bettashop/pkg/middleware"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseProductFilter(r)

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if products == nil {
		products = []domain.Product{}
	}
	httputil.WriteData(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input service.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	caller := middleware.IdentityFromContext(r.Context())
	product, err := h.service.Create(r.Context(), caller, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input service.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	caller := middleware.IdentityFromContext(r.Context())
	product, err := h.service.Update(r.Context(), caller, id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	caller := middleware.IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, nil)
}

func parseProductFilter(r *http.Request) domain.ProductFilter {
	q := r.URL.Query()
	filter := domain.ProductFilter{Query: q.Get("q")}

	if v, err := strconv.ParseInt(q.Get("category_id"), 10, 64); err == nil {
		filter.CategoryID = &v
	}
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		filter.MaxPrice = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}

	return filter
}
