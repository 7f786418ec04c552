package handler

import (
	"net/http"
	"strconv"

	"commerce-be/internal/domain"
	"commerce-be/internal/service"
	apperrors "commerce-be/pkg/errors"
	"commerce-be/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ProductHandler handles the catalog HTTP endpoints
type ProductHandler struct {
	catalog service.Catalog
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog service.Catalog, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := &domain.ProductFilter{
		Category:   q.Get("category"),
		Brand:      q.Get("brand"),
		Tag:        q.Get("tag"),
		Search:     q.Get("search"),
		ActiveOnly: q.Get("include_inactive") != "true",
	}

	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, apperrors.NewValidationError("min_price must be a number", nil), h.logger)
			return
		}
		filter.MinPrice = &v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, apperrors.NewValidationError("max_price must be a number", nil), h.logger)
			return
		}
		filter.MaxPrice = &v
	}
	if raw := q.Get("in_stock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, apperrors.NewValidationError("in_stock must be a boolean", nil), h.logger)
			return
		}
		filter.InStock = &v
	}
	if raw := q.Get("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			respondError(w, apperrors.NewValidationError("skip must be a non-negative integer", nil), h.logger)
			return
		}
		filter.Skip = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondError(w, apperrors.NewValidationError("limit must be a positive integer", nil), h.logger)
			return
		}
		filter.Limit = v
	}

	response, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, response, h.logger)
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	product, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, product, h.logger)
}

// GetBySlug handles GET /api/v1/products/slug/{slug}
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalog.GetBySlug(r.Context(), slug)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, product, h.logger)
}

// Create handles POST /api/v1/products (admin)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	product, err := h.catalog.Create(r.Context(), &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusCreated, product, h.logger)
}

// Update handles PATCH /api/v1/products/{id} (admin)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var req domain.ProductUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	product, err := h.catalog.Update(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, product, h.logger)
}

// Delete handles DELETE /api/v1/products/{id} (admin, soft delete)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		respondError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock handles PATCH /api/v1/products/{id}/stock (admin)
func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var req domain.StockUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	product, err := h.catalog.UpdateStock(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, product, h.logger)
}

// LowStock handles GET /api/v1/products/low-stock (admin)
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.LowStock(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, products, h.logger)
}

// Categories handles GET /api/v1/products/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, categories, h.logger)
}

// Brands handles GET /api/v1/products/brands
func (h *ProductHandler) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.Brands(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, brands, h.logger)
}

// pathUUID parses a chi URL parameter as a UUID
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(name+" must be a valid UUID", nil)
	}
	return id, nil
}
