package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"commerce-be/internal/domain"
	"commerce-be/internal/repository"
	apperrors "commerce-be/pkg/errors"
	"commerce-be/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService implements catalog business rules: SKU normalization and
// uniqueness, slug generation, soft delete, and stock control.
type ProductService struct {
	repo   repository.ProductRepository
	logger *logger.Logger
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository, logger *logger.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// Create inserts a new catalog entry. SKUs are stored uppercase and must be
// unique; the slug derives from the name with a numeric suffix on collision.
func (s *ProductService) Create(ctx context.Context, req *domain.ProductCreate) (*domain.Product, error) {
	if err := validateProductCreate(req); err != nil {
		return nil, err
	}

	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	existing, err := s.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflictError(fmt.Sprintf("product with SKU %s already exists", sku))
	}

	slug, err := s.uniqueSlug(ctx, req.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	product := &domain.Product{
		ID:                 uuid.New(),
		Name:               req.Name,
		Slug:               slug,
		Description:        req.Description,
		SKU:                sku,
		Category:           req.Category,
		Brand:              req.Brand,
		Price:              req.Price,
		StockQuantity:      req.StockQuantity,
		LowStockThreshold:  req.LowStockThreshold,
		DiscountPercentage: req.DiscountPercentage,
		Tags:               tags,
		IsActive:           true,
		ImageURL:           req.ImageURL,
		Metadata:           req.Metadata,
	}
	if product.LowStockThreshold <= 0 {
		product.LowStockThreshold = 10
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))
	return product, nil
}

// GetByID retrieves a product; inactive rows stay visible by id
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	return product, nil
}

// GetBySlug retrieves an active product by its slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	return product, nil
}

// List serves the paginated catalog listing
func (s *ProductService) List(ctx context.Context, filter *domain.ProductFilter) (*domain.ProductListResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	page := filter.Skip/filter.Limit + 1

	return &domain.ProductListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Size:  filter.Limit,
		Pages: pages,
	}, nil
}

// Update applies a partial update. A name change regenerates the slug; an SKU
// change re-checks uniqueness.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *domain.ProductUpdate) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NewNotFoundError("product not found")
	}

	if req.Name != nil && *req.Name != product.Name {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		slug, err := s.uniqueSlug(ctx, *req.Name, id)
		if err != nil {
			return nil, err
		}
		product.Name = *req.Name
		product.Slug = slug
	}
	if req.SKU != nil {
		sku := strings.ToUpper(strings.TrimSpace(*req.SKU))
		if sku != product.SKU {
			existing, err := s.repo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != id {
				return nil, apperrors.NewConflictError(fmt.Sprintf("product with SKU %s already exists", sku))
			}
			product.SKU = sku
		}
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Category != nil {
		product.Category = req.Category
	}
	if req.Brand != nil {
		product.Brand = req.Brand
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperrors.NewValidationError("price must not be negative", nil)
		}
		product.Price = *req.Price
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, apperrors.NewValidationError("stock_quantity must not be negative", nil)
		}
		product.StockQuantity = *req.StockQuantity
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.DiscountPercentage != nil {
		if *req.DiscountPercentage < 0 || *req.DiscountPercentage > 100 {
			return nil, apperrors.NewValidationError("discount_percentage must be between 0 and 100", nil)
		}
		product.DiscountPercentage = *req.DiscountPercentage
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.Metadata != nil {
		product.Metadata = req.Metadata
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete soft-deletes a product so historical sales keep a valid reference
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError("product not found")
	}

	s.logger.Info("Product deactivated", zap.String("product_id", id.String()))
	return nil
}

// UpdateStock applies a stock operation. Subtracting below zero is rejected
// rather than floored; set and add never fail on quantity.
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, req *domain.StockUpdate) (*domain.Product, error) {
	if req.Quantity < 0 {
		return nil, apperrors.NewValidationError("quantity must not be negative", nil)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.NewNotFoundError("product not found")
	}

	var newQuantity int
	switch req.Operation {
	case domain.StockOpSet, "":
		newQuantity = req.Quantity
	case domain.StockOpAdd:
		newQuantity = product.StockQuantity + req.Quantity
	case domain.StockOpSubtract:
		if req.Quantity > product.StockQuantity {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("insufficient stock: have %d, requested %d", product.StockQuantity, req.Quantity), nil)
		}
		newQuantity = product.StockQuantity - req.Quantity
	default:
		return nil, apperrors.NewValidationError("operation must be set, add or subtract", nil)
	}

	updated, err := s.repo.UpdateStock(ctx, id, newQuantity)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NewNotFoundError("product not found")
	}

	if updated.StockQuantity <= updated.LowStockThreshold {
		s.logger.Warn("Product stock at or below threshold",
			zap.String("product_id", id.String()),
			zap.Int("stock_quantity", updated.StockQuantity),
			zap.Int("threshold", updated.LowStockThreshold))
	}

	return updated, nil
}

// LowStock lists active products at or below their threshold
func (s *ProductService) LowStock(ctx context.Context) ([]domain.Product, error) {
	return s.repo.LowStock(ctx)
}

// Categories lists the distinct categories of active products
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Brands lists the distinct brands of active products
func (s *ProductService) Brands(ctx context.Context) ([]string, error) {
	return s.repo.Brands(ctx)
}

// uniqueSlug slugifies name and appends -2, -3, ... until the slug is free.
// selfID lets an update keep its own slug.
func (s *ProductService) uniqueSlug(ctx context.Context, name string, selfID uuid.UUID) (string, error) {
	base := slugify(name)
	if base == "" {
		base = "product"
	}

	slug := base
	for n := 2; ; n++ {
		existing, err := s.repo.GetBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if existing == nil || existing.ID == selfID {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func validateProductCreate(req *domain.ProductCreate) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	if strings.TrimSpace(req.SKU) == "" {
		return apperrors.NewValidationError("sku is required", nil)
	}
	if req.Price < 0 {
		return apperrors.NewValidationError("price must not be negative", nil)
	}
	if req.StockQuantity < 0 {
		return apperrors.NewValidationError("stock_quantity must not be negative", nil)
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return apperrors.NewValidationError("discount_percentage must be between 0 and 100", nil)
	}
	return nil
}

// slugify lowercases and collapses anything that is not a letter or digit
// into single hyphens
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
