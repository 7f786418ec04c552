package repository

import (
	"context"
	"time"

	"commerce-be/internal/domain"

	"github.com/google/uuid"
)

// AnalyticsRepository defines the durable system of record for tracking events
// and aggregate reports
type AnalyticsRepository interface {
	// CreateProductView inserts a product view row
	CreateProductView(ctx context.Context, view *domain.ProductView) error

	// CreateUserActivity inserts a user activity row
	CreateUserActivity(ctx context.Context, activity *domain.UserActivity) error

	// CreateSale inserts a sale row; order ids are unique
	CreateSale(ctx context.Context, sale *domain.Sale) error

	// SalesReportByDay aggregates sales per calendar day within a range
	SalesReportByDay(ctx context.Context, start, end time.Time, productID, userID *uuid.UUID) ([]domain.SalesReportItem, error)

	// SalesReportByProduct aggregates sales per product within a range
	SalesReportByProduct(ctx context.Context, start, end time.Time, productID, userID *uuid.UUID) ([]domain.SalesReportItem, error)

	// ProductViewsReport aggregates view rows per product within a range
	ProductViewsReport(ctx context.Context, start, end time.Time, productID *uuid.UUID, limit int) ([]domain.ProductViewItem, error)

	// UserActivities lists activity rows, newest first
	UserActivities(ctx context.Context, filter *domain.UserActivityFilter) ([]domain.UserActivity, error)

	// UpsertDailyMetrics recomputes and stores the daily summary row for a date
	UpsertDailyMetrics(ctx context.Context, date time.Time) (*domain.DailyMetrics, error)
}

// ProductRepository defines catalog persistence
type ProductRepository interface {
	// GetByID retrieves a product by id, nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// GetBySlug retrieves a product by slug, nil when absent
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// GetBySKU retrieves a product by SKU, nil when absent
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)

	// List retrieves products matching the filter, newest first
	List(ctx context.Context, filter *domain.ProductFilter) ([]domain.Product, error)

	// Count counts products matching the filter (pagination totals)
	Count(ctx context.Context, filter *domain.ProductFilter) (int64, error)

	// Create inserts a catalog row
	Create(ctx context.Context, product *domain.Product) error

	// Update overwrites a catalog row
	Update(ctx context.Context, product *domain.Product) error

	// SoftDelete flips is_active off, returning false when the row is absent
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)

	// UpdateStock sets the stock quantity for a product
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.Product, error)

	// LowStock lists active products at or below their threshold
	LowStock(ctx context.Context) ([]domain.Product, error)

	// Categories lists distinct categories of active products
	Categories(ctx context.Context) ([]string, error)

	// Brands lists distinct brands of active products
	Brands(ctx context.Context) ([]string, error)
}
