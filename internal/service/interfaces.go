package service

import (
	"context"
	"time"

	"commerce-be/internal/domain"

	"github.com/google/uuid"
)

// Analytics is the contract the analytics handlers program against
type Analytics interface {
	TrackView(ctx context.Context, req *domain.ProductViewCreate) (*domain.ProductView, error)
	TrackActivity(ctx context.Context, req *domain.UserActivityCreate) (*domain.UserActivity, error)
	TrackSale(ctx context.Context, req *domain.SaleCreate) (*domain.Sale, error)

	SalesReport(ctx context.Context, req *domain.SalesReportRequest) (*domain.SalesReportResponse, error)
	ProductViewsReport(ctx context.Context, req *domain.ProductViewsReportRequest) (*domain.ProductViewsReportResponse, error)
	RealtimeMetrics(ctx context.Context) (*domain.RealtimeMetrics, error)
	DailyStats(ctx context.Context, date string) (*domain.DailyStats, error)
	ProductStats(ctx context.Context, productID, date string) (*domain.ProductDailyStats, error)
	UserActivities(ctx context.Context, filter *domain.UserActivityFilter) ([]domain.UserActivity, error)

	UpdateDailyMetrics(ctx context.Context, date time.Time) (*domain.DailyMetrics, error)
	InvalidateReportCache(ctx context.Context, pattern string) (int64, error)
}

// Catalog is the contract the product handlers program against
type Catalog interface {
	Create(ctx context.Context, req *domain.ProductCreate) (*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter *domain.ProductFilter) (*domain.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *domain.ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStock(ctx context.Context, id uuid.UUID, req *domain.StockUpdate) (*domain.Product, error)
	LowStock(ctx context.Context) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
}
