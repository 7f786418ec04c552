package service

import (
	"context"
	"fmt"
	"time"

	"commerce-be/internal/domain"
	"commerce-be/internal/repository"
	apperrors "commerce-be/pkg/errors"
	"commerce-be/pkg/logger"
	"commerce-be/pkg/redis"

	"github.com/google/uuid"
)

// AnalyticsService orchestrates the dual write on the tracking path (durable
// row first, best-effort Redis counters second) and the cache-first read on
// the reporting path.
type AnalyticsService struct {
	repo     repository.AnalyticsRepository
	realtime *RealtimeService
	cache    *ReportCache
	logger   *logger.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo repository.AnalyticsRepository, realtime *RealtimeService, cache *ReportCache, logger *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:     repo,
		realtime: realtime,
		cache:    cache,
		logger:   logger,
	}
}

// TrackView records a product view durably, then bumps the real-time
// counters. A counter failure never fails the request once the row is
// committed; it is logged and the durable record stands.
func (s *AnalyticsService) TrackView(ctx context.Context, req *domain.ProductViewCreate) (*domain.ProductView, error) {
	if req.ProductID == uuid.Nil {
		return nil, apperrors.NewValidationError("product_id is required", nil)
	}
	if req.SessionID == "" {
		return nil, apperrors.NewValidationError("session_id is required", nil)
	}
	if req.DurationSeconds < 0 {
		return nil, apperrors.NewValidationError("duration_seconds must not be negative", nil)
	}

	view := &domain.ProductView{
		ID:              uuid.New(),
		ProductID:       req.ProductID,
		UserID:          req.UserID,
		SessionID:       req.SessionID,
		DurationSeconds: req.DurationSeconds,
		DeviceInfo:      req.DeviceInfo,
		IPAddress:       req.IPAddress,
		UserAgent:       req.UserAgent,
	}

	if err := s.repo.CreateProductView(ctx, view); err != nil {
		return nil, err
	}

	userID := ""
	if req.UserID != nil {
		userID = req.UserID.String()
	}

	if err := s.realtime.RecordView(ctx, req.ProductID.String(), userID); err != nil {
		s.logger.WithError(err).Warn("Real-time view counters not updated, durable row is committed")
	}
	if err := s.realtime.BumpTopProducts(ctx, req.ProductID.String(), 1); err != nil {
		s.logger.WithError(err).Warn("Top-products ranking not updated, durable row is committed")
	}

	return view, nil
}

// TrackActivity records a user activity durably
func (s *AnalyticsService) TrackActivity(ctx context.Context, req *domain.UserActivityCreate) (*domain.UserActivity, error) {
	if req.UserID == uuid.Nil {
		return nil, apperrors.NewValidationError("user_id is required", nil)
	}
	if req.ActivityType == "" {
		return nil, apperrors.NewValidationError("activity_type is required", nil)
	}

	activity := &domain.UserActivity{
		ID:           uuid.New(),
		UserID:       req.UserID,
		ActivityType: req.ActivityType,
		ActivityData: req.ActivityData,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
	}

	if err := s.repo.CreateUserActivity(ctx, activity); err != nil {
		return nil, err
	}

	return activity, nil
}

// TrackSale records a sale durably, then bumps the real-time accumulators
func (s *AnalyticsService) TrackSale(ctx context.Context, req *domain.SaleCreate) (*domain.Sale, error) {
	if req.OrderID == uuid.Nil {
		return nil, apperrors.NewValidationError("order_id is required", nil)
	}
	if req.ProductID == uuid.Nil {
		return nil, apperrors.NewValidationError("product_id is required", nil)
	}
	if req.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be greater than zero", nil)
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, apperrors.NewValidationError("quantity must be greater than zero", nil)
	}

	saleDate := req.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now().UTC()
	}

	sale := &domain.Sale{
		ID:            uuid.New(),
		OrderID:       req.OrderID,
		ProductID:     req.ProductID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		Quantity:      quantity,
		SaleDate:      saleDate.Truncate(24 * time.Hour),
		PaymentMethod: req.PaymentMethod,
		Region:        req.Region,
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	if err := s.realtime.RecordSale(ctx, req.ProductID.String(), req.Amount); err != nil {
		s.logger.WithError(err).Warn("Real-time sale counters not updated, durable row is committed")
	}

	return sale, nil
}

// SalesReport serves the sales report cache-first. The cache key folds in
// every parameter that shapes the report body so distinct requests never
// collide.
func (s *AnalyticsService) SalesReport(ctx context.Context, req *domain.SalesReportRequest) (*domain.SalesReportResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	groupBy := req.GroupBy
	if groupBy == "" {
		groupBy = "day"
	}
	if groupBy != "day" && groupBy != "product" {
		return nil, apperrors.NewValidationError("group_by must be day or product", nil)
	}

	cacheKey := fmt.Sprintf("sales_report:%s:%s:%s:%s:%s",
		req.StartDate, req.EndDate, groupBy, uuidOrDash(req.ProductID), uuidOrDash(req.UserID))

	var cached domain.SalesReportResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.logger.WithError(err).Warn("Report cache unavailable, querying database")
	} else if hit {
		return &cached, nil
	}

	var items []domain.SalesReportItem
	if groupBy == "product" {
		items, err = s.repo.SalesReportByProduct(ctx, start, end, req.ProductID, req.UserID)
	} else {
		items, err = s.repo.SalesReportByDay(ctx, start, end, req.ProductID, req.UserID)
	}
	if err != nil {
		return nil, err
	}

	var totalSales float64
	var totalOrders int64
	for _, item := range items {
		totalSales += item.TotalSales
		totalOrders += item.SalesCount
	}
	avgOrder := 0.0
	if totalOrders > 0 {
		avgOrder = totalSales / float64(totalOrders)
	}

	response := &domain.SalesReportResponse{
		Items: items,
		Summary: domain.SalesReportSummary{
			TotalSales:        totalSales,
			TotalOrders:       totalOrders,
			AverageOrderValue: avgOrder,
			Period: map[string]string{
				"start_date": req.StartDate,
				"end_date":   req.EndDate,
			},
		},
	}

	if err := s.cache.Put(ctx, cacheKey, response, TTLSalesReport); err != nil {
		s.logger.WithError(err).Warn("Failed to cache sales report")
	}

	return response, nil
}

// ProductViewsReport serves the most-viewed-products report cache-first
func (s *AnalyticsService) ProductViewsReport(ctx context.Context, req *domain.ProductViewsReportRequest) (*domain.ProductViewsReportResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	// View rows carry full timestamps; stretch the end date to its last instant
	end = end.Add(24*time.Hour - time.Nanosecond)

	cacheKey := fmt.Sprintf("product_views:%s:%s:%s:%d",
		req.StartDate, req.EndDate, uuidOrDash(req.ProductID), limit)

	var cached domain.ProductViewsReportResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.logger.WithError(err).Warn("Report cache unavailable, querying database")
	} else if hit {
		return &cached, nil
	}

	items, err := s.repo.ProductViewsReport(ctx, start, end, req.ProductID, limit)
	if err != nil {
		return nil, err
	}

	response := &domain.ProductViewsReportResponse{
		Items: items,
		Period: map[string]string{
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
		},
	}

	if err := s.cache.Put(ctx, cacheKey, response, TTLViewsReport); err != nil {
		s.logger.WithError(err).Warn("Failed to cache product views report")
	}

	return response, nil
}

// RealtimeMetrics reads the live dashboard numbers from Redis
func (s *AnalyticsService) RealtimeMetrics(ctx context.Context) (*domain.RealtimeMetrics, error) {
	return s.realtime.ReadRealtimeMetrics(ctx)
}

// DailyStats point-reads the Redis counters for a date
func (s *AnalyticsService) DailyStats(ctx context.Context, date string) (*domain.DailyStats, error) {
	return s.realtime.ReadDailyStats(ctx, date)
}

// ProductStats point-reads one product's Redis counters for a date
func (s *AnalyticsService) ProductStats(ctx context.Context, productID, date string) (*domain.ProductDailyStats, error) {
	return s.realtime.ReadProductStats(ctx, productID, date)
}

// UserActivities lists durable activity rows for the admin view
func (s *AnalyticsService) UserActivities(ctx context.Context, filter *domain.UserActivityFilter) ([]domain.UserActivity, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.repo.UserActivities(ctx, filter)
}

// UpdateDailyMetrics recomputes the durable daily summary for a date
// (defaults to yesterday when zero)
func (s *AnalyticsService) UpdateDailyMetrics(ctx context.Context, date time.Time) (*domain.DailyMetrics, error) {
	if date.IsZero() {
		date = time.Now().AddDate(0, 0, -1)
	}
	date = date.Truncate(24 * time.Hour)
	return s.repo.UpsertDailyMetrics(ctx, date)
}

// InvalidateReportCache flushes cached reports matching pattern
func (s *AnalyticsService) InvalidateReportCache(ctx context.Context, pattern string) (int64, error) {
	return s.cache.Invalidate(ctx, pattern)
}

// parseDateRange validates a YYYY-MM-DD range
func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(redis.DateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("start_date must be in YYYY-MM-DD format", nil)
	}
	end, err := time.Parse(redis.DateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("end_date must be in YYYY-MM-DD format", nil)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("end_date must not be before start_date", nil)
	}
	return start, end, nil
}

// uuidOrDash renders an optional UUID for cache-key construction
func uuidOrDash(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}
