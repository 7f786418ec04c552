package handler

import (
	"net/http"
	"strconv"
	"time"

	"commerce-be/internal/domain"
	"commerce-be/internal/service"
	apperrors "commerce-be/pkg/errors"
	"commerce-be/pkg/logger"
	"commerce-be/pkg/redis"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ReportHandler handles the analytics reporting and dashboard endpoints
type ReportHandler struct {
	analytics service.Analytics
	logger    *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(analytics service.Analytics, logger *logger.Logger) *ReportHandler {
	return &ReportHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// Realtime handles GET /api/v1/reports/realtime
func (h *ReportHandler) Realtime(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.analytics.RealtimeMetrics(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, metrics, h.logger)
}

// DailyStats handles GET /api/v1/reports/daily/{date}
func (h *ReportHandler) DailyStats(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	stats, err := h.analytics.DailyStats(r.Context(), date)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, stats, h.logger)
}

// ProductStats handles GET /api/v1/reports/products/{productID}/daily/{date}
func (h *ReportHandler) ProductStats(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	date := chi.URLParam(r, "date")

	stats, err := h.analytics.ProductStats(r.Context(), productID, date)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, stats, h.logger)
}

// Sales handles GET /api/v1/reports/sales
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := &domain.SalesReportRequest{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		GroupBy:   q.Get("group_by"),
	}

	var err error
	if req.ProductID, err = optionalUUID(q.Get("product_id"), "product_id"); err != nil {
		respondError(w, err, h.logger)
		return
	}
	if req.UserID, err = optionalUUID(q.Get("user_id"), "user_id"); err != nil {
		respondError(w, err, h.logger)
		return
	}

	report, err := h.analytics.SalesReport(r.Context(), req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, report, h.logger)
}

// ProductViews handles GET /api/v1/reports/product-views
func (h *ReportHandler) ProductViews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := &domain.ProductViewsReportRequest{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}

	var err error
	if req.ProductID, err = optionalUUID(q.Get("product_id"), "product_id"); err != nil {
		respondError(w, err, h.logger)
		return
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, apperrors.NewValidationError("limit must be an integer", nil), h.logger)
			return
		}
		req.Limit = limit
	}

	report, err := h.analytics.ProductViewsReport(r.Context(), req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, report, h.logger)
}

// UserActivities handles GET /api/v1/reports/activities (admin)
func (h *ReportHandler) UserActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := &domain.UserActivityFilter{
		ActivityType: q.Get("activity_type"),
	}

	userID, err := optionalUUID(q.Get("user_id"), "user_id")
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	filter.UserID = userID

	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse(redis.DateLayout, raw)
		if err != nil {
			respondError(w, apperrors.NewValidationError("start_date must be in YYYY-MM-DD format", nil), h.logger)
			return
		}
		filter.StartDate = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse(redis.DateLayout, raw)
		if err != nil {
			respondError(w, apperrors.NewValidationError("end_date must be in YYYY-MM-DD format", nil), h.logger)
			return
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, apperrors.NewValidationError("limit must be an integer", nil), h.logger)
			return
		}
		filter.Limit = limit
	}

	activities, err := h.analytics.UserActivities(r.Context(), filter)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, activities, h.logger)
}

// UpdateDailyMetrics handles POST /api/v1/reports/daily-metrics (admin).
// Recomputes the durable summary for date (defaults to yesterday).
func (h *ReportHandler) UpdateDailyMetrics(w http.ResponseWriter, r *http.Request) {
	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		t, err := time.Parse(redis.DateLayout, raw)
		if err != nil {
			respondError(w, apperrors.NewValidationError("date must be in YYYY-MM-DD format", nil), h.logger)
			return
		}
		date = t
	}

	metrics, err := h.analytics.UpdateDailyMetrics(r.Context(), date)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, metrics, h.logger)
}

// InvalidateCache handles DELETE /api/v1/reports/cache (admin)
func (h *ReportHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")

	deleted, err := h.analytics.InvalidateReportCache(r.Context(), pattern)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": deleted,
	}, h.logger)
}

// optionalUUID parses a query parameter as a UUID when present
func optionalUUID(raw, name string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(name+" must be a valid UUID", nil)
	}
	return &id, nil
}
