package service

import (
	"context"
	"testing"
	"time"

	"commerce-be/internal/domain"
	"commerce-be/pkg/logger"
	"commerce-be/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAnalyticsRepo records calls and serves canned report rows
type fakeAnalyticsRepo struct {
	views      []*domain.ProductView
	activities []*domain.UserActivity
	sales      []*domain.Sale

	salesByDayCalls int
	salesByDayRows  []domain.SalesReportItem
	viewsReportRows []domain.ProductViewItem
}

func (f *fakeAnalyticsRepo) CreateProductView(_ context.Context, view *domain.ProductView) error {
	view.ViewedAt = time.Now()
	f.views = append(f.views, view)
	return nil
}

func (f *fakeAnalyticsRepo) CreateUserActivity(_ context.Context, activity *domain.UserActivity) error {
	activity.CreatedAt = time.Now()
	f.activities = append(f.activities, activity)
	return nil
}

func (f *fakeAnalyticsRepo) CreateSale(_ context.Context, sale *domain.Sale) error {
	f.sales = append(f.sales, sale)
	return nil
}

func (f *fakeAnalyticsRepo) SalesReportByDay(_ context.Context, _, _ time.Time, _, _ *uuid.UUID) ([]domain.SalesReportItem, error) {
	f.salesByDayCalls++
	return f.salesByDayRows, nil
}

func (f *fakeAnalyticsRepo) SalesReportByProduct(_ context.Context, _, _ time.Time, _, _ *uuid.UUID) ([]domain.SalesReportItem, error) {
	return f.salesByDayRows, nil
}

func (f *fakeAnalyticsRepo) ProductViewsReport(_ context.Context, _, _ time.Time, _ *uuid.UUID, _ int) ([]domain.ProductViewItem, error) {
	return f.viewsReportRows, nil
}

func (f *fakeAnalyticsRepo) UserActivities(_ context.Context, _ *domain.UserActivityFilter) ([]domain.UserActivity, error) {
	out := make([]domain.UserActivity, 0, len(f.activities))
	for _, a := range f.activities {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAnalyticsRepo) UpsertDailyMetrics(_ context.Context, date time.Time) (*domain.DailyMetrics, error) {
	return &domain.DailyMetrics{Date: date, UpdatedAt: time.Now()}, nil
}

func newTestAnalytics(t *testing.T) (*AnalyticsService, *fakeAnalyticsRepo, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := redis.NewClient("redis://"+mr.Addr(), "analytics", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	log := &logger.Logger{Logger: zap.NewNop()}
	repo := &fakeAnalyticsRepo{}
	svc := NewAnalyticsService(repo, NewRealtimeService(client, log), NewReportCache(client, log), log)
	return svc, repo, mr, client
}

func TestTrackView_PersistsAndCounts(t *testing.T) {
	svc, repo, _, client := newTestAnalytics(t)
	ctx := context.Background()

	userID := uuid.New()
	view, err := svc.TrackView(ctx, &domain.ProductViewCreate{
		ProductID: uuid.New(),
		UserID:    &userID,
		SessionID: "sess-1",
	})
	require.NoError(t, err)

	require.Len(t, repo.views, 1)
	assert.NotEqual(t, uuid.Nil, view.ID)

	date := time.Now().Format(redis.DateLayout)
	raw, err := client.Get(ctx, client.Keys.DailyViews(date))
	require.NoError(t, err)
	assert.Equal(t, "1", raw)

	n, err := client.SCard(ctx, client.Keys.DailyUniqueVisitors(date))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTrackView_SucceedsWhenCountersUnavailable(t *testing.T) {
	svc, repo, mr, _ := newTestAnalytics(t)
	ctx := context.Background()

	// Counter store down: the durable write still wins
	mr.Close()

	view, err := svc.TrackView(ctx, &domain.ProductViewCreate{
		ProductID: uuid.New(),
		SessionID: "sess-1",
	})
	require.NoError(t, err)
	assert.NotNil(t, view)
	assert.Len(t, repo.views, 1)
}

func TestTrackView_Validation(t *testing.T) {
	svc, repo, _, _ := newTestAnalytics(t)
	ctx := context.Background()

	_, err := svc.TrackView(ctx, &domain.ProductViewCreate{SessionID: "s"})
	assert.Error(t, err, "missing product id")

	_, err = svc.TrackView(ctx, &domain.ProductViewCreate{ProductID: uuid.New()})
	assert.Error(t, err, "missing session id")

	_, err = svc.TrackView(ctx, &domain.ProductViewCreate{ProductID: uuid.New(), SessionID: "s", DurationSeconds: -1})
	assert.Error(t, err, "negative duration")

	assert.Empty(t, repo.views)
}

func TestTrackSale_PersistsAndCounts(t *testing.T) {
	svc, repo, _, client := newTestAnalytics(t)
	ctx := context.Background()

	sale, err := svc.TrackSale(ctx, &domain.SaleCreate{
		OrderID:   uuid.New(),
		ProductID: uuid.New(),
		Amount:    49.90,
	})
	require.NoError(t, err)

	require.Len(t, repo.sales, 1)
	assert.Equal(t, 1, sale.Quantity, "quantity defaults to one")

	date := time.Now().Format(redis.DateLayout)
	raw, err := client.Get(ctx, client.Keys.DailySalesCount(date))
	require.NoError(t, err)
	assert.Equal(t, "1", raw)
}

func TestTrackSale_Validation(t *testing.T) {
	svc, _, _, _ := newTestAnalytics(t)
	ctx := context.Background()

	_, err := svc.TrackSale(ctx, &domain.SaleCreate{ProductID: uuid.New(), Amount: 10})
	assert.Error(t, err, "missing order id")

	_, err = svc.TrackSale(ctx, &domain.SaleCreate{OrderID: uuid.New(), ProductID: uuid.New(), Amount: 0})
	assert.Error(t, err, "zero amount")
}

func TestTrackActivity(t *testing.T) {
	svc, repo, _, _ := newTestAnalytics(t)
	ctx := context.Background()

	_, err := svc.TrackActivity(ctx, &domain.UserActivityCreate{
		UserID:       uuid.New(),
		ActivityType: "login",
	})
	require.NoError(t, err)
	assert.Len(t, repo.activities, 1)

	_, err = svc.TrackActivity(ctx, &domain.UserActivityCreate{UserID: uuid.New()})
	assert.Error(t, err, "missing activity type")
}

func TestSalesReport_ServesFromCacheOnRepeat(t *testing.T) {
	svc, repo, _, _ := newTestAnalytics(t)
	ctx := context.Background()

	repo.salesByDayRows = []domain.SalesReportItem{
		{Period: "2024-01-15", TotalSales: 100, SalesCount: 2},
		{Period: "2024-01-16", TotalSales: 50, SalesCount: 1},
	}

	req := &domain.SalesReportRequest{StartDate: "2024-01-15", EndDate: "2024-01-16"}

	first, err := svc.SalesReport(ctx, req)
	require.NoError(t, err)
	second, err := svc.SalesReport(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.salesByDayCalls, "second request is a cache hit")
	assert.Equal(t, first.Summary, second.Summary)
	assert.InDelta(t, 150.0, first.Summary.TotalSales, 0.001)
	assert.Equal(t, int64(3), first.Summary.TotalOrders)
	assert.InDelta(t, 50.0, first.Summary.AverageOrderValue, 0.001)
}

func TestSalesReport_DistinctParamsDistinctCacheEntries(t *testing.T) {
	svc, repo, _, _ := newTestAnalytics(t)
	ctx := context.Background()

	_, err := svc.SalesReport(ctx, &domain.SalesReportRequest{StartDate: "2024-01-15", EndDate: "2024-01-16"})
	require.NoError(t, err)

	productID := uuid.New()
	_, err = svc.SalesReport(ctx, &domain.SalesReportRequest{
		StartDate: "2024-01-15",
		EndDate:   "2024-01-16",
		ProductID: &productID,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.salesByDayCalls, "a narrowed report never reuses the broad one")
}

func TestSalesReport_Validation(t *testing.T) {
	svc, _, _, _ := newTestAnalytics(t)
	ctx := context.Background()

	_, err := svc.SalesReport(ctx, &domain.SalesReportRequest{StartDate: "bad", EndDate: "2024-01-16"})
	assert.Error(t, err)

	_, err = svc.SalesReport(ctx, &domain.SalesReportRequest{StartDate: "2024-01-17", EndDate: "2024-01-16"})
	assert.Error(t, err, "end before start")

	_, err = svc.SalesReport(ctx, &domain.SalesReportRequest{StartDate: "2024-01-15", EndDate: "2024-01-16", GroupBy: "hour"})
	assert.Error(t, err, "unsupported group_by")
}

func TestSalesReport_FallsBackWhenCacheUnavailable(t *testing.T) {
	svc, repo, mr, _ := newTestAnalytics(t)
	ctx := context.Background()

	repo.salesByDayRows = []domain.SalesReportItem{{Period: "2024-01-15", TotalSales: 10, SalesCount: 1}}
	mr.Close()

	report, err := svc.SalesReport(ctx, &domain.SalesReportRequest{StartDate: "2024-01-15", EndDate: "2024-01-15"})
	require.NoError(t, err)
	assert.Len(t, report.Items, 1)
}

func TestProductViewsReport_Cached(t *testing.T) {
	svc, repo, _, _ := newTestAnalytics(t)
	ctx := context.Background()

	repo.viewsReportRows = []domain.ProductViewItem{
		{ProductID: uuid.New(), ViewCount: 12, UniqueViewers: 7},
	}

	report, err := svc.ProductViewsReport(ctx, &domain.ProductViewsReportRequest{
		StartDate: "2024-01-15",
		EndDate:   "2024-01-16",
	})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, int64(12), report.Items[0].ViewCount)
}

func TestInvalidateReportCache(t *testing.T) {
	svc, _, _, _ := newTestAnalytics(t)
	ctx := context.Background()

	_, err := svc.SalesReport(ctx, &domain.SalesReportRequest{StartDate: "2024-01-15", EndDate: "2024-01-16"})
	require.NoError(t, err)

	deleted, err := svc.InvalidateReportCache(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
