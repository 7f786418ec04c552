package service

import (
	"context"
	"testing"
	"time"

	"commerce-be/internal/domain"
	"commerce-be/pkg/logger"
	"commerce-be/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := redis.NewClient("redis://"+mr.Addr(), "analytics", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	log := &logger.Logger{Logger: zap.NewNop()}
	return NewReportCache(client, log), mr, client
}

func TestReportCache_RoundTrip(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	report := &domain.SalesReportResponse{
		Items: []domain.SalesReportItem{
			{Period: "2024-01-15", TotalSales: 100.50, SalesCount: 3},
		},
		Summary: domain.SalesReportSummary{TotalSales: 100.50, TotalOrders: 3},
	}

	require.NoError(t, cache.Put(ctx, "sales_report:test", report, TTLSalesReport))

	var got domain.SalesReportResponse
	hit, err := cache.Get(ctx, "sales_report:test", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, report.Items, got.Items)
	assert.Equal(t, report.Summary.TotalSales, got.Summary.TotalSales)
}

func TestReportCache_MissingKeyIsMiss(t *testing.T) {
	cache, _, _ := newTestCache(t)

	var got domain.SalesReportResponse
	hit, err := cache.Get(context.Background(), "never-written", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestReportCache_ExpiredEntryIsMiss(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "sales_report:test", map[string]int{"x": 1}, TTLSalesReport))

	mr.FastForward(TTLSalesReport + time.Second)

	var got map[string]int
	hit, err := cache.Get(ctx, "sales_report:test", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestReportCache_CorruptPayloadIsMiss(t *testing.T) {
	cache, mr, client := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(client.Keys.Cache("broken"), "{not json"))

	var got map[string]interface{}
	hit, err := cache.Get(ctx, "broken", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestReportCache_PutOverwritesAndRefreshesTTL(t *testing.T) {
	cache, mr, client := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", map[string]int{"v": 1}, TTLSalesReport))
	mr.FastForward(4 * time.Minute)
	require.NoError(t, cache.Put(ctx, "k", map[string]int{"v": 2}, TTLSalesReport))

	assert.Equal(t, TTLSalesReport, mr.TTL(client.Keys.Cache("k")))

	var got map[string]int
	hit, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, got["v"])
}

func TestReportCache_InvalidateReturnsCount(t *testing.T) {
	cache, _, client := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "sales_report:a", map[string]int{"v": 1}, TTLSalesReport))
	require.NoError(t, cache.Put(ctx, "sales_report:b", map[string]int{"v": 2}, TTLSalesReport))
	require.NoError(t, cache.Put(ctx, "product_views:c", map[string]int{"v": 3}, TTLViewsReport))

	// Counters outside the cache namespace must survive a flush
	_, err := client.Incr(ctx, client.Keys.DailyViews("2024-01-15"))
	require.NoError(t, err)

	deleted, err := cache.Invalidate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	var got map[string]int
	hit, err := cache.Get(ctx, "sales_report:a", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	raw, err := client.Get(ctx, client.Keys.DailyViews("2024-01-15"))
	require.NoError(t, err)
	assert.Equal(t, "1", raw)
}

func TestReportCache_InvalidateWithPattern(t *testing.T) {
	cache, _, client := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "sales_report:a", map[string]int{"v": 1}, TTLSalesReport))
	require.NoError(t, cache.Put(ctx, "product_views:c", map[string]int{"v": 3}, TTLViewsReport))

	deleted, err := cache.Invalidate(ctx, client.Keys.Cache("sales_report:*"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var got map[string]int
	hit, err := cache.Get(ctx, "product_views:c", &got)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestReportCache_InvalidateEmptyStore(t *testing.T) {
	cache, _, _ := newTestCache(t)

	deleted, err := cache.Invalidate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}
