package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"commerce-be/pkg/logger"
	"commerce-be/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRealtime(t *testing.T) (*RealtimeService, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := redis.NewClient("redis://"+mr.Addr(), "analytics", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	log := &logger.Logger{Logger: zap.NewNop()}
	return NewRealtimeService(client, log), mr, client
}

func today() string {
	return time.Now().Format(redis.DateLayout)
}

func getInt(t *testing.T, client *redis.Client, key string) int64 {
	t.Helper()
	raw, err := client.Get(context.Background(), key)
	require.NoError(t, err)
	v, err := strconv.ParseInt(raw, 10, 64)
	require.NoError(t, err)
	return v
}

func getFloat(t *testing.T, client *redis.Client, key string) float64 {
	t.Helper()
	raw, err := client.Get(context.Background(), key)
	require.NoError(t, err)
	v, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	return v
}

func TestRecordView_IncrementsCounters(t *testing.T) {
	svc, _, client := newTestRealtime(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordView(ctx, "p1", "user-1"))
	require.NoError(t, svc.RecordView(ctx, "p1", "user-2"))
	require.NoError(t, svc.RecordView(ctx, "p2", ""))

	keys := client.Keys
	assert.Equal(t, int64(3), getInt(t, client, keys.DailyViews(today())))
	assert.Equal(t, int64(2), getInt(t, client, keys.ProductViews("p1", today())))
	assert.Equal(t, int64(1), getInt(t, client, keys.ProductViews("p2", today())))
}

func TestRecordView_UniqueVisitorsAreIdempotent(t *testing.T) {
	svc, _, client := newTestRealtime(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.RecordView(ctx, "p1", "user-1"))
	}
	require.NoError(t, svc.RecordView(ctx, "p1", "user-2"))

	n, err := client.SCard(ctx, client.Keys.DailyUniqueVisitors(today()))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRecordView_AnonymousSkipsVisitorSets(t *testing.T) {
	svc, mr, client := newTestRealtime(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordView(ctx, "p1", ""))

	assert.False(t, mr.Exists(client.Keys.DailyUniqueVisitors(today())))
	assert.False(t, mr.Exists(client.Keys.ActiveUsers()))
}

func TestRecordView_ConcurrentIncrementsAreLossless(t *testing.T) {
	svc, _, client := newTestRealtime(t)
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.RecordView(ctx, "p1", ""))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(writers), getInt(t, client, client.Keys.DailyViews(today())))
	assert.Equal(t, int64(writers), getInt(t, client, client.Keys.ProductViews("p1", today())))
}

func TestRecordView_RefreshesTTL(t *testing.T) {
	svc, mr, client := newTestRealtime(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordView(ctx, "p1", "user-1"))
	key := client.Keys.DailyViews(today())
	assert.Equal(t, TTLDaily, mr.TTL(key))

	// A later write resets the window instead of letting it keep draining
	mr.FastForward(6 * time.Hour)
	require.NoError(t, svc.RecordView(ctx, "p1", "user-1"))
	assert.Equal(t, TTLDaily, mr.TTL(key))

	assert.Equal(t, TTLActiveUsers, mr.TTL(client.Keys.ActiveUsers()))
}

func TestRecordView_RequiresProductID(t *testing.T) {
	svc, _, _ := newTestRealtime(t)

	err := svc.RecordView(context.Background(), "", "user-1")
	assert.Error(t, err)
}

func TestRecordSale_AccumulatesAmountAndCount(t *testing.T) {
	svc, _, client := newTestRealtime(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordSale(ctx, "p1", 19.99))
	require.NoError(t, svc.RecordSale(ctx, "p1", 10.01))
	require.NoError(t, svc.RecordSale(ctx, "p2", 5.00))

	keys := client.Keys
	assert.Equal(t, int64(3), getInt(t, client, keys.DailySalesCount(today())))
	assert.InDelta(t, 35.0, getFloat(t, client, keys.DailySales(today())), 0.001)
	assert.InDelta(t, 30.0, getFloat(t, client, keys.ProductSales("p1", today())), 0.001)
}

func TestRecordSale_RejectsInvalidAmount(t *testing.T) {
	svc, _, _ := newTestRealtime(t)
	ctx := context.Background()

	assert.Error(t, svc.RecordSale(ctx, "p1", -1))
	assert.Error(t, svc.RecordSale(ctx, "", 10))
}

func TestBumpTopProducts_OrdersByScore(t *testing.T) {
	svc, _, _ := newTestRealtime(t)
	ctx := context.Background()

	require.NoError(t, svc.BumpTopProducts(ctx, "p1", 35))
	require.NoError(t, svc.BumpTopProducts(ctx, "p2", 30))
	require.NoError(t, svc.BumpTopProducts(ctx, "p3", 1))

	metrics, err := svc.ReadRealtimeMetrics(ctx)
	require.NoError(t, err)
	require.Len(t, metrics.TopProducts, 3)
	assert.Equal(t, "p1", metrics.TopProducts[0].ProductID)
	assert.Equal(t, int64(35), metrics.TopProducts[0].Views)
	assert.Equal(t, "p2", metrics.TopProducts[1].ProductID)
	assert.Equal(t, "p3", metrics.TopProducts[2].ProductID)
}

func TestBumpTopProducts_CapsAtLimit(t *testing.T) {
	svc, _, _ := newTestRealtime(t)
	ctx := context.Background()

	products := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	for i, p := range products {
		require.NoError(t, svc.BumpTopProducts(ctx, p, float64(i+1)))
	}

	metrics, err := svc.ReadRealtimeMetrics(ctx)
	require.NoError(t, err)
	assert.Len(t, metrics.TopProducts, TopProductsLimit)
	assert.Equal(t, "p7", metrics.TopProducts[0].ProductID)
}

func TestReadRealtimeMetrics_EmptyStoreReadsAsZero(t *testing.T) {
	svc, _, _ := newTestRealtime(t)

	metrics, err := svc.ReadRealtimeMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), metrics.TodayViews)
	assert.Equal(t, int64(0), metrics.ActiveUsers)
	assert.Equal(t, int64(0), metrics.UniqueVisitors)
	assert.Equal(t, 0.0, metrics.TodaySales)
	assert.Equal(t, int64(0), metrics.SalesCount)
	assert.Equal(t, 0.0, metrics.ConversionRate)
	assert.Empty(t, metrics.TopProducts)
}

func TestReadRealtimeMetrics_ConversionRate(t *testing.T) {
	svc, _, _ := newTestRealtime(t)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		require.NoError(t, svc.RecordView(ctx, "p1", ""))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordSale(ctx, "p1", 10))
	}

	metrics, err := svc.ReadRealtimeMetrics(ctx)
	require.NoError(t, err)

	// 5 sales over 200 views
	assert.Equal(t, 2.5, metrics.ConversionRate)
	assert.Equal(t, int64(200), metrics.TodayViews)
	assert.Equal(t, int64(5), metrics.SalesCount)
	assert.InDelta(t, 50.0, metrics.TodaySales, 0.001)
}

func TestReadRealtimeMetrics_ZeroViewsZeroRate(t *testing.T) {
	svc, _, _ := newTestRealtime(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordSale(ctx, "p1", 10))

	metrics, err := svc.ReadRealtimeMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, metrics.ConversionRate)
}

func TestReadDailyStats(t *testing.T) {
	svc, _, _ := newTestRealtime(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordView(ctx, "p1", "user-1"))
	require.NoError(t, svc.RecordSale(ctx, "p1", 42.50))

	stats, err := svc.ReadDailyStats(ctx, today())
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Views)
	assert.Equal(t, int64(1), stats.UniqueVisitors)
	assert.InDelta(t, 42.50, stats.SalesAmount, 0.001)
	assert.Equal(t, int64(1), stats.SalesCount)
}

func TestReadDailyStats_RejectsBadDate(t *testing.T) {
	svc, _, _ := newTestRealtime(t)

	_, err := svc.ReadDailyStats(context.Background(), "15-01-2024")
	assert.Error(t, err)
}

func TestReadProductStats(t *testing.T) {
	svc, _, _ := newTestRealtime(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordView(ctx, "p1", ""))
	require.NoError(t, svc.RecordView(ctx, "p1", ""))
	require.NoError(t, svc.RecordSale(ctx, "p1", 15.25))

	stats, err := svc.ReadProductStats(ctx, "p1", today())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Views)
	assert.InDelta(t, 15.25, stats.Sales, 0.001)

	// Untouched product reads as zero
	other, err := svc.ReadProductStats(ctx, "p9", today())
	require.NoError(t, err)
	assert.Equal(t, int64(0), other.Views)
	assert.Equal(t, 0.0, other.Sales)
}
