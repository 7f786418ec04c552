package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"commerce-be/internal/domain"
	apperrors "commerce-be/pkg/errors"
	"commerce-be/pkg/logger"
	"commerce-be/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// TTL constants for real-time counters
const (
	// TTLDaily covers every date-scoped counter and set. Each write resets the
	// full window (last-write-wins, never additive).
	TTLDaily = 24 * time.Hour

	// TTLActiveUsers bounds the active-users set. The whole set shares one
	// TTL, so an idle member can linger while others keep the set alive.
	TTLActiveUsers = 5 * time.Minute

	// TopProductsLimit is how many ranking entries the dashboard shows
	TopProductsLimit = 5
)

// RealtimeService tracks "today" metrics in Redis without touching PostgreSQL
// on the write path. Counters are approximate and TTL-bounded; the durable
// rows in PostgreSQL remain the system of record.
type RealtimeService struct {
	redis  *redis.Client
	logger *logger.Logger
}

// NewRealtimeService creates a new real-time counter service
func NewRealtimeService(redisClient *redis.Client, logger *logger.Logger) *RealtimeService {
	return &RealtimeService{
		redis:  redisClient,
		logger: logger,
	}
}

// RecordView increments today's view counters for a product. When userID is
// non-empty the user is also added to the unique-visitors and active-users
// sets. Counters are keyed by ingestion date, not the event's own timestamp.
func (s *RealtimeService) RecordView(ctx context.Context, productID, userID string) error {
	if productID == "" {
		return apperrors.NewValidationError("product id is required", nil)
	}

	today := time.Now().Format(redis.DateLayout)
	keys := s.redis.Keys

	pipe := s.redis.Pipeline()

	dailyKey := keys.DailyViews(today)
	pipe.Incr(ctx, dailyKey)
	pipe.Expire(ctx, dailyKey, TTLDaily)

	productKey := keys.ProductViews(productID, today)
	pipe.Incr(ctx, productKey)
	pipe.Expire(ctx, productKey, TTLDaily)

	if userID != "" {
		uniqueKey := keys.DailyUniqueVisitors(today)
		pipe.SAdd(ctx, uniqueKey, userID)
		pipe.Expire(ctx, uniqueKey, TTLDaily)

		activeKey := keys.ActiveUsers()
		pipe.SAdd(ctx, activeKey, userID)
		pipe.Expire(ctx, activeKey, TTLActiveUsers)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to record view counters")
		return fmt.Errorf("failed to record view: %w", err)
	}

	return nil
}

// RecordSale increments today's sales accumulators. The amount uses
// floating-point addition; good enough for a live estimate, not settlement.
func (s *RealtimeService) RecordSale(ctx context.Context, productID string, amount float64) error {
	if productID == "" {
		return apperrors.NewValidationError("product id is required", nil)
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return apperrors.NewValidationError("amount must be a non-negative finite number", nil)
	}

	today := time.Now().Format(redis.DateLayout)
	keys := s.redis.Keys

	pipe := s.redis.Pipeline()

	amountKey := keys.DailySales(today)
	pipe.IncrByFloat(ctx, amountKey, amount)
	pipe.Expire(ctx, amountKey, TTLDaily)

	countKey := keys.DailySalesCount(today)
	pipe.Incr(ctx, countKey)
	pipe.Expire(ctx, countKey, TTLDaily)

	productKey := keys.ProductSales(productID, today)
	pipe.IncrByFloat(ctx, productKey, amount)
	pipe.Expire(ctx, productKey, TTLDaily)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to record sale counters")
		return fmt.Errorf("failed to record sale: %w", err)
	}

	return nil
}

// BumpTopProducts adds delta to the product's score in today's ranking.
// Ties are broken by the store's native sorted-set ordering (unspecified here).
func (s *RealtimeService) BumpTopProducts(ctx context.Context, productID string, delta float64) error {
	if productID == "" {
		return apperrors.NewValidationError("product id is required", nil)
	}

	today := time.Now().Format(redis.DateLayout)
	key := s.redis.Keys.DailyTopProducts(today)

	pipe := s.redis.Pipeline()
	pipe.ZIncrBy(ctx, key, delta, productID)
	pipe.Expire(ctx, key, TTLDaily)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to bump top products ranking")
		return fmt.Errorf("failed to update top products: %w", err)
	}

	return nil
}

// ReadRealtimeMetrics reads today's counters in a single pipelined round trip.
// Missing keys read as zero/empty. A failed pipeline fails the whole read and
// the caller should treat it as "metrics unavailable now".
func (s *RealtimeService) ReadRealtimeMetrics(ctx context.Context) (*domain.RealtimeMetrics, error) {
	today := time.Now().Format(redis.DateLayout)
	keys := s.redis.Keys

	pipe := s.redis.Pipeline()
	viewsCmd := pipe.Get(ctx, keys.DailyViews(today))
	uniqueCmd := pipe.SCard(ctx, keys.DailyUniqueVisitors(today))
	salesCmd := pipe.Get(ctx, keys.DailySales(today))
	salesCountCmd := pipe.Get(ctx, keys.DailySalesCount(today))
	activeCmd := pipe.SCard(ctx, keys.ActiveUsers())
	topCmd := pipe.ZRevRangeByScoreWithScores(ctx, keys.DailyTopProducts(today), &goredis.ZRangeBy{
		Min:    "-inf",
		Max:    "+inf",
		Offset: 0,
		Count:  TopProductsLimit,
	})

	// Exec reports redis.Nil when any GET missed; absent counters are zero,
	// not errors.
	if _, err := pipe.Exec(ctx); err != nil && err != goredis.Nil {
		s.logger.WithError(err).Error("Failed to read realtime metrics")
		return nil, fmt.Errorf("failed to read realtime metrics: %w", err)
	}

	views := intFromGet(viewsCmd)
	salesCount := intFromGet(salesCountCmd)

	conversionRate := 0.0
	if views > 0 {
		conversionRate = round2(float64(salesCount) / float64(views) * 100)
	}

	topProducts := make([]domain.TopProduct, 0, TopProductsLimit)
	for _, entry := range topCmd.Val() {
		member, ok := entry.Member.(string)
		if !ok {
			continue
		}
		topProducts = append(topProducts, domain.TopProduct{
			ProductID: member,
			Views:     int64(entry.Score),
		})
	}

	return &domain.RealtimeMetrics{
		ActiveUsers:    activeCmd.Val(),
		TodayViews:     views,
		TodaySales:     floatFromGet(salesCmd),
		SalesCount:     salesCount,
		ConversionRate: conversionRate,
		UniqueVisitors: uniqueCmd.Val(),
		TopProducts:    topProducts,
	}, nil
}

// ReadDailyStats point-reads the counters for an arbitrary calendar date
func (s *RealtimeService) ReadDailyStats(ctx context.Context, date string) (*domain.DailyStats, error) {
	if _, err := time.Parse(redis.DateLayout, date); err != nil {
		return nil, apperrors.NewValidationError("date must be in YYYY-MM-DD format", nil)
	}

	keys := s.redis.Keys

	pipe := s.redis.Pipeline()
	viewsCmd := pipe.Get(ctx, keys.DailyViews(date))
	uniqueCmd := pipe.SCard(ctx, keys.DailyUniqueVisitors(date))
	salesCmd := pipe.Get(ctx, keys.DailySales(date))
	salesCountCmd := pipe.Get(ctx, keys.DailySalesCount(date))

	if _, err := pipe.Exec(ctx); err != nil && err != goredis.Nil {
		s.logger.WithError(err).Error("Failed to read daily stats")
		return nil, fmt.Errorf("failed to read daily stats: %w", err)
	}

	return &domain.DailyStats{
		Date:           date,
		Views:          intFromGet(viewsCmd),
		UniqueVisitors: uniqueCmd.Val(),
		SalesAmount:    floatFromGet(salesCmd),
		SalesCount:     intFromGet(salesCountCmd),
	}, nil
}

// ReadProductStats point-reads one product's counters for a calendar date
func (s *RealtimeService) ReadProductStats(ctx context.Context, productID, date string) (*domain.ProductDailyStats, error) {
	if productID == "" {
		return nil, apperrors.NewValidationError("product id is required", nil)
	}
	if _, err := time.Parse(redis.DateLayout, date); err != nil {
		return nil, apperrors.NewValidationError("date must be in YYYY-MM-DD format", nil)
	}

	keys := s.redis.Keys

	pipe := s.redis.Pipeline()
	viewsCmd := pipe.Get(ctx, keys.ProductViews(productID, date))
	salesCmd := pipe.Get(ctx, keys.ProductSales(productID, date))

	if _, err := pipe.Exec(ctx); err != nil && err != goredis.Nil {
		s.logger.WithError(err).Error("Failed to read product stats")
		return nil, fmt.Errorf("failed to read product stats: %w", err)
	}

	return &domain.ProductDailyStats{
		ProductID: productID,
		Date:      date,
		Views:     intFromGet(viewsCmd),
		Sales:     floatFromGet(salesCmd),
	}, nil
}

// intFromGet parses a pipelined GET as int64, treating a miss as zero
func intFromGet(cmd *goredis.StringCmd) int64 {
	if cmd.Err() != nil {
		return 0
	}
	v, err := strconv.ParseInt(cmd.Val(), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// floatFromGet parses a pipelined GET as float64, treating a miss as zero
func floatFromGet(cmd *goredis.StringCmd) float64 {
	if cmd.Err() != nil {
		return 0
	}
	v, err := strconv.ParseFloat(cmd.Val(), 64)
	if err != nil {
		return 0
	}
	return v
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
