package repository

import (
	"context"
	"fmt"
	"time"

	"commerce-be/internal/domain"
	"commerce-be/pkg/database"

	"github.com/google/uuid"
)

type analyticsRepository struct {
	db *database.PostgresDB
}

// NewAnalyticsRepository creates a PostgreSQL-backed analytics repository
func NewAnalyticsRepository(db *database.PostgresDB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// CreateProductView inserts a product view row
func (r *analyticsRepository) CreateProductView(ctx context.Context, view *domain.ProductView) error {
	query := `
		INSERT INTO product_views (
			id, product_id, user_id, session_id, duration_seconds,
			device_info, ip_address, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING viewed_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		view.ID,
		view.ProductID,
		view.UserID,
		view.SessionID,
		view.DurationSeconds,
		view.DeviceInfo,
		view.IPAddress,
		view.UserAgent,
	).Scan(&view.ViewedAt)

	if err != nil {
		return fmt.Errorf("failed to create product view: %w", err)
	}

	return nil
}

// CreateUserActivity inserts a user activity row
func (r *analyticsRepository) CreateUserActivity(ctx context.Context, activity *domain.UserActivity) error {
	query := `
		INSERT INTO user_activities (
			id, user_id, activity_type, activity_data, ip_address, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		activity.ID,
		activity.UserID,
		activity.ActivityType,
		activity.ActivityData,
		activity.IPAddress,
		activity.UserAgent,
	).Scan(&activity.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user activity: %w", err)
	}

	return nil
}

// CreateSale inserts a sale row; the unique order_id constraint rejects
// duplicate submissions of the same order
func (r *analyticsRepository) CreateSale(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (
			id, order_id, product_id, user_id, amount, quantity,
			sale_date, payment_method, region
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		sale.ID,
		sale.OrderID,
		sale.ProductID,
		sale.UserID,
		sale.Amount,
		sale.Quantity,
		sale.SaleDate,
		sale.PaymentMethod,
		sale.Region,
	)

	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

// SalesReportByDay aggregates sales per calendar day within a range
func (r *analyticsRepository) SalesReportByDay(ctx context.Context, start, end time.Time, productID, userID *uuid.UUID) ([]domain.SalesReportItem, error) {
	query := `
		SELECT sale_date,
		       COALESCE(SUM(amount), 0),
		       COUNT(id),
		       COALESCE(AVG(amount), 0)
		FROM sales
		WHERE sale_date >= $1 AND sale_date <= $2
	`
	args := []interface{}{start, end}

	if productID != nil {
		args = append(args, *productID)
		query += fmt.Sprintf(" AND product_id = $%d", len(args))
	}
	if userID != nil {
		args = append(args, *userID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	query += " GROUP BY sale_date ORDER BY sale_date"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales report by day: %w", err)
	}
	defer rows.Close()

	items := []domain.SalesReportItem{}
	for rows.Next() {
		var saleDate time.Time
		var item domain.SalesReportItem
		if err := rows.Scan(&saleDate, &item.TotalSales, &item.SalesCount, &item.AverageOrderValue); err != nil {
			return nil, fmt.Errorf("failed to scan sales report row: %w", err)
		}
		item.Period = saleDate.Format("2006-01-02")
		items = append(items, item)
	}

	return items, rows.Err()
}

// SalesReportByProduct aggregates sales per product within a range
func (r *analyticsRepository) SalesReportByProduct(ctx context.Context, start, end time.Time, productID, userID *uuid.UUID) ([]domain.SalesReportItem, error) {
	query := `
		SELECT product_id,
		       COALESCE(SUM(amount), 0),
		       COUNT(id),
		       COALESCE(SUM(quantity), 0)
		FROM sales
		WHERE sale_date >= $1 AND sale_date <= $2
	`
	args := []interface{}{start, end}

	if productID != nil {
		args = append(args, *productID)
		query += fmt.Sprintf(" AND product_id = $%d", len(args))
	}
	if userID != nil {
		args = append(args, *userID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	query += " GROUP BY product_id ORDER BY 2 DESC"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales report by product: %w", err)
	}
	defer rows.Close()

	items := []domain.SalesReportItem{}
	for rows.Next() {
		var pid uuid.UUID
		var item domain.SalesReportItem
		if err := rows.Scan(&pid, &item.TotalSales, &item.SalesCount, &item.TotalQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan sales report row: %w", err)
		}
		item.Period = pid.String()
		items = append(items, item)
	}

	return items, rows.Err()
}

// ProductViewsReport aggregates view rows per product within a range
func (r *analyticsRepository) ProductViewsReport(ctx context.Context, start, end time.Time, productID *uuid.UUID, limit int) ([]domain.ProductViewItem, error) {
	query := `
		SELECT product_id,
		       COUNT(id),
		       COUNT(DISTINCT user_id),
		       COALESCE(AVG(duration_seconds), 0)
		FROM product_views
		WHERE viewed_at >= $1 AND viewed_at <= $2
	`
	args := []interface{}{start, end}

	if productID != nil {
		args = append(args, *productID)
		query += fmt.Sprintf(" AND product_id = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" GROUP BY product_id ORDER BY 2 DESC LIMIT $%d", len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query product views report: %w", err)
	}
	defer rows.Close()

	items := []domain.ProductViewItem{}
	for rows.Next() {
		var item domain.ProductViewItem
		if err := rows.Scan(&item.ProductID, &item.ViewCount, &item.UniqueViewers, &item.AverageDuration); err != nil {
			return nil, fmt.Errorf("failed to scan product views row: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UserActivities lists activity rows, newest first
func (r *analyticsRepository) UserActivities(ctx context.Context, filter *domain.UserActivityFilter) ([]domain.UserActivity, error) {
	query := `
		SELECT id, user_id, activity_type, activity_data, created_at, ip_address, user_agent
		FROM user_activities
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.ActivityType != "" {
		args = append(args, filter.ActivityType)
		query += fmt.Sprintf(" AND activity_type = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user activities: %w", err)
	}
	defer rows.Close()

	activities := []domain.UserActivity{}
	for rows.Next() {
		var a domain.UserActivity
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActivityType, &a.ActivityData, &a.CreatedAt, &a.IPAddress, &a.UserAgent); err != nil {
			return nil, fmt.Errorf("failed to scan user activity: %w", err)
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

// UpsertDailyMetrics recomputes the daily summary row from the raw event
// tables. Unlike the Redis counters, these aggregates are keyed by the
// event's own date, so backdated events land on the right day here.
func (r *analyticsRepository) UpsertDailyMetrics(ctx context.Context, date time.Time) (*domain.DailyMetrics, error) {
	metrics := &domain.DailyMetrics{Date: date}

	viewsQuery := `
		SELECT COUNT(id), COUNT(DISTINCT user_id)
		FROM product_views
		WHERE viewed_at::date = $1
	`
	if err := r.db.Pool.QueryRow(ctx, viewsQuery, date).Scan(&metrics.TotalViews, &metrics.UniqueVisitors); err != nil {
		return nil, fmt.Errorf("failed to aggregate views: %w", err)
	}

	salesQuery := `
		SELECT COALESCE(SUM(amount), 0), COUNT(id)
		FROM sales
		WHERE sale_date = $1
	`
	if err := r.db.Pool.QueryRow(ctx, salesQuery, date).Scan(&metrics.TotalSales, &metrics.SalesCount); err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	topQuery := `
		SELECT product_id, COUNT(id) AS view_count
		FROM product_views
		WHERE viewed_at::date = $1
		GROUP BY product_id
		ORDER BY view_count DESC
		LIMIT 5
	`
	rows, err := r.db.Pool.Query(ctx, topQuery, date)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	defer rows.Close()

	metrics.TopProducts = []domain.TopProduct{}
	for rows.Next() {
		var pid uuid.UUID
		var views int64
		if err := rows.Scan(&pid, &views); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		metrics.TopProducts = append(metrics.TopProducts, domain.TopProduct{ProductID: pid.String(), Views: views})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	upsert := `
		INSERT INTO daily_metrics (date, total_views, unique_visitors, total_sales, sales_count, top_products, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (date) DO UPDATE SET
			total_views = EXCLUDED.total_views,
			unique_visitors = EXCLUDED.unique_visitors,
			total_sales = EXCLUDED.total_sales,
			sales_count = EXCLUDED.sales_count,
			top_products = EXCLUDED.top_products,
			updated_at = NOW()
		RETURNING updated_at
	`
	err = r.db.Pool.QueryRow(ctx, upsert,
		metrics.Date,
		metrics.TotalViews,
		metrics.UniqueVisitors,
		metrics.TotalSales,
		metrics.SalesCount,
		metrics.TopProducts,
	).Scan(&metrics.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily metrics: %w", err)
	}

	return metrics, nil
}
