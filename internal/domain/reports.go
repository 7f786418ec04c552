package domain

import (
	"time"

	"github.com/google/uuid"
)

// TopProduct is one entry of the daily top-products ranking
type TopProduct struct {
	ProductID string `json:"product_id"`
	Views     int64  `json:"views"`
}

// RealtimeMetrics are the approximate "today so far" numbers served to the
// dashboard straight from Redis, never from PostgreSQL.
type RealtimeMetrics struct {
	ActiveUsers    int64        `json:"active_users"`
	TodayViews     int64        `json:"today_views"`
	TodaySales     float64      `json:"today_sales"`
	SalesCount     int64        `json:"sales_count"`
	ConversionRate float64      `json:"conversion_rate"`
	UniqueVisitors int64        `json:"unique_visitors"`
	TopProducts    []TopProduct `json:"top_products"`
}

// DailyStats are the point-read counters for one calendar date
type DailyStats struct {
	Date           string  `json:"date"`
	Views          int64   `json:"views"`
	UniqueVisitors int64   `json:"unique_visitors"`
	SalesAmount    float64 `json:"sales_amount"`
	SalesCount     int64   `json:"sales_count"`
}

// ProductDailyStats are the per-product counters for one calendar date
type ProductDailyStats struct {
	ProductID string  `json:"product_id"`
	Date      string  `json:"date"`
	Views     int64   `json:"views"`
	Sales     float64 `json:"sales"`
}

// SalesReportRequest selects and groups durable sales rows
type SalesReportRequest struct {
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	GroupBy   string     `json:"group_by"` // day or product
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
}

// SalesReportItem is one grouped row of a sales report
type SalesReportItem struct {
	Period            string  `json:"period"`
	TotalSales        float64 `json:"total_sales"`
	SalesCount        int64   `json:"sales_count"`
	AverageOrderValue float64 `json:"average_order_value,omitempty"`
	TotalQuantity     int64   `json:"total_quantity,omitempty"`
}

// SalesReportSummary aggregates a whole sales report
type SalesReportSummary struct {
	TotalSales        float64           `json:"total_sales"`
	TotalOrders       int64             `json:"total_orders"`
	AverageOrderValue float64           `json:"average_order_value"`
	Period            map[string]string `json:"period"`
}

// SalesReportResponse is the cached/serveable sales report body
type SalesReportResponse struct {
	Items   []SalesReportItem  `json:"items"`
	Summary SalesReportSummary `json:"summary"`
}

// ProductViewsReportRequest selects durable view rows for a period
type ProductViewsReportRequest struct {
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Limit     int        `json:"limit"`
}

// ProductViewItem is one product's aggregate in a views report
type ProductViewItem struct {
	ProductID       uuid.UUID `json:"product_id"`
	ViewCount       int64     `json:"view_count"`
	UniqueViewers   int64     `json:"unique_viewers"`
	AverageDuration float64   `json:"average_duration"`
}

// ProductViewsReportResponse is the cached/serveable views report body
type ProductViewsReportResponse struct {
	Items  []ProductViewItem `json:"items"`
	Period map[string]string `json:"period"`
}

// UserActivityFilter narrows the admin activity listing
type UserActivityFilter struct {
	UserID       *uuid.UUID
	ActivityType string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
}

// DailyMetrics is the durable pre-aggregated row for one calendar date,
// written by the daily aggregation pass.
type DailyMetrics struct {
	Date           time.Time    `json:"date"`
	TotalViews     int64        `json:"total_views"`
	UniqueVisitors int64        `json:"unique_visitors"`
	TotalSales     float64      `json:"total_sales"`
	SalesCount     int64        `json:"sales_count"`
	TopProducts    []TopProduct `json:"top_products"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
