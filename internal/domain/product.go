package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is one catalog row. Deleting a product only flips IsActive so that
// historical sales keep a valid reference.
type Product struct {
	ID                 uuid.UUID              `json:"id"`
	Name               string                 `json:"name"`
	Slug               string                 `json:"slug"`
	Description        *string                `json:"description,omitempty"`
	SKU                string                 `json:"sku"`
	Category           *string                `json:"category,omitempty"`
	Brand              *string                `json:"brand,omitempty"`
	Price              float64                `json:"price"`
	StockQuantity      int                    `json:"stock_quantity"`
	LowStockThreshold  int                    `json:"low_stock_threshold"`
	DiscountPercentage float64                `json:"discount_percentage"`
	Tags               []string               `json:"tags"`
	IsActive           bool                   `json:"is_active"`
	ImageURL           *string                `json:"image_url,omitempty"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// ProductCreate is the payload for creating a catalog row
type ProductCreate struct {
	Name               string                 `json:"name"`
	Description        *string                `json:"description,omitempty"`
	SKU                string                 `json:"sku"`
	Category           *string                `json:"category,omitempty"`
	Brand              *string                `json:"brand,omitempty"`
	Price              float64                `json:"price"`
	StockQuantity      int                    `json:"stock_quantity"`
	LowStockThreshold  int                    `json:"low_stock_threshold"`
	DiscountPercentage float64                `json:"discount_percentage"`
	Tags               []string               `json:"tags,omitempty"`
	ImageURL           *string                `json:"image_url,omitempty"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

// ProductUpdate carries partial updates; nil fields are left untouched
type ProductUpdate struct {
	Name               *string                `json:"name,omitempty"`
	Description        *string                `json:"description,omitempty"`
	SKU                *string                `json:"sku,omitempty"`
	Category           *string                `json:"category,omitempty"`
	Brand              *string                `json:"brand,omitempty"`
	Price              *float64               `json:"price,omitempty"`
	StockQuantity      *int                   `json:"stock_quantity,omitempty"`
	LowStockThreshold  *int                   `json:"low_stock_threshold,omitempty"`
	DiscountPercentage *float64               `json:"discount_percentage,omitempty"`
	Tags               []string               `json:"tags,omitempty"`
	IsActive           *bool                  `json:"is_active,omitempty"`
	ImageURL           *string                `json:"image_url,omitempty"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

// Stock operations
const (
	StockOpSet      = "set"
	StockOpAdd      = "add"
	StockOpSubtract = "subtract"
)

// StockUpdate adjusts a product's stock quantity
type StockUpdate struct {
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation"` // set, add or subtract
}

// ProductFilter narrows the catalog listing
type ProductFilter struct {
	Category   string
	Brand      string
	MinPrice   *float64
	MaxPrice   *float64
	Tag        string
	InStock    *bool
	Search     string
	ActiveOnly bool
	Skip       int
	Limit      int
}

// ProductListResponse is the paginated catalog listing envelope
type ProductListResponse struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
	Pages int       `json:"pages"`
}
