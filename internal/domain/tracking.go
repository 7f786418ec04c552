package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductView is a durable row recording a single product page view
type ProductView struct {
	ID              uuid.UUID              `json:"id"`
	ProductID       uuid.UUID              `json:"product_id"`
	UserID          *uuid.UUID             `json:"user_id,omitempty"` // nil for anonymous viewers
	SessionID       string                 `json:"session_id"`
	ViewedAt        time.Time              `json:"viewed_at"`
	DurationSeconds int                    `json:"duration_seconds"`
	DeviceInfo      map[string]interface{} `json:"device_info,omitempty"`
	IPAddress       *string                `json:"ip_address,omitempty"`
	UserAgent       *string                `json:"user_agent,omitempty"`
}

// UserActivity is a durable row recording one user action (login, search, ...)
type UserActivity struct {
	ID           uuid.UUID              `json:"id"`
	UserID       uuid.UUID              `json:"user_id"`
	ActivityType string                 `json:"activity_type"`
	ActivityData map[string]interface{} `json:"activity_data,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	IPAddress    *string                `json:"ip_address,omitempty"`
	UserAgent    *string                `json:"user_agent,omitempty"`
}

// Sale is a durable row recording one completed purchase
type Sale struct {
	ID            uuid.UUID  `json:"id"`
	OrderID       uuid.UUID  `json:"order_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	Amount        float64    `json:"amount"`
	Quantity      int        `json:"quantity"`
	SaleDate      time.Time  `json:"sale_date"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	Region        *string    `json:"region,omitempty"`
}

// ProductViewCreate is the tracking request payload for a product view
type ProductViewCreate struct {
	ProductID       uuid.UUID              `json:"product_id"`
	UserID          *uuid.UUID             `json:"user_id,omitempty"`
	SessionID       string                 `json:"session_id"`
	DurationSeconds int                    `json:"duration_seconds"`
	DeviceInfo      map[string]interface{} `json:"device_info,omitempty"`
	IPAddress       *string                `json:"ip_address,omitempty"`
	UserAgent       *string                `json:"user_agent,omitempty"`
}

// UserActivityCreate is the tracking request payload for a user activity
type UserActivityCreate struct {
	UserID       uuid.UUID              `json:"user_id"`
	ActivityType string                 `json:"activity_type"`
	ActivityData map[string]interface{} `json:"activity_data,omitempty"`
	IPAddress    *string                `json:"ip_address,omitempty"`
	UserAgent    *string                `json:"user_agent,omitempty"`
}

// SaleCreate is the tracking request payload for a completed sale
type SaleCreate struct {
	OrderID       uuid.UUID  `json:"order_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	Amount        float64    `json:"amount"`
	Quantity      int        `json:"quantity"`
	SaleDate      time.Time  `json:"sale_date"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	Region        *string    `json:"region,omitempty"`
}
