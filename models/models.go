package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// --- Core Models ---

// Product represents an item in a merchant's catalog.
type Product struct {
	ID         string    `json:"id"`
	MerchantID string    `json:"merchant_id"`
	Name       string    `json:"name"`
	SKU        *string   `json:"sku,omitempty"`
	UnitPrice  float64   `json:"unit_price"`
	Category   *string   `json:"category,omitempty"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SalesOrder represents a single completed transaction.
type SalesOrder struct {
	ID          string    `json:"id"`
	MerchantID  string    `json:"merchant_id"`
	ShopID      *string   `json:"shop_id,omitempty"`
	OrderDate   time.Time `json:"order_date"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderItem is an individual line within a SalesOrder.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductID   string  `json:"product_id"`
	ProductName *string `json:"product_name,omitempty"`
	LineTotal   float64 `json:"line_total"`
}
