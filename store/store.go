package store

import (
	"context"
	"fmt"
	"time"

	"app/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SalesStore is the narrow read contract the forecasting pipeline consumes.
// Row-level scoping by merchant is part of every query; ownership beyond
// that is verified upstream of these calls.
type SalesStore interface {
	OrdersBetween(ctx context.Context, merchantID string, from, to time.Time) ([]models.SalesOrder, error)
	LineItemsForOrders(ctx context.Context, orderIDs []string) ([]models.OrderItem, error)
	ProductPrices(ctx context.Context, merchantID string) (map[string]float64, error)
	Products(ctx context.Context, merchantID string) ([]models.Product, error)
}

// PGStore implements SalesStore over the shared pgx pool.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// OrdersBetween returns a merchant's sales with sale_date in [from, to].
func (s *PGStore) OrdersBetween(ctx context.Context, merchantID string, from, to time.Time) ([]models.SalesOrder, error) {
	query := `
        SELECT id, merchant_id, shop_id, sale_date, total_amount, created_at, updated_at
        FROM sales
        WHERE merchant_id = $1 AND sale_date BETWEEN $2 AND $3
        ORDER BY sale_date
    `
	rows, err := s.db.Query(ctx, query, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	orders := make([]models.SalesOrder, 0)
	for rows.Next() {
		var o models.SalesOrder
		if err := rows.Scan(&o.ID, &o.MerchantID, &o.ShopID, &o.OrderDate, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// LineItemsForOrders returns the line items for the given sales.
func (s *PGStore) LineItemsForOrders(ctx context.Context, orderIDs []string) ([]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []models.OrderItem{}, nil
	}
	query := `
        SELECT id, sale_id, inventory_item_id, item_name, subtotal
        FROM sale_items
        WHERE sale_id = ANY($1)
    `
	rows, err := s.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	items := make([]models.OrderItem, 0)
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ProductPrices returns current unit prices keyed by product id. Archived
// products are included so historical line items still resolve a price.
func (s *PGStore) ProductPrices(ctx context.Context, merchantID string) (map[string]float64, error) {
	query := `
        SELECT id, selling_price
        FROM inventory_items
        WHERE merchant_id = $1
    `
	rows, err := s.db.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]float64)
	for rows.Next() {
		var id string
		var price float64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("failed to scan product price: %w", err)
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

// Products returns a merchant's active catalog.
func (s *PGStore) Products(ctx context.Context, merchantID string) ([]models.Product, error) {
	query := `
        SELECT id, merchant_id, name, sku, selling_price, category, is_archived, created_at, updated_at
        FROM inventory_items
        WHERE merchant_id = $1 AND is_archived = FALSE
        ORDER BY name
    `
	rows, err := s.db.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.MerchantID, &p.Name, &p.SKU, &p.UnitPrice, &p.Category, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
