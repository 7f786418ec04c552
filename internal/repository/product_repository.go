package repository

import (
	"context"
	"fmt"

	"commerce-be/internal/domain"
	"commerce-be/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const productColumns = `
	id, name, slug, description, sku, category, brand, price,
	stock_quantity, low_stock_threshold, discount_percentage, tags,
	is_active, image_url, metadata, created_at, updated_at
`

type productRepository struct {
	db *database.PostgresDB
}

// NewProductRepository creates a PostgreSQL-backed product repository
func NewProductRepository(db *database.PostgresDB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.SKU,
		&p.Category,
		&p.Brand,
		&p.Price,
		&p.StockQuantity,
		&p.LowStockThreshold,
		&p.DiscountPercentage,
		&p.Tags,
		&p.IsActive,
		&p.ImageURL,
		&p.Metadata,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a product by id, nil when absent
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// GetBySlug retrieves a product by slug, nil when absent
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	product, err := scanProduct(r.db.Pool.QueryRow(ctx, query, slug))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}
	return product, nil
}

// GetBySKU retrieves a product by SKU, nil when absent
func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`

	product, err := scanProduct(r.db.Pool.QueryRow(ctx, query, sku))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by sku: %w", err)
	}
	return product, nil
}

// filterClause appends WHERE conditions for a catalog filter
func filterClause(filter *domain.ProductFilter, args []interface{}) (string, []interface{}) {
	clause := ""

	if filter.ActiveOnly {
		clause += " AND is_active = true"
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clause += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		clause += fmt.Sprintf(" AND brand = $%d", len(args))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clause += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clause += fmt.Sprintf(" AND price <= $%d", len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		clause += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	if filter.InStock != nil {
		if *filter.InStock {
			clause += " AND stock_quantity > 0"
		} else {
			clause += " AND stock_quantity = 0"
		}
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clause += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d OR sku ILIKE $%d OR brand ILIKE $%d)", n, n, n, n)
	}

	return clause, args
}

// List retrieves products matching the filter, newest first
func (r *productRepository) List(ctx context.Context, filter *domain.ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`

	clause, args := filterClause(filter, nil)
	query += clause

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	return products, rows.Err()
}

// Count counts products matching the filter
func (r *productRepository) Count(ctx context.Context, filter *domain.ProductFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM products WHERE 1=1`

	clause, args := filterClause(filter, nil)
	query += clause

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// Create inserts a catalog row
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			id, name, slug, description, sku, category, brand, price,
			stock_quantity, low_stock_threshold, discount_percentage, tags,
			is_active, image_url, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.SKU,
		product.Category,
		product.Brand,
		product.Price,
		product.StockQuantity,
		product.LowStockThreshold,
		product.DiscountPercentage,
		product.Tags,
		product.IsActive,
		product.ImageURL,
		product.Metadata,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites a catalog row
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products SET
			name = $2,
			slug = $3,
			description = $4,
			sku = $5,
			category = $6,
			brand = $7,
			price = $8,
			stock_quantity = $9,
			low_stock_threshold = $10,
			discount_percentage = $11,
			tags = $12,
			is_active = $13,
			image_url = $14,
			metadata = $15,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.SKU,
		product.Category,
		product.Brand,
		product.Price,
		product.StockQuantity,
		product.LowStockThreshold,
		product.DiscountPercentage,
		product.Tags,
		product.IsActive,
		product.ImageURL,
		product.Metadata,
	).Scan(&product.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("product %s not found", product.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// SoftDelete flips is_active off, returning false when the row is absent
func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UpdateStock sets the stock quantity for a product
func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.Product, error) {
	query := `
		UPDATE products SET stock_quantity = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.Pool.QueryRow(ctx, query, id, quantity))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	return product, nil
}

// LowStock lists active products at or below their threshold
func (r *productRepository) LowStock(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE stock_quantity <= low_stock_threshold AND is_active = true
		ORDER BY stock_quantity ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	return products, rows.Err()
}

// Categories lists distinct categories of active products
func (r *productRepository) Categories(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "category")
}

// Brands lists distinct brands of active products
func (r *productRepository) Brands(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "brand")
}

func (r *productRepository) distinctColumn(ctx context.Context, column string) ([]string, error) {
	// column is one of two compile-time constants, never user input
	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM products
		WHERE %s IS NOT NULL AND is_active = true
		ORDER BY %s
	`, column, column, column)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}
