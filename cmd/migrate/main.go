package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`DROP TABLE IF EXISTS daily_metrics CASCADE`,
		`DROP TABLE IF EXISTS sales CASCADE`,
		`DROP TABLE IF EXISTS user_activities CASCADE`,
		`DROP TABLE IF EXISTS product_views CASCADE`,
		`DROP TABLE IF EXISTS products CASCADE`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			sku VARCHAR(100) NOT NULL UNIQUE,
			category VARCHAR(100),
			brand VARCHAR(100),
			price NUMERIC(12, 2) NOT NULL DEFAULT 0,
			stock_quantity INTEGER NOT NULL DEFAULT 0,
			low_stock_threshold INTEGER NOT NULL DEFAULT 10,
			discount_percentage NUMERIC(5, 2) NOT NULL DEFAULT 0,
			tags TEXT[] NOT NULL DEFAULT '{}',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			image_url TEXT,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
		`CREATE INDEX IF NOT EXISTS idx_products_brand ON products (brand)`,
		`CREATE INDEX IF NOT EXISTS idx_products_is_active ON products (is_active)`,

		`CREATE TABLE IF NOT EXISTS product_views (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL,
			user_id UUID,
			session_id VARCHAR(255) NOT NULL,
			viewed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			device_info JSONB,
			ip_address VARCHAR(45),
			user_agent TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_product_views_product_id ON product_views (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_product_views_viewed_at ON product_views (viewed_at)`,

		`CREATE TABLE IF NOT EXISTS user_activities (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			activity_type VARCHAR(100) NOT NULL,
			activity_data JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ip_address VARCHAR(45),
			user_agent TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_activities_user_id ON user_activities (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_activities_created_at ON user_activities (created_at)`,

		`CREATE TABLE IF NOT EXISTS sales (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL UNIQUE,
			product_id UUID NOT NULL,
			user_id UUID,
			amount NUMERIC(12, 2) NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			sale_date DATE NOT NULL,
			payment_method VARCHAR(50),
			region VARCHAR(100)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_product_id ON sales (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales (sale_date)`,

		`CREATE TABLE IF NOT EXISTS daily_metrics (
			date DATE PRIMARY KEY,
			total_views BIGINT NOT NULL DEFAULT 0,
			unique_visitors BIGINT NOT NULL DEFAULT 0,
			total_sales NUMERIC(14, 2) NOT NULL DEFAULT 0,
			sales_count BIGINT NOT NULL DEFAULT 0,
			top_products JSONB NOT NULL DEFAULT '[]',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec failed: %w", err)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	products := []struct {
		name, slug, sku, category, brand string
		price                            float64
		stock                            int
	}{
		{"Wireless Headphones", "wireless-headphones", "WH-1000", "electronics", "Acme", 129.99, 42},
		{"Mechanical Keyboard", "mechanical-keyboard", "KB-2200", "electronics", "KeyCo", 89.50, 15},
		{"Running Shoes", "running-shoes", "RS-0042", "footwear", "Stride", 74.00, 120},
		{"Stainless Water Bottle", "stainless-water-bottle", "WB-0800", "outdoors", "Hydra", 24.95, 300},
	}

	for _, p := range products {
		_, err := conn.Exec(ctx, `
			INSERT INTO products (id, name, slug, sku, category, brand, price, stock_quantity)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (sku) DO NOTHING
		`, p.name, p.slug, p.sku, p.category, p.brand, p.price, p.stock)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.sku, err)
		}
	}
	return nil
}
