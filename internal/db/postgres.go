package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectPostgres opens a pgx pool against the given DSN and bootstraps the schema.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return pool, nil
}

// initSchema creates or updates the database schema.
func initSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		// -------------------------------
		// USERS & OPERATION LOGS
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(100) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			name VARCHAR(100) NOT NULL,
			role VARCHAR(20) NOT NULL,
			phone VARCHAR(30),
			status INT NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS operation_logs (
			id SERIAL PRIMARY KEY,
			user_id INT,
			user_name VARCHAR(100),
			action VARCHAR(50) NOT NULL,
			target_type VARCHAR(50),
			target_id INT,
			details TEXT,
			ip_address VARCHAR(64),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// -------------------------------
		// ITEM CATALOG
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS item_categories (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			sort_order INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS common_items (
			id SERIAL PRIMARY KEY,
			category_id INT NOT NULL,
			item_name VARCHAR(100) UNIQUE NOT NULL,
			unit VARCHAR(20) NOT NULL,
			last_price NUMERIC(12,2) NOT NULL DEFAULT 0
		)`,

		// -------------------------------
		// PURCHASE APPLICATIONS
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS applications (
			id SERIAL PRIMARY KEY,
			app_no VARCHAR(30) NOT NULL,
			purchaser_id INT NOT NULL,
			purchaser_name VARCHAR(100) NOT NULL,
			purchase_date DATE NOT NULL,
			notes TEXT,
			total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			review_time TIMESTAMP,
			reviewer_id INT,
			review_notes TEXT,
			accounting_status VARCHAR(20),
			accounting_time TIMESTAMP,
			accounting_person VARCHAR(100),
			accounting_notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS application_items (
			id SERIAL PRIMARY KEY,
			application_id INT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
			item_name VARCHAR(100) NOT NULL,
			quantity NUMERIC(12,2) NOT NULL,
			unit VARCHAR(20),
			price NUMERIC(12,2) NOT NULL,
			subtotal NUMERIC(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attachments (
			id SERIAL PRIMARY KEY,
			application_id INT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
			file_name VARCHAR(255) NOT NULL,
			file_path VARCHAR(500) NOT NULL,
			file_type VARCHAR(100),
			file_size BIGINT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// -------------------------------
		// DAILY GUEST COUNTS
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS daily_counts (
			id SERIAL PRIMARY KEY,
			record_date DATE UNIQUE NOT NULL,
			guest_count INT NOT NULL,
			notes TEXT,
			recorder_id INT
		)`,

		// -------------------------------
		// LEARNED AGGREGATES
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS price_history (
			id SERIAL PRIMARY KEY,
			item_name VARCHAR(100) UNIQUE NOT NULL,
			total_price NUMERIC(14,2) NOT NULL DEFAULT 0,
			count INT NOT NULL DEFAULT 0,
			min_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			max_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			alert_threshold NUMERIC(6,2) NOT NULL DEFAULT 20
		)`,
		`CREATE TABLE IF NOT EXISTS consumption_rates (
			id SERIAL PRIMARY KEY,
			item_name VARCHAR(100) UNIQUE NOT NULL,
			total_rate NUMERIC(16,6) NOT NULL DEFAULT 0,
			count INT NOT NULL DEFAULT 0,
			avg_rate NUMERIC(16,6) NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
