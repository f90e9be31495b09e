package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the tables the data stores depend on. Store
// revenue is never persisted; it is computed from order_items at read time.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		role TEXT NOT NULL,
		object_id INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		signature TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		PRIMARY KEY (user_id, signature)
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		image TEXT NOT NULL,
		price BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS franchises (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id SERIAL PRIMARY KEY,
		franchise_id INTEGER NOT NULL REFERENCES franchises(id),
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		franchise_id INTEGER NOT NULL,
		store_id INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id SERIAL PRIMARY KEY,
		order_id INTEGER NOT NULL REFERENCES orders(id),
		menu_id INTEGER NOT NULL,
		description TEXT NOT NULL,
		price BIGINT NOT NULL
	)`,
}

// InitSchema creates any missing tables. Safe to run on every startup.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema init failed: %w", err)
		}
	}
	return nil
}
