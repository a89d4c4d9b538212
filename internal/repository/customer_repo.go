// Package repository contains the durable-store repositories. They follow a
// shared shape: a struct holding *sql.DB and a logger, methods that accept an
// optional *sql.Tx so callers can compose writes into one transaction, wrapped
// errors, and zap logging on failure paths.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/billing"
)

// CustomerRepository handles customer database operations
type CustomerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB, logger *zap.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger}
}

func (r *CustomerRepository) exec(ctx context.Context, tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

// Upsert inserts or updates a customer keyed by id
func (r *CustomerRepository) Upsert(ctx context.Context, tx *sql.Tx, c *billing.Customer) error {
	if c.Country == "" {
		c.Country = billing.DefaultCountry
	}
	query := `
		INSERT INTO customers (id, name, email, phone, address, city, postal_code, country, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			postal_code = EXCLUDED.postal_code,
			country = EXCLUDED.country,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.exec(ctx, tx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.City, c.PostalCode, c.Country, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to upsert customer", zap.String("customer_id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

// GetByID returns a customer by id
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*billing.Customer, error) {
	query := `
		SELECT id, name, email, phone, address, city, postal_code, country
		FROM customers
		WHERE id = $1
	`
	var c billing.Customer
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.City, &c.PostalCode, &c.Country)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer %s not found", id)
	}
	if err != nil {
		r.logger.Error("Failed to get customer", zap.String("customer_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

// List returns all customers ordered by name
func (r *CustomerRepository) List(ctx context.Context) ([]billing.Customer, error) {
	query := `
		SELECT id, name, email, phone, address, city, postal_code, country
		FROM customers
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list customers", zap.Error(err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []billing.Customer
	for rows.Next() {
		var c billing.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.City, &c.PostalCode, &c.Country); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Delete removes a customer by id
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE id = $1", id); err != nil {
		r.logger.Error("Failed to delete customer", zap.String("customer_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
