package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
)

const customerColumns = "id, user_id, phone, street_address, zip_code, city, country, created_at"

// CreateCustomer persists a new customer profile.
func (s *Store) CreateCustomer(ctx context.Context, profile *domain.CustomerProfile) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO customers (id, user_id, phone, street_address, zip_code, city, country, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			profile.ID, profile.UserID, profile.Phone, profile.StreetAddress,
			profile.ZipCode, profile.City, profile.Country, profile.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		return nil
	})
}

// GetCustomer retrieves a customer profile by id.
func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.CustomerProfile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = ?", id)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	return c, err
}

// GetCustomerByUser retrieves the profile owned by the given user.
func (s *Store) GetCustomerByUser(ctx context.Context, userID string) (*domain.CustomerProfile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE user_id = ?", userID)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: userID}
	}
	return c, err
}

// ListCustomers retrieves customer profiles matching the filter, newest first.
func (s *Store) ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.CustomerProfile, error) {
	query := "SELECT " + customerColumns + " FROM customers WHERE 1=1"
	var args []any
	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.City != "" {
		query += " AND city = ?"
		args = append(args, filter.City)
	}
	if filter.Country != "" {
		query += " AND country = ?"
		args = append(args, filter.Country)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.CustomerProfile
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// UpdateCustomer persists changes to an existing profile.
func (s *Store) UpdateCustomer(ctx context.Context, profile *domain.CustomerProfile) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE customers SET phone = ?, street_address = ?, zip_code = ?, city = ?, country = ?
			WHERE id = ?`,
			profile.Phone, profile.StreetAddress, profile.ZipCode,
			profile.City, profile.Country, profile.ID,
		)
		if err != nil {
			return fmt.Errorf("update customer: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check rows affected: %w", err)
		}
		if affected == 0 {
			return &domain.ErrNotFound{Resource: "customer", ID: profile.ID}
		}
		return nil
	})
}

// DeleteCustomer removes a profile and all loans attached to it.
func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM loans WHERE customer_id = ?", id); err != nil {
			return fmt.Errorf("delete customer loans: %w", err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete customer: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check rows affected: %w", err)
		}
		if affected == 0 {
			return &domain.ErrNotFound{Resource: "customer", ID: id}
		}
		return nil
	})
}

func scanCustomer(row rowScanner) (*domain.CustomerProfile, error) {
	var c domain.CustomerProfile
	if err := row.Scan(&c.ID, &c.UserID, &c.Phone, &c.StreetAddress,
		&c.ZipCode, &c.City, &c.Country, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return &c, nil
}
