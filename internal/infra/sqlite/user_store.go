package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
)

const userColumns = "id, username, email, first_name, last_name, password_hash, role, active, created_at"

// CreateUserWithProfile persists a new user and, when profile is non-nil,
// its customer profile in one transaction.
func (s *Store) CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.CustomerProfile) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, first_name, last_name, password_hash, role, active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.Username, user.Email, user.FirstName, user.LastName,
			user.PasswordHash, string(user.Role), user.Active, user.CreatedAt,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
				return &domain.ErrValidation{Field: "username", Message: "already taken"}
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if profile != nil {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO customers (id, user_id, phone, street_address, zip_code, city, country, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				profile.ID, profile.UserID, profile.Phone, profile.StreetAddress,
				profile.ZipCode, profile.City, profile.Country, profile.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert customer profile: %w", err)
			}
		}
		return nil
	})
}

// GetUserByID retrieves a user by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// ListUsers retrieves all users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ActivateUser marks a user active and returns the updated record.
func (s *Store) ActivateUser(ctx context.Context, id string) (*domain.User, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE users SET active = 1 WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check rows affected: %w", err)
		}
		if affected == 0 {
			return &domain.ErrNotFound{Resource: "user", ID: id}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	u, err := scanUserRow(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "user"}
	}
	return u, err
}

func scanUserRow(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &role, &u.Active, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}
