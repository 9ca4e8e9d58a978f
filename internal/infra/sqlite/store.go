// Package sqlite implements the store ports on an embedded SQLite database.
// Decimal fields are stored as TEXT so no precision is lost; every mutation
// runs inside a transaction and transient lock contention is retried.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/infra/resilience"

	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the database connection and implements the store ports.
type Store struct {
	db     *sql.DB
	retry  resilience.Config
	logger *zap.Logger
}

// New opens the database, applies pragmas and initializes the schema.
func New(dataSourceName string, retry resilience.Config, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids spurious
	// SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{db: db, retry: retry, logger: logger}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logger.Info("database connection established", zap.String("dsn", dataSourceName))
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		street_address TEXT NOT NULL DEFAULT '',
		zip_code TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		loan_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		tenure INTEGER NOT NULL,
		interest_rate TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date DATETIME,
		end_date DATETIME,
		principal_amount TEXT,
		emi TEXT,
		amount_paid TEXT,
		no_of_emi_left INTEGER,
		created_at DATETIME NOT NULL,
		modified_at DATETIME NOT NULL,
		FOREIGN KEY(customer_id) REFERENCES customers(id)
	);
	CREATE INDEX IF NOT EXISTS idx_loans_customer ON loans(customer_id);
	CREATE INDEX IF NOT EXISTS idx_loans_status ON loans(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic. Lock contention retries the whole transaction.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return resilience.RetryWithBackoff(ctx, s.retry, resilience.IsBusy, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// nullTime converts a *time.Time to its SQL representation.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
