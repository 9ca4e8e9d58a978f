// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
)

// UserStore defines data operations for user accounts.
type UserStore interface {
	// CreateUserWithProfile persists a new user and, when profile is
	// non-nil, its customer profile in one transaction.
	CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.CustomerProfile) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ActivateUser(ctx context.Context, id string) (*domain.User, error)
}

// CustomerStore defines data operations for customer profiles.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, profile *domain.CustomerProfile) error
	GetCustomer(ctx context.Context, id string) (*domain.CustomerProfile, error)
	GetCustomerByUser(ctx context.Context, userID string) (*domain.CustomerProfile, error)
	// ListCustomers applies the filter server-side: a non-empty UserID in
	// the filter scopes the result to that user's own profile.
	ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.CustomerProfile, error)
	UpdateCustomer(ctx context.Context, profile *domain.CustomerProfile) error
	DeleteCustomer(ctx context.Context, id string) error
}

// LoanStore defines data operations for loans.
type LoanStore interface {
	CreateLoan(ctx context.Context, loan *domain.Loan) error
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	// ListLoans applies the filter server-side: a non-empty CustomerID in
	// the filter scopes the result to that customer's own loans.
	ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.Loan, error)
	// UpdateLoan persists the loan only if its stored status still equals
	// expectStatus (compare-and-swap). A raced write returns ErrConflict.
	UpdateLoan(ctx context.Context, loan *domain.Loan, expectStatus domain.LoanStatus) error
	DeleteLoan(ctx context.Context, id string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
