package service_test

import (
	"context"
	"sync"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
)

// Map-backed store mocks. An injected err is returned from every call,
// which is enough to exercise the failure paths.

type mockUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*domain.User)}
}

func (m *mockUserStore) CreateUserWithProfile(_ context.Context, user *domain.User, profile *domain.CustomerProfile) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return &domain.ErrValidation{Field: "username", Message: "already taken"}
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return u, nil
}

func (m *mockUserStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user"}
}

func (m *mockUserStore) ListUsers(_ context.Context) ([]domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserStore) ActivateUser(_ context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	u.Active = true
	return u, nil
}

type mockCustomerStore struct {
	mu        sync.Mutex
	customers map[string]*domain.CustomerProfile
	err       error
}

func newMockCustomerStore() *mockCustomerStore {
	return &mockCustomerStore{customers: make(map[string]*domain.CustomerProfile)}
}

func (m *mockCustomerStore) CreateCustomer(_ context.Context, profile *domain.CustomerProfile) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[profile.ID] = profile
	return nil
}

func (m *mockCustomerStore) GetCustomer(_ context.Context, id string) (*domain.CustomerProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	return c, nil
}

func (m *mockCustomerStore) GetCustomerByUser(_ context.Context, userID string) (*domain.CustomerProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "customer", ID: userID}
}

func (m *mockCustomerStore) ListCustomers(_ context.Context, filter domain.CustomerFilter) ([]domain.CustomerProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CustomerProfile
	for _, c := range m.customers {
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		if filter.City != "" && c.City != filter.City {
			continue
		}
		if filter.Country != "" && c.Country != filter.Country {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCustomerStore) UpdateCustomer(_ context.Context, profile *domain.CustomerProfile) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[profile.ID]; !ok {
		return &domain.ErrNotFound{Resource: "customer", ID: profile.ID}
	}
	m.customers[profile.ID] = profile
	return nil
}

func (m *mockCustomerStore) DeleteCustomer(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return &domain.ErrNotFound{Resource: "customer", ID: id}
	}
	delete(m.customers, id)
	return nil
}

type mockLoanStore struct {
	mu    sync.Mutex
	loans map[string]*domain.Loan
	err   error
}

func newMockLoanStore() *mockLoanStore {
	return &mockLoanStore{loans: make(map[string]*domain.Loan)}
}

func (m *mockLoanStore) CreateLoan(_ context.Context, loan *domain.Loan) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan.Clone()
	return nil
}

func (m *mockLoanStore) GetLoan(_ context.Context, id string) (*domain.Loan, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "loan", ID: id}
	}
	return l.Clone(), nil
}

func (m *mockLoanStore) ListLoans(_ context.Context, filter domain.LoanFilter) ([]domain.Loan, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Loan
	for _, l := range m.loans {
		if filter.CustomerID != "" && l.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Tenure > 0 && l.Tenure != filter.Tenure {
			continue
		}
		out = append(out, *l.Clone())
	}
	return out, nil
}

func (m *mockLoanStore) UpdateLoan(_ context.Context, loan *domain.Loan, expectStatus domain.LoanStatus) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.loans[loan.ID]
	if !ok {
		return &domain.ErrNotFound{Resource: "loan", ID: loan.ID}
	}
	if stored.Status != expectStatus {
		return &domain.ErrConflict{Resource: "loan", ID: loan.ID}
	}
	m.loans[loan.ID] = loan.Clone()
	return nil
}

func (m *mockLoanStore) DeleteLoan(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[id]; !ok {
		return &domain.ErrNotFound{Resource: "loan", ID: id}
	}
	delete(m.loans, id)
	return nil
}
