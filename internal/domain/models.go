// Package domain defines the core business entities for the loan
// management system. These models are independent of storage and transport
// and represent the canonical data structures used throughout the service.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Users / Roles
// ============================================================

// Role is the closed set of user roles. Exactly one role holds per user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// User represents an account. Self-registered users start deactivated and
// cannot authenticate until an admin activates them.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the authenticated identity a request acts as. CustomerID is the
// actor's own customer profile id, empty for agents and admins.
type Actor struct {
	UserID     string
	Role       Role
	CustomerID string
}

// ============================================================
// Customer profiles
// ============================================================

// CustomerProfile is the contact/address record owned 1:1 by a user with
// role customer. Created at registration, edited by agents and admins only.
type CustomerProfile struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Phone         string    `json:"phone"`
	StreetAddress string    `json:"street_address"`
	ZipCode       string    `json:"zip_code"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	CreatedAt     time.Time `json:"created_at"`
}

// CustomerFilter narrows customer listings. UserID is stamped in by the
// service for customer actors and is never taken from query parameters.
type CustomerFilter struct {
	UserID  string
	City    string
	Country string
}

// ============================================================
// Loans
// ============================================================

// LoanType enumerates the supported loan products.
type LoanType string

const (
	LoanTypeHome     LoanType = "home"
	LoanTypeCar      LoanType = "car"
	LoanTypePersonal LoanType = "personal"
)

// Valid reports whether t is a known loan type.
func (t LoanType) Valid() bool {
	switch t {
	case LoanTypeHome, LoanTypeCar, LoanTypePersonal:
		return true
	}
	return false
}

// LoanStatus enumerates lifecycle states. A loan starts in new; approved and
// rejected are terminal.
type LoanStatus string

const (
	LoanStatusNew      LoanStatus = "new"
	LoanStatusRejected LoanStatus = "rejected"
	LoanStatusApproved LoanStatus = "approved"
)

// Valid reports whether s is a known status.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusNew, LoanStatusRejected, LoanStatusApproved:
		return true
	}
	return false
}

// Loan is the central entity: requested terms plus the derived installment
// schedule. StartDate, EndDate, PrincipalAmount, EMI and NoOfEMILeft are set
// by the lifecycle transition, never by callers directly.
type Loan struct {
	ID              string           `json:"id"`
	CustomerID      string           `json:"customer"`
	LoanType        LoanType         `json:"loan_type"`
	Amount          decimal.Decimal  `json:"amount"`
	Tenure          int              `json:"tenure"`
	InterestRate    decimal.Decimal  `json:"interest_rate"`
	Status          LoanStatus       `json:"status"`
	StartDate       *time.Time       `json:"start_date,omitempty"`
	EndDate         *time.Time       `json:"end_date,omitempty"`
	PrincipalAmount *decimal.Decimal `json:"principal_amount,omitempty"`
	EMI             *decimal.Decimal `json:"emi,omitempty"`
	AmountPaid      *decimal.Decimal `json:"amount_paid,omitempty"`
	NoOfEMILeft     *int             `json:"no_of_emi_left,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	ModifiedAt      time.Time        `json:"modified_at"`
}

// Clone returns a deep copy of the loan. The transition function works on a
// copy so a failed transition never leaves a half-mutated record.
func (l *Loan) Clone() *Loan {
	c := *l
	if l.StartDate != nil {
		d := *l.StartDate
		c.StartDate = &d
	}
	if l.EndDate != nil {
		d := *l.EndDate
		c.EndDate = &d
	}
	if l.PrincipalAmount != nil {
		d := *l.PrincipalAmount
		c.PrincipalAmount = &d
	}
	if l.EMI != nil {
		d := *l.EMI
		c.EMI = &d
	}
	if l.AmountPaid != nil {
		d := *l.AmountPaid
		c.AmountPaid = &d
	}
	if l.NoOfEMILeft != nil {
		n := *l.NoOfEMILeft
		c.NoOfEMILeft = &n
	}
	return &c
}

// LoanFilter narrows loan listings. CustomerID is stamped in by the service
// for customer actors; the remaining fields are equality filters taken from
// query parameters.
type LoanFilter struct {
	CustomerID string
	Status     LoanStatus
	Tenure     int
	StartDate  *time.Time
	EndDate    *time.Time
}

// ============================================================
// Requests
// ============================================================

// RegisterRequest is the payload for user self-registration. Profile fields
// are required for customers and ignored for agents.
type RegisterRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Role          Role   `json:"role"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"street_address"`
	ZipCode       string `json:"zip_code"`
	City          string `json:"city"`
	Country       string `json:"country"`
}

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	UserID      string `json:"user_id"`
	Role        Role   `json:"role"`
}

// CreateLoanRequest is the payload for submitting a loan request.
type CreateLoanRequest struct {
	CustomerID   string          `json:"customer"`
	LoanType     LoanType        `json:"loan_type"`
	Amount       decimal.Decimal `json:"amount"`
	Tenure       int             `json:"tenure"`
	InterestRate decimal.Decimal `json:"interest_rate"`
}

// UpdateLoanRequest is the payload for amending a loan request. Nil fields
// are left unchanged. AmountPaid is the new cumulative total paid and is the
// only field accepted once a loan is approved.
type UpdateLoanRequest struct {
	LoanType     *LoanType        `json:"loan_type,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Tenure       *int             `json:"tenure,omitempty"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
	Status       *LoanStatus      `json:"status,omitempty"`
	AmountPaid   *decimal.Decimal `json:"amount_paid,omitempty"`
}

// IsPaymentOnly reports whether the update records a payment and nothing else.
func (r *UpdateLoanRequest) IsPaymentOnly() bool {
	return r.AmountPaid != nil && r.LoanType == nil && r.Amount == nil &&
		r.Tenure == nil && r.InterestRate == nil && r.Status == nil
}

// CreateCustomerRequest is the payload for creating a customer profile for
// an existing user (agent/admin operation).
type CreateCustomerRequest struct {
	UserID        string `json:"user_id"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"street_address"`
	ZipCode       string `json:"zip_code"`
	City          string `json:"city"`
	Country       string `json:"country"`
}

// UpdateCustomerRequest is the payload for editing a customer profile.
type UpdateCustomerRequest struct {
	Phone         *string `json:"phone,omitempty"`
	StreetAddress *string `json:"street_address,omitempty"`
	ZipCode       *string `json:"zip_code,omitempty"`
	City          *string `json:"city,omitempty"`
	Country       *string `json:"country,omitempty"`
}

// ============================================================
// Operational
// ============================================================

// ServiceHealth describes one dependency in the /healthz response.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// ServiceMetrics is the JSON snapshot served at /v1/metrics/summary.
type ServiceMetrics struct {
	TotalRequests  int64   `json:"total_requests"`
	ErrorRate      float64 `json:"error_rate"`
	LoansCreated   int64   `json:"loans_created"`
	LoansApproved  int64   `json:"loans_approved"`
	LoansRejected  int64   `json:"loans_rejected"`
	PolicyDenials  int64   `json:"policy_denials"`
	PaymentsPosted int64   `json:"payments_posted"`
	Period         string  `json:"period"`
}
