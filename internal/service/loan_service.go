package service

import (
	"context"
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
	"github.com/LUCKYr16/Loan-management-system/internal/infra/observability"
	"github.com/LUCKYr16/Loan-management-system/internal/policy"
	"github.com/LUCKYr16/Loan-management-system/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var loanTracer = otel.Tracer("service/loan")

// LoanService orchestrates the loan request lifecycle: submission, agent
// edits, approval/rejection and installment payments.
type LoanService struct {
	loans     port.LoanStore
	customers port.CustomerStore
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewLoanService creates a new loan service.
func NewLoanService(loans port.LoanStore, customers port.CustomerStore, metrics *observability.Metrics, logger *zap.Logger) *LoanService {
	return &LoanService{
		loans:     loans,
		customers: customers,
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns loans visible to the actor. Customer actors are scoped to
// their own loans server-side regardless of the filter they send.
func (s *LoanService) List(ctx context.Context, actor domain.Actor, filter domain.LoanFilter) ([]domain.Loan, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.List")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("loan_list", time.Since(start)) }()

	if policy.DecideLoan(actor, policy.ActionList, nil) != policy.Allow {
		s.metrics.IncrPolicyDenial("loan")
		return nil, &domain.ErrForbidden{Action: "list loans"}
	}

	if actor.Role == domain.RoleCustomer {
		filter.CustomerID = actor.CustomerID
	}
	return s.loans.ListLoans(ctx, filter)
}

// Get returns a single loan. A loan the actor may not see is reported as
// not found, never as forbidden.
func (s *LoanService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Loan, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", id))

	loan, err := s.loans.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	switch policy.DecideLoan(actor, policy.ActionRetrieve, loan) {
	case policy.Hide:
		s.metrics.IncrPolicyDenial("loan")
		return nil, &domain.ErrNotFound{Resource: "loan", ID: id}
	case policy.Deny:
		s.metrics.IncrPolicyDenial("loan")
		return nil, &domain.ErrForbidden{Action: "retrieve loan"}
	}
	return loan, nil
}

// Create submits a new loan request in status new. Customers may only open
// loans for themselves; a missing customer id defaults to their own.
func (s *LoanService) Create(ctx context.Context, actor domain.Actor, req *domain.CreateLoanRequest) (*domain.Loan, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Create")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("loan_create", time.Since(start)) }()

	if req.CustomerID == "" && actor.Role == domain.RoleCustomer {
		req.CustomerID = actor.CustomerID
	}

	if policy.DecideLoanCreate(actor, req.CustomerID) != policy.Allow {
		s.metrics.IncrPolicyDenial("loan")
		return nil, &domain.ErrForbidden{Action: "create loan"}
	}

	if !req.LoanType.Valid() {
		return nil, &domain.ErrValidation{Field: "loan_type", Message: "must be home, car or personal"}
	}
	if !req.Amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if req.Tenure <= 0 {
		return nil, &domain.ErrValidation{Field: "tenure", Message: "must be positive"}
	}
	if req.InterestRate.IsNegative() {
		return nil, &domain.ErrValidation{Field: "interest_rate", Message: "must not be negative"}
	}

	// The target customer must exist; for agents it comes from the payload.
	if _, err := s.customers.GetCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loan := &domain.Loan{
		ID:           uuid.New().String(),
		CustomerID:   req.CustomerID,
		LoanType:     req.LoanType,
		Amount:       req.Amount,
		Tenure:       req.Tenure,
		InterestRate: req.InterestRate,
		Status:       domain.LoanStatusNew,
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	if err := s.loans.CreateLoan(ctx, loan); err != nil {
		return nil, err
	}

	s.metrics.IncrLoanCreated()
	s.logger.Info("loan request submitted",
		zap.String("loan_id", loan.ID),
		zap.String("customer_id", loan.CustomerID),
		zap.String("loan_type", string(loan.LoanType)),
	)
	return loan, nil
}

// Update amends a loan request. Agents edit terms and move status until a
// loan is approved; after that the only accepted mutation is recording a
// payment. The write is conditional on the status read here, so two agents
// racing on the same loan cannot both win.
func (s *LoanService) Update(ctx context.Context, actor domain.Actor, id string, req *domain.UpdateLoanRequest) (*domain.Loan, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", id))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("loan_update", time.Since(start)) }()

	before, err := s.loans.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	action := policy.ActionUpdate
	if req.IsPaymentOnly() {
		action = policy.ActionRecordPayment
	}
	switch policy.DecideLoan(actor, action, before) {
	case policy.Hide:
		s.metrics.IncrPolicyDenial("loan")
		return nil, &domain.ErrNotFound{Resource: "loan", ID: id}
	case policy.Deny:
		s.metrics.IncrPolicyDenial("loan")
		return nil, &domain.ErrForbidden{Action: string(action) + " loan"}
	}

	// A payment is its own operation: it must not ride along with term or
	// status changes, or the installment bookkeeping would be skipped.
	if req.AmountPaid != nil && !req.IsPaymentOnly() {
		return nil, &domain.ErrValidation{Field: "amount_paid", Message: "cannot be combined with other changes"}
	}

	after := before.Clone()
	if req.LoanType != nil {
		if !req.LoanType.Valid() {
			return nil, &domain.ErrValidation{Field: "loan_type", Message: "must be home, car or personal"}
		}
		after.LoanType = *req.LoanType
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
		}
		after.Amount = *req.Amount
	}
	if req.Tenure != nil {
		if *req.Tenure <= 0 {
			return nil, &domain.ErrValidation{Field: "tenure", Message: "must be positive"}
		}
		after.Tenure = *req.Tenure
	}
	if req.InterestRate != nil {
		if req.InterestRate.IsNegative() {
			return nil, &domain.ErrValidation{Field: "interest_rate", Message: "must not be negative"}
		}
		after.InterestRate = *req.InterestRate
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, &domain.ErrValidation{Field: "status", Message: "must be new, approved or rejected"}
		}
		after.Status = *req.Status
	}
	if req.AmountPaid != nil {
		if req.AmountPaid.IsNegative() {
			return nil, &domain.ErrValidation{Field: "amount_paid", Message: "must not be negative"}
		}
		if before.AmountPaid != nil && req.AmountPaid.LessThan(*before.AmountPaid) {
			return nil, &domain.ErrValidation{Field: "amount_paid", Message: "cannot decrease"}
		}
		if req.AmountPaid.GreaterThan(after.Amount) {
			return nil, &domain.ErrValidation{Field: "amount_paid", Message: "cannot exceed the loan amount"}
		}
		after.AmountPaid = req.AmountPaid
	}

	now := time.Now().UTC()
	if err := domain.Transition(before, after, now); err != nil {
		return nil, err
	}
	after.ModifiedAt = now

	if err := s.loans.UpdateLoan(ctx, after, before.Status); err != nil {
		return nil, err
	}

	if after.Status != before.Status {
		s.metrics.IncrLoanTransition(after.Status)
		s.logger.Info("loan status changed",
			zap.String("loan_id", after.ID),
			zap.String("from", string(before.Status)),
			zap.String("to", string(after.Status)),
		)
	}
	if paymentApplied(before, after) {
		s.metrics.IncrPaymentPosted()
		s.logger.Info("payment recorded",
			zap.String("loan_id", after.ID),
			zap.String("amount_paid", after.AmountPaid.String()),
		)
	}
	return after, nil
}

// Delete removes a loan. Admin only; customers are told the loan does not
// exist when it is not theirs.
func (s *LoanService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := loanTracer.Start(ctx, "LoanService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", id))

	loan, err := s.loans.GetLoan(ctx, id)
	if err != nil {
		return err
	}

	switch policy.DecideLoan(actor, policy.ActionDelete, loan) {
	case policy.Hide:
		s.metrics.IncrPolicyDenial("loan")
		return &domain.ErrNotFound{Resource: "loan", ID: id}
	case policy.Deny:
		s.metrics.IncrPolicyDenial("loan")
		return &domain.ErrForbidden{Action: "delete loan"}
	}

	if err := s.loans.DeleteLoan(ctx, id); err != nil {
		return err
	}
	s.logger.Info("loan deleted",
		zap.String("loan_id", id),
		zap.String("deleted_by", actor.UserID),
	)
	return nil
}

// paymentApplied reports whether the update carried a new payment.
func paymentApplied(before, after *domain.Loan) bool {
	if after.AmountPaid == nil {
		return false
	}
	if before.AmountPaid == nil {
		return true
	}
	return after.AmountPaid.GreaterThan(*before.AmountPaid)
}
