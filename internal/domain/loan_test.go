package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"

	"github.com/shopspring/decimal"
)

func newLoan() *domain.Loan {
	return &domain.Loan{
		ID:           "loan-1",
		CustomerID:   "cust-1",
		LoanType:     domain.LoanTypeHome,
		Amount:       decimal.NewFromInt(1000),
		Tenure:       5,
		InterestRate: decimal.NewFromInt(8),
		Status:       domain.LoanStatusNew,
	}
}

func TestTransition_FirstApproval(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	before := newLoan()
	after := before.Clone()
	after.Status = domain.LoanStatusApproved

	if err := domain.Transition(before, after, now); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if after.StartDate == nil || !after.StartDate.Equal(now) {
		t.Errorf("expected start_date %v, got %v", now, after.StartDate)
	}
	wantEnd := now.AddDate(0, 5, 0)
	if after.EndDate == nil || !after.EndDate.Equal(wantEnd) {
		t.Errorf("expected end_date %v, got %v", wantEnd, after.EndDate)
	}
	if after.PrincipalAmount == nil || !after.PrincipalAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected principal 1000, got %v", after.PrincipalAmount)
	}
	if after.NoOfEMILeft == nil || *after.NoOfEMILeft != 5 {
		t.Errorf("expected 5 installments left, got %v", after.NoOfEMILeft)
	}
	if after.EMI == nil || after.EMI.StringFixed(2) != "206.67" {
		t.Errorf("expected emi 206.67, got %v", after.EMI)
	}
}

func TestTransition_ApprovedResaveIsIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	before := newLoan()
	after := before.Clone()
	after.Status = domain.LoanStatusApproved
	if err := domain.Transition(before, after, now); err != nil {
		t.Fatalf("first approval failed: %v", err)
	}

	// Re-save the approved loan later without a payment: derived fields
	// must not move.
	resaved := after.Clone()
	if err := domain.Transition(after, resaved, now.Add(48*time.Hour)); err != nil {
		t.Fatalf("re-save failed: %v", err)
	}

	if !resaved.StartDate.Equal(*after.StartDate) {
		t.Errorf("start_date changed on re-save: %v -> %v", after.StartDate, resaved.StartDate)
	}
	if !resaved.EndDate.Equal(*after.EndDate) {
		t.Errorf("end_date changed on re-save: %v -> %v", after.EndDate, resaved.EndDate)
	}
	if !resaved.PrincipalAmount.Equal(*after.PrincipalAmount) {
		t.Errorf("principal changed on re-save")
	}
	if !resaved.EMI.Equal(*after.EMI) {
		t.Errorf("emi changed on re-save")
	}
	if *resaved.NoOfEMILeft != *after.NoOfEMILeft {
		t.Errorf("no_of_emi_left changed on re-save")
	}
}

func TestTransition_PaymentRecorded(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	before := newLoan()
	approved := before.Clone()
	approved.Status = domain.LoanStatusApproved
	if err := domain.Transition(before, approved, now); err != nil {
		t.Fatalf("approval failed: %v", err)
	}

	paid := decimal.NewFromInt(200)
	after := approved.Clone()
	after.AmountPaid = &paid

	if err := domain.Transition(approved, after, now.AddDate(0, 1, 0)); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	if !after.PrincipalAmount.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected principal 800, got %s", after.PrincipalAmount)
	}
	if *after.NoOfEMILeft != 4 {
		t.Errorf("expected 4 installments left, got %d", *after.NoOfEMILeft)
	}

	// EMI recomputed from the current principal, not the original amount.
	wantEMI, err := domain.ComputeEMI(decimal.NewFromInt(800), decimal.NewFromInt(8), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !after.EMI.Equal(wantEMI) {
		t.Errorf("expected emi %s, got %s", wantEMI, after.EMI)
	}

	// Schedule dates are set exactly once and survive payments.
	if !after.StartDate.Equal(*approved.StartDate) || !after.EndDate.Equal(*approved.EndDate) {
		t.Errorf("schedule dates changed on payment")
	}
}

func TestTransition_SecondPayment(t *testing.T) {
	now := time.Now()

	before := newLoan()
	loan := before.Clone()
	loan.Status = domain.LoanStatusApproved
	if err := domain.Transition(before, loan, now); err != nil {
		t.Fatalf("approval failed: %v", err)
	}

	first := decimal.NewFromInt(200)
	afterFirst := loan.Clone()
	afterFirst.AmountPaid = &first
	if err := domain.Transition(loan, afterFirst, now); err != nil {
		t.Fatalf("first payment failed: %v", err)
	}

	second := decimal.NewFromInt(500)
	afterSecond := afterFirst.Clone()
	afterSecond.AmountPaid = &second
	if err := domain.Transition(afterFirst, afterSecond, now); err != nil {
		t.Fatalf("second payment failed: %v", err)
	}

	if !afterSecond.PrincipalAmount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected principal 500, got %s", afterSecond.PrincipalAmount)
	}
	if *afterSecond.NoOfEMILeft != 3 {
		t.Errorf("expected 3 installments left, got %d", *afterSecond.NoOfEMILeft)
	}
}

func TestTransition_PaymentOnUnapprovedLoan(t *testing.T) {
	before := newLoan()
	after := before.Clone()
	paid := decimal.NewFromInt(100)
	after.AmountPaid = &paid

	err := domain.Transition(before, after, time.Now())
	if err == nil {
		t.Fatal("expected error recording payment on unapproved loan, got nil")
	}
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Errorf("expected ErrValidation, got %T", err)
	}
}

func TestTransition_InvalidTenurePropagates(t *testing.T) {
	before := newLoan()
	before.Tenure = 0
	after := before.Clone()
	after.Status = domain.LoanStatusApproved

	err := domain.Transition(before, after, time.Now())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var invalidTerm *domain.ErrInvalidTerm
	if !errors.As(err, &invalidTerm) {
		t.Errorf("expected ErrInvalidTerm, got %T", err)
	}
	if after.StartDate != nil || after.EMI != nil {
		t.Errorf("derived fields must stay unset when the transition fails")
	}
}

func TestTransition_TerminalStatusesFrozen(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// A rejected loan flipped to approved must not derive a schedule.
	rejected := newLoan()
	rejected.Status = domain.LoanStatusRejected
	after := rejected.Clone()
	after.Status = domain.LoanStatusApproved

	err := domain.Transition(rejected, after, now)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation re-opening rejected loan, got %v", err)
	}
	if after.StartDate != nil || after.EMI != nil || after.PrincipalAmount != nil {
		t.Errorf("derived fields must stay unset when the transition is refused")
	}

	// Approved cannot move back to new either.
	before := newLoan()
	approved := before.Clone()
	approved.Status = domain.LoanStatusApproved
	if err := domain.Transition(before, approved, now); err != nil {
		t.Fatalf("approval failed: %v", err)
	}
	reopened := approved.Clone()
	reopened.Status = domain.LoanStatusNew
	if err := domain.Transition(approved, reopened, now); !errors.As(err, &validation) {
		t.Errorf("expected ErrValidation reverting approved loan, got %v", err)
	}
}

func TestTransition_RejectionDerivesNothing(t *testing.T) {
	before := newLoan()
	after := before.Clone()
	after.Status = domain.LoanStatusRejected

	if err := domain.Transition(before, after, time.Now()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if after.StartDate != nil || after.EndDate != nil || after.EMI != nil || after.PrincipalAmount != nil {
		t.Errorf("rejected loans must not derive schedule fields")
	}
}
