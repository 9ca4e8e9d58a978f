package domain

import "time"

// Transition applies the loan lifecycle rules to after, given the previously
// persisted state in before. It derives the schedule fields on the first
// approval and on payment recording; any other save leaves them untouched.
// The diff between before and after is explicit, no hidden change tracking.
//
// Rules:
//   - First approval (after approved, schedule dates still unset): stamp
//     start/end dates, seed the outstanding principal from the requested
//     amount, set the remaining installment count to the tenure and compute
//     the EMI.
//   - Payment recorded on an approved loan (after.AmountPaid grew): reduce
//     the outstanding principal to amount - amount_paid, decrement the
//     remaining installment count by one, and recompute the EMI from the
//     current principal if it changed.
//   - Re-saving an approved loan without a payment is a no-op for the
//     derived fields.
//
// An error aborts the transition with after's derived fields unmodified.
func Transition(before, after *Loan, now time.Time) error {
	// Approved and rejected are terminal. Only a loan still in new may
	// change status.
	if after.Status != before.Status && before.Status != LoanStatusNew {
		return &ErrValidation{Field: "status", Message: "approved and rejected loans cannot change status"}
	}

	firstApproval := after.Status == LoanStatusApproved &&
		after.StartDate == nil && after.EndDate == nil

	if firstApproval {
		start := now
		end := now.AddDate(0, after.Tenure, 0)
		emi, err := ComputeEMI(after.Amount, after.InterestRate, after.Tenure)
		if err != nil {
			return err
		}

		after.StartDate = &start
		after.EndDate = &end
		principal := after.Amount
		after.PrincipalAmount = &principal
		left := after.Tenure
		after.NoOfEMILeft = &left
		after.EMI = &emi
		return nil
	}

	if paymentRecorded(before, after) {
		if after.Status != LoanStatusApproved {
			return &ErrValidation{Field: "amount_paid", Message: "payments can only be recorded on approved loans"}
		}

		newPrincipal := after.Amount.Sub(*after.AmountPaid)
		principalChanged := after.PrincipalAmount == nil || !after.PrincipalAmount.Equal(newPrincipal)
		after.PrincipalAmount = &newPrincipal

		if after.NoOfEMILeft != nil {
			left := *after.NoOfEMILeft - 1
			after.NoOfEMILeft = &left
		}

		if principalChanged {
			// Recompute from the current outstanding principal, not the
			// original amount.
			emi, err := ComputeEMI(newPrincipal, after.InterestRate, after.Tenure)
			if err != nil {
				return err
			}
			after.EMI = &emi
		}
	}

	return nil
}

// paymentRecorded reports whether after carries a payment that before did
// not: amount_paid went from unset to set, or increased.
func paymentRecorded(before, after *Loan) bool {
	if after.AmountPaid == nil {
		return false
	}
	if before.AmountPaid == nil {
		return true
	}
	return after.AmountPaid.GreaterThan(*before.AmountPaid)
}
