// Package policy holds the access-control decision functions. They are pure:
// a decision depends only on the actor, the requested action and the target
// record. No request globals, no storage access.
package policy

import "github.com/LUCKYr16/Loan-management-system/internal/domain"

// Action enumerates the operations the policy rules on.
type Action string

const (
	ActionList          Action = "list"
	ActionCreate        Action = "create"
	ActionRetrieve      Action = "retrieve"
	ActionUpdate        Action = "update"
	ActionRecordPayment Action = "record_payment"
	ActionDelete        Action = "delete"
)

// Decision is the policy outcome.
//
// Hide deliberately conceals that the record exists: the caller is told
// "not found", not "forbidden". Customers get Hide for records they do not
// own; everything else that is disallowed gets Deny.
type Decision int

const (
	Deny Decision = iota
	Allow
	Hide
)

// DecideLoan rules on a loan-targeted action. The loan is nil for list and
// create (use DecideLoanCreate for create, which needs the target customer).
func DecideLoan(actor domain.Actor, action Action, loan *domain.Loan) Decision {
	switch actor.Role {
	case domain.RoleCustomer:
		// Records owned by someone else do not exist for a customer.
		if loan != nil && loan.CustomerID != actor.CustomerID {
			return Hide
		}
		switch action {
		case ActionList, ActionRetrieve:
			return Allow
		}
		return Deny

	case domain.RoleAgent:
		switch action {
		case ActionList, ActionRetrieve:
			return Allow
		case ActionUpdate:
			// Approved and rejected are terminal: terms and status are
			// frozen once a loan leaves new.
			if loan != nil && loan.Status != domain.LoanStatusNew {
				return Deny
			}
			return Allow
		case ActionRecordPayment:
			// The one mutation an approved loan still accepts.
			if loan != nil && loan.Status == domain.LoanStatusApproved {
				return Allow
			}
			return Deny
		}
		return Deny

	case domain.RoleAdmin:
		switch action {
		case ActionList, ActionRetrieve, ActionDelete:
			return Allow
		}
		return Deny
	}

	return Deny
}

// DecideLoanCreate rules on loan creation for the given target customer.
// Customers may only open loans for themselves; agents for anyone; admins
// not at all.
func DecideLoanCreate(actor domain.Actor, targetCustomerID string) Decision {
	switch actor.Role {
	case domain.RoleCustomer:
		if targetCustomerID == actor.CustomerID {
			return Allow
		}
		return Deny
	case domain.RoleAgent:
		return Allow
	}
	return Deny
}

// DecideCustomer rules on a customer-profile-targeted action. The profile is
// nil for list and create.
func DecideCustomer(actor domain.Actor, action Action, profile *domain.CustomerProfile) Decision {
	switch actor.Role {
	case domain.RoleCustomer:
		switch action {
		case ActionList:
			return Allow
		case ActionRetrieve:
			if profile != nil && profile.UserID != actor.UserID {
				return Hide
			}
			return Allow
		}
		// Customers cannot create, edit or delete profiles, not even
		// their own.
		return Deny

	case domain.RoleAgent:
		switch action {
		case ActionList, ActionRetrieve, ActionCreate, ActionUpdate:
			return Allow
		}
		return Deny

	case domain.RoleAdmin:
		switch action {
		case ActionList, ActionRetrieve, ActionCreate, ActionUpdate, ActionDelete:
			return Allow
		}
	}

	return Deny
}
