package domain

import "github.com/shopspring/decimal"

var twelveHundred = decimal.NewFromInt(1200)

// ComputeEMI returns the equal monthly installment for the given principal,
// annual interest rate (percent) and tenure in months:
//
//	interest = principal * rate * tenure / 1200
//	emi      = (principal + interest) / tenure
//
// Flat-interest formula, decimal arithmetic throughout so repeated
// recomputation never drifts. Pure and deterministic.
func ComputeEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if tenureMonths <= 0 {
		return decimal.Zero, &ErrInvalidTerm{Tenure: tenureMonths}
	}

	tenure := decimal.NewFromInt(int64(tenureMonths))
	interest := principal.Mul(annualRatePercent).Mul(tenure).Div(twelveHundred)
	return principal.Add(interest).Div(tenure), nil
}
