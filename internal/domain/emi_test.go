package domain_test

import (
	"errors"
	"testing"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"

	"github.com/shopspring/decimal"
)

func TestComputeEMI(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		tenure    int
		want      string // rounded to 2 places
	}{
		{"home loan", "1000", "8", 5, "206.67"},
		{"zero rate", "1200", "0", 12, "100.00"},
		{"single installment", "500", "10", 1, "504.17"},
		{"large principal", "250000", "7.5", 240, "2604.17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := decimal.RequireFromString(tt.principal)
			r := decimal.RequireFromString(tt.rate)

			emi, err := domain.ComputeEMI(p, r, tt.tenure)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := emi.StringFixed(2); got != tt.want {
				t.Errorf("expected emi %s, got %s", tt.want, got)
			}
		})
	}
}

func TestComputeEMI_Formula(t *testing.T) {
	// emi = (p + p*r*t/1200) / t, exact under decimal arithmetic
	p := decimal.NewFromInt(1000)
	r := decimal.NewFromInt(8)
	tenure := 5

	emi, err := domain.ComputeEMI(p, r, tenure)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	interest := p.Mul(r).Mul(decimal.NewFromInt(5)).Div(decimal.NewFromInt(1200))
	want := p.Add(interest).Div(decimal.NewFromInt(5))
	if !emi.Equal(want) {
		t.Errorf("expected emi %s, got %s", want, emi)
	}
}

func TestComputeEMI_Deterministic(t *testing.T) {
	p := decimal.RequireFromString("3333.33")
	r := decimal.RequireFromString("9.25")

	first, err := domain.ComputeEMI(p, r, 36)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := domain.ComputeEMI(p, r, 36)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !again.Equal(first) {
			t.Fatalf("expected identical result on recomputation, got %s then %s", first, again)
		}
	}
}

func TestComputeEMI_InvalidTenure(t *testing.T) {
	for _, tenure := range []int{0, -1, -12} {
		_, err := domain.ComputeEMI(decimal.NewFromInt(1000), decimal.NewFromInt(8), tenure)
		if err == nil {
			t.Fatalf("expected error for tenure %d, got nil", tenure)
		}
		var invalidTerm *domain.ErrInvalidTerm
		if !errors.As(err, &invalidTerm) {
			t.Errorf("expected ErrInvalidTerm for tenure %d, got %T", tenure, err)
		}
	}
}
