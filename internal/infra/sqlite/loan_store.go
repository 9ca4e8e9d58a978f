package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"

	"github.com/shopspring/decimal"
)

const loanColumns = `id, customer_id, loan_type, amount, tenure, interest_rate, status,
	start_date, end_date, principal_amount, emi, amount_paid, no_of_emi_left,
	created_at, modified_at`

// CreateLoan persists a new loan request.
func (s *Store) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO loans (id, customer_id, loan_type, amount, tenure, interest_rate, status,
				start_date, end_date, principal_amount, emi, amount_paid, no_of_emi_left,
				created_at, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			loan.ID, loan.CustomerID, string(loan.LoanType), loan.Amount.String(),
			loan.Tenure, loan.InterestRate.String(), string(loan.Status),
			nullTime(loan.StartDate), nullTime(loan.EndDate),
			nullDecimal(loan.PrincipalAmount), nullDecimal(loan.EMI),
			nullDecimal(loan.AmountPaid), nullInt(loan.NoOfEMILeft),
			loan.CreatedAt, loan.ModifiedAt,
		)
		if err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}
		return nil
	})
}

// GetLoan retrieves a loan by id.
func (s *Store) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+loanColumns+" FROM loans WHERE id = ?", id)
	l, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "loan", ID: id}
	}
	return l, err
}

// ListLoans retrieves loans matching the filter, most recently modified first.
func (s *Store) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.Loan, error) {
	query := "SELECT " + loanColumns + " FROM loans WHERE 1=1"
	var args []any
	if filter.CustomerID != "" {
		query += " AND customer_id = ?"
		args = append(args, filter.CustomerID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Tenure > 0 {
		query += " AND tenure = ?"
		args = append(args, filter.Tenure)
	}
	if filter.StartDate != nil {
		query += " AND start_date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND end_date <= ?"
		args = append(args, *filter.EndDate)
	}
	query += " ORDER BY modified_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, rows.Err()
}

// UpdateLoan persists the loan only if the stored status still equals
// expectStatus. A raced write surfaces as ErrConflict, a missing row as
// ErrNotFound.
func (s *Store) UpdateLoan(ctx context.Context, loan *domain.Loan, expectStatus domain.LoanStatus) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE loans SET loan_type = ?, amount = ?, tenure = ?, interest_rate = ?, status = ?,
				start_date = ?, end_date = ?, principal_amount = ?, emi = ?, amount_paid = ?,
				no_of_emi_left = ?, modified_at = ?
			WHERE id = ? AND status = ?`,
			string(loan.LoanType), loan.Amount.String(), loan.Tenure,
			loan.InterestRate.String(), string(loan.Status),
			nullTime(loan.StartDate), nullTime(loan.EndDate),
			nullDecimal(loan.PrincipalAmount), nullDecimal(loan.EMI),
			nullDecimal(loan.AmountPaid), nullInt(loan.NoOfEMILeft),
			loan.ModifiedAt, loan.ID, string(expectStatus),
		)
		if err != nil {
			return fmt.Errorf("update loan: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check rows affected: %w", err)
		}
		if affected == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				"SELECT EXISTS(SELECT 1 FROM loans WHERE id = ?)", loan.ID).Scan(&exists); err != nil {
				return fmt.Errorf("check loan existence: %w", err)
			}
			if exists {
				return &domain.ErrConflict{Resource: "loan", ID: loan.ID}
			}
			return &domain.ErrNotFound{Resource: "loan", ID: loan.ID}
		}
		return nil
	})
}

// DeleteLoan removes a loan.
func (s *Store) DeleteLoan(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM loans WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete loan: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check rows affected: %w", err)
		}
		if affected == 0 {
			return &domain.ErrNotFound{Resource: "loan", ID: id}
		}
		return nil
	})
}

func scanLoan(row rowScanner) (*domain.Loan, error) {
	var (
		l            domain.Loan
		loanType     string
		amount       string
		interestRate string
		status       string
		startDate    sql.NullTime
		endDate      sql.NullTime
		principal    sql.NullString
		emi          sql.NullString
		amountPaid   sql.NullString
		emiLeft      sql.NullInt64
	)
	if err := row.Scan(&l.ID, &l.CustomerID, &loanType, &amount, &l.Tenure,
		&interestRate, &status, &startDate, &endDate, &principal, &emi,
		&amountPaid, &emiLeft, &l.CreatedAt, &l.ModifiedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan loan: %w", err)
	}

	l.LoanType = domain.LoanType(loanType)
	l.Status = domain.LoanStatus(status)

	var err error
	if l.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if l.InterestRate, err = decimal.NewFromString(interestRate); err != nil {
		return nil, fmt.Errorf("parse interest rate %q: %w", interestRate, err)
	}

	if startDate.Valid {
		l.StartDate = &startDate.Time
	}
	if endDate.Valid {
		l.EndDate = &endDate.Time
	}
	if l.PrincipalAmount, err = parseNullDecimal(principal); err != nil {
		return nil, err
	}
	if l.EMI, err = parseNullDecimal(emi); err != nil {
		return nil, err
	}
	if l.AmountPaid, err = parseNullDecimal(amountPaid); err != nil {
		return nil, err
	}
	if emiLeft.Valid {
		n := int(emiLeft.Int64)
		l.NoOfEMILeft = &n
	}
	return &l, nil
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, fmt.Errorf("parse decimal %q: %w", s.String, err)
	}
	return &d, nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
