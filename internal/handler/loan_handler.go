package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
	"github.com/LUCKYr16/Loan-management-system/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Loan requests
// ============================================================

// parseLoanFilter builds a filter from query parameters. The customer
// parameter only matters for staff; customer actors are scoped server-side
// no matter what they send.
func parseLoanFilter(r *http.Request) domain.LoanFilter {
	q := r.URL.Query()
	filter := domain.LoanFilter{
		CustomerID: q.Get("customer"),
		Status:     domain.LoanStatus(q.Get("status")),
	}
	if v := q.Get("tenure"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Tenure = n
		}
	}
	if v := q.Get("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := q.Get("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = &t
		}
	}
	return filter
}

func listLoansHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/loan-requests")
		defer span.End()

		loans, err := loanSvc.List(ctx, ActorFromContext(ctx), parseLoanFilter(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if loans == nil {
			loans = []domain.Loan{}
		}
		writeJSON(w, http.StatusOK, loans)
	}
}

func createLoanHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/loan-requests")
		defer span.End()

		var req domain.CreateLoanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		loan, err := loanSvc.Create(ctx, ActorFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, loan)
	}
}

func getLoanHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/loan-requests/{loanId}")
		defer span.End()

		loanID := chi.URLParam(r, "loanId")
		span.SetAttributes(attribute.String("loan.id", loanID))

		loan, err := loanSvc.Get(ctx, ActorFromContext(ctx), loanID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, loan)
	}
}

func updateLoanHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/loan-requests/{loanId}")
		defer span.End()

		loanID := chi.URLParam(r, "loanId")
		span.SetAttributes(attribute.String("loan.id", loanID))

		var req domain.UpdateLoanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		loan, err := loanSvc.Update(ctx, ActorFromContext(ctx), loanID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, loan)
	}
}

func deleteLoanHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/loan-requests/{loanId}")
		defer span.End()

		loanID := chi.URLParam(r, "loanId")
		span.SetAttributes(attribute.String("loan.id", loanID))

		if err := loanSvc.Delete(ctx, ActorFromContext(ctx), loanID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
