package observability

import (
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the loan service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	loansCreated    prometheus.Counter
	loanTransitions *prometheus.CounterVec
	paymentsPosted  prometheus.Counter
	policyDenials   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lms_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
		loansCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lms_loans_created_total",
				Help: "Total loan requests submitted.",
			},
		),
		loanTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_loan_transitions_total",
				Help: "Total loan status transitions by resulting status.",
			},
			[]string{"status"},
		),
		paymentsPosted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lms_payments_posted_total",
				Help: "Total installment payments recorded.",
			},
		),
		policyDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_policy_denials_total",
				Help: "Total access-control denials by resource.",
			},
			[]string{"resource"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrLoanCreated increments the loan creation counter.
func (m *Metrics) IncrLoanCreated() {
	m.loansCreated.Inc()
}

// IncrLoanTransition increments the transition counter for a status.
func (m *Metrics) IncrLoanTransition(status domain.LoanStatus) {
	m.loanTransitions.WithLabelValues(string(status)).Inc()
}

// IncrPaymentPosted increments the payment counter.
func (m *Metrics) IncrPaymentPosted() {
	m.paymentsPosted.Inc()
}

// IncrPolicyDenial increments the denial counter for a resource kind.
func (m *Metrics) IncrPolicyDenial(resource string) {
	m.policyDenials.WithLabelValues(resource).Inc()
}

// GetSnapshot returns a snapshot of service metrics suitable for the
// GET /v1/metrics/summary endpoint.
func (m *Metrics) GetSnapshot() *domain.ServiceMetrics {
	// Prometheus counters expose cumulative values.
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")

	errorRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}

	denials := getCounterValue(m.policyDenials, "loan") +
		getCounterValue(m.policyDenials, "customer")

	return &domain.ServiceMetrics{
		TotalRequests:  int64(totalRequests),
		ErrorRate:      errorRate,
		LoansCreated:   int64(readCounter(m.loansCreated)),
		LoansApproved:  int64(getCounterValue(m.loanTransitions, string(domain.LoanStatusApproved))),
		LoansRejected:  int64(getCounterValue(m.loanTransitions, string(domain.LoanStatusRejected))),
		PolicyDenials:  int64(denials),
		PaymentsPosted: int64(readCounter(m.paymentsPosted)),
		Period:         "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// readCounter extracts the current float64 value from a plain Counter.
func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
