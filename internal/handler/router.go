// Package handler wires the HTTP surface: routing, auth middleware and the
// translation between HTTP and the service layer.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
	"github.com/LUCKYr16/Loan-management-system/internal/infra/observability"
	"github.com/LUCKYr16/Loan-management-system/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("handler")

// Pinger is a named dependency probe used by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	authSvc *service.AuthService,
	loanSvc *service.LoanService,
	customerSvc *service.CustomerService,
	deps map[string]Pinger,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(MetricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(deps, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(authSvc, logger))
			r.Post("/login", authLoginHandler(authSvc, logger))
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, customerSvc, logger))

			r.Route("/loan-requests", func(r chi.Router) {
				r.Get("/", listLoansHandler(loanSvc, logger))
				r.Post("/", createLoanHandler(loanSvc, logger))
				r.Get("/{loanId}", getLoanHandler(loanSvc, logger))
				r.Put("/{loanId}", updateLoanHandler(loanSvc, logger))
				r.Delete("/{loanId}", deleteLoanHandler(loanSvc, logger))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", listCustomersHandler(customerSvc, logger))
				r.Post("/", createCustomerHandler(customerSvc, logger))
				r.Get("/{customerId}", getCustomerHandler(customerSvc, logger))
				r.Put("/{customerId}", updateCustomerHandler(customerSvc, logger))
				r.Delete("/{customerId}", deleteCustomerHandler(customerSvc, logger))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", listUsersHandler(authSvc, logger))
				r.Post("/{userId}/activate", activateUserHandler(authSvc, logger))
			})

			r.Get("/metrics/summary", metricsSummaryHandler(metrics))
		})
	})

	return r
}

// healthzHandler probes every dependency concurrently and reports the worst
// status. A failed probe degrades the service instead of failing the check,
// so load balancers keep routing while operators investigate.
func healthzHandler(deps map[string]Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)

		results := make([]domain.ServiceHealth, len(names))
		g, gCtx := errgroup.WithContext(ctx)
		for i, name := range names {
			i, name := i, name
			g.Go(func() error {
				start := time.Now()
				err := deps[name].Ping(gCtx)
				status := "healthy"
				if err != nil {
					status = "degraded"
					logger.Warn("health probe failed",
						zap.String("dependency", name),
						zap.Error(err),
					)
				}
				results[i] = domain.ServiceHealth{
					Name:        name,
					Status:      status,
					LatencyMs:   time.Since(start).Milliseconds(),
					LastChecked: now,
				}
				return nil
			})
		}
		_ = g.Wait()

		services := append([]domain.ServiceHealth{
			{Name: "lms-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}, results...)

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthResponse{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSnapshot())
	}
}
