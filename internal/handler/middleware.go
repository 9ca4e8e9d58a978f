package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
	"github.com/LUCKYr16/Loan-management-system/internal/infra/observability"
	"github.com/LUCKYr16/Loan-management-system/internal/service"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type contextKey string

const actorKey contextKey = "actor"

// JWTAuthMiddleware validates Bearer tokens and injects the acting identity
// into the request context. Customer tokens are resolved to their profile id
// so services can scope queries to the owner.
func JWTAuthMiddleware(authSvc *service.AuthService, customerSvc *service.CustomerService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "authentication token not provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := authSvc.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			actor := domain.Actor{
				UserID: claims.Sub,
				Role:   domain.Role(claims.Role),
			}
			if !actor.Role.Valid() {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if actor.Role == domain.RoleCustomer {
				profile, err := customerSvc.GetByUser(r.Context(), actor.UserID)
				if err != nil {
					var notFound *domain.ErrNotFound
					if !errors.As(err, &notFound) {
						handleServiceError(w, err, logger)
						return
					}
					// A customer without a profile can still authenticate;
					// ownership checks will simply never match.
				} else {
					actor.CustomerID = profile.ID
				}
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext extracts the authenticated actor from context.
func ActorFromContext(ctx context.Context) domain.Actor {
	v, _ := ctx.Value(actorKey).(domain.Actor)
	return v
}

// MetricsMiddleware counts every request as success or error by response
// status, feeding the request totals behind GET /v1/metrics/summary.
func MetricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= 400 {
				metrics.IncrRequest("error")
			} else {
				metrics.IncrRequest("success")
			}
		})
	}
}
