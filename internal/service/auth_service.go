// Package service implements the business logic of the loan management
// system: authentication, customer administration and the loan lifecycle.
// Services enforce the role policy and emit traces and metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
	"github.com/LUCKYr16/Loan-management-system/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const (
	bcryptCost  = 12
	minPassword = 8
)

// AuthService orchestrates registration, login and user administration.
type AuthService struct {
	users     port.UserStore
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users port.UserStore, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// ============================================================
// Register — POST /v1/auth/register
// ============================================================

// Register creates a deactivated account. Customers additionally get a
// profile created in the same transaction; an admin must activate the
// account before it can log in.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "required"}
	}
	if len(req.Password) < minPassword {
		return nil, &domain.ErrValidation{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPassword)}
	}
	switch req.Role {
	case domain.RoleCustomer, domain.RoleAgent:
	case domain.RoleAdmin:
		return nil, &domain.ErrValidation{Field: "role", Message: "admin accounts cannot be self-registered"}
	default:
		return nil, &domain.ErrValidation{Field: "role", Message: "must be customer or agent"}
	}
	span.SetAttributes(attribute.String("role", string(req.Role)))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       false,
		CreatedAt:    now,
	}

	var profile *domain.CustomerProfile
	if req.Role == domain.RoleCustomer {
		profile = &domain.CustomerProfile{
			ID:            uuid.New().String(),
			UserID:        user.ID,
			Phone:         req.Phone,
			StreetAddress: req.StreetAddress,
			ZipCode:       req.ZipCode,
			City:          req.City,
			Country:       req.Country,
			CreatedAt:     now,
		}
	}

	if err := s.users.CreateUserWithProfile(ctx, user, profile); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

// Login verifies credentials and issues an access token. Unknown users,
// deactivated accounts and wrong passwords are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.Active {
		s.logger.Warn("login: deactivated account",
			zap.String("user_id", user.ID),
		)
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: failed password attempt",
			zap.String("user_id", user.ID),
		)
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return &domain.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		UserID:      user.ID,
		Role:        user.Role,
	}, nil
}

// ============================================================
// User administration — admin only
// ============================================================

// ListUsers returns all accounts. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ListUsers")
	defer span.End()

	if actor.Role != domain.RoleAdmin {
		return nil, &domain.ErrForbidden{Action: "list users"}
	}
	return s.users.ListUsers(ctx)
}

// ActivateUser marks an account active so it can log in. Agent accounts
// gain staff access through activation. Admin only.
func (s *AuthService) ActivateUser(ctx context.Context, actor domain.Actor, userID string) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ActivateUser")
	defer span.End()
	span.SetAttributes(attribute.String("target_user_id", userID))

	if actor.Role != domain.RoleAdmin {
		return nil, &domain.ErrForbidden{Action: "activate user"}
	}

	user, err := s.users.ActivateUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user activated",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("activated_by", actor.UserID),
	)
	return user, nil
}

// SeedAdmin ensures the configured admin account exists and is active.
// Called once on startup; a no-op when the username is taken or no
// password is configured.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password, email string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.SeedAdmin")
	defer span.End()

	if password == "" {
		s.logger.Warn("admin seed skipped: no password configured")
		return nil
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil
	} else {
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return fmt.Errorf("check admin account: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUserWithProfile(ctx, admin, nil); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	s.logger.Info("admin account seeded", zap.String("username", username))
	return nil
}

// ============================================================
// Tokens
// ============================================================

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// ValidateAccessToken parses and verifies a token string. Used by the
// auth middleware.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}

func (s *AuthService) signAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:  user.ID,
		Role: string(user.Role),
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "lms-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
