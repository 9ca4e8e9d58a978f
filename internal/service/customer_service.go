package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
	"github.com/LUCKYr16/Loan-management-system/internal/infra/observability"
	"github.com/LUCKYr16/Loan-management-system/internal/policy"
	"github.com/LUCKYr16/Loan-management-system/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var customerTracer = otel.Tracer("service/customer")

// CustomerService manages customer profiles. Profiles are read by their
// owners but edited only by staff.
type CustomerService struct {
	customers port.CustomerStore
	users     port.UserStore
	cache     port.Cache[*domain.CustomerProfile]
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customers port.CustomerStore, users port.UserStore, cache port.Cache[*domain.CustomerProfile], metrics *observability.Metrics, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		users:     users,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns profiles visible to the actor. Customer actors only ever see
// their own profile, whatever filters they send.
func (s *CustomerService) List(ctx context.Context, actor domain.Actor, filter domain.CustomerFilter) ([]domain.CustomerProfile, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.List")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("customer_list", time.Since(start)) }()

	if policy.DecideCustomer(actor, policy.ActionList, nil) != policy.Allow {
		s.metrics.IncrPolicyDenial("customer")
		return nil, &domain.ErrForbidden{Action: "list customers"}
	}

	if actor.Role == domain.RoleCustomer {
		filter.UserID = actor.UserID
	}
	return s.customers.ListCustomers(ctx, filter)
}

// Get returns a single profile. Customers asking for someone else's profile
// are told it does not exist.
func (s *CustomerService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.CustomerProfile, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", id))

	profile, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	switch policy.DecideCustomer(actor, policy.ActionRetrieve, profile) {
	case policy.Hide:
		s.metrics.IncrPolicyDenial("customer")
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	case policy.Deny:
		s.metrics.IncrPolicyDenial("customer")
		return nil, &domain.ErrForbidden{Action: "retrieve customer"}
	}
	return profile, nil
}

// GetByUser resolves the profile owned by a user, serving repeat lookups
// from the cache. Used on every authenticated customer request to scope
// queries, so it has to be cheap.
func (s *CustomerService) GetByUser(ctx context.Context, userID string) (*domain.CustomerProfile, error) {
	cacheKey := "profile:" + userID
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	profile, err := s.customers.GetCustomerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, profile)
	return profile, nil
}

// Create attaches a profile to an existing customer-role user. Staff only;
// self-registered customers get theirs at registration.
func (s *CustomerService) Create(ctx context.Context, actor domain.Actor, req *domain.CreateCustomerRequest) (*domain.CustomerProfile, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.Create")
	defer span.End()

	if policy.DecideCustomer(actor, policy.ActionCreate, nil) != policy.Allow {
		s.metrics.IncrPolicyDenial("customer")
		return nil, &domain.ErrForbidden{Action: "create customer"}
	}

	user, err := s.users.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleCustomer {
		return nil, &domain.ErrValidation{Field: "user_id", Message: "user is not a customer"}
	}

	if _, err := s.customers.GetCustomerByUser(ctx, req.UserID); err == nil {
		return nil, &domain.ErrValidation{Field: "user_id", Message: "user already has a profile"}
	} else {
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("check existing profile: %w", err)
		}
	}

	profile := &domain.CustomerProfile{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		Phone:         req.Phone,
		StreetAddress: req.StreetAddress,
		ZipCode:       req.ZipCode,
		City:          req.City,
		Country:       req.Country,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.customers.CreateCustomer(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("customer profile created",
		zap.String("customer_id", profile.ID),
		zap.String("user_id", profile.UserID),
		zap.String("created_by", actor.UserID),
	)
	return profile, nil
}

// Update edits a profile. Staff only; the cached copy is invalidated so the
// owner sees the change immediately.
func (s *CustomerService) Update(ctx context.Context, actor domain.Actor, id string, req *domain.UpdateCustomerRequest) (*domain.CustomerProfile, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", id))

	profile, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	switch policy.DecideCustomer(actor, policy.ActionUpdate, profile) {
	case policy.Hide:
		s.metrics.IncrPolicyDenial("customer")
		return nil, &domain.ErrNotFound{Resource: "customer", ID: id}
	case policy.Deny:
		s.metrics.IncrPolicyDenial("customer")
		return nil, &domain.ErrForbidden{Action: "update customer"}
	}

	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.StreetAddress != nil {
		profile.StreetAddress = *req.StreetAddress
	}
	if req.ZipCode != nil {
		profile.ZipCode = *req.ZipCode
	}
	if req.City != nil {
		profile.City = *req.City
	}
	if req.Country != nil {
		profile.Country = *req.Country
	}

	if err := s.customers.UpdateCustomer(ctx, profile); err != nil {
		return nil, err
	}
	s.cache.Delete("profile:" + profile.UserID)

	s.logger.Info("customer profile updated",
		zap.String("customer_id", profile.ID),
		zap.String("updated_by", actor.UserID),
	)
	return profile, nil
}

// Delete removes a profile and its loans. Admin only.
func (s *CustomerService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := customerTracer.Start(ctx, "CustomerService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", id))

	profile, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return err
	}

	switch policy.DecideCustomer(actor, policy.ActionDelete, profile) {
	case policy.Hide:
		s.metrics.IncrPolicyDenial("customer")
		return &domain.ErrNotFound{Resource: "customer", ID: id}
	case policy.Deny:
		s.metrics.IncrPolicyDenial("customer")
		return &domain.ErrForbidden{Action: "delete customer"}
	}

	if err := s.customers.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.cache.Delete("profile:" + profile.UserID)

	s.logger.Info("customer profile deleted",
		zap.String("customer_id", id),
		zap.String("deleted_by", actor.UserID),
	)
	return nil
}
