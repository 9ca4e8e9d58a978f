package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/domain"
	"github.com/LUCKYr16/Loan-management-system/internal/infra/cache"
	"github.com/LUCKYr16/Loan-management-system/internal/infra/observability"
	"github.com/LUCKYr16/Loan-management-system/internal/service"

	"go.uber.org/zap"
)

type customerFixture struct {
	svc       *service.CustomerService
	customers *mockCustomerStore
	users     *mockUserStore
}

func newCustomerFixture() *customerFixture {
	customers := newMockCustomerStore()
	users := newMockUserStore()
	customers.customers["cust-1"] = &domain.CustomerProfile{ID: "cust-1", UserID: "user-c", City: "Springfield"}
	customers.customers["cust-2"] = &domain.CustomerProfile{ID: "cust-2", UserID: "user-x", City: "Lisbon"}
	svc := service.NewCustomerService(customers, users,
		cache.New[*domain.CustomerProfile](time.Minute),
		observability.NewMetrics(), zap.NewNop())
	return &customerFixture{svc: svc, customers: customers, users: users}
}

func TestCustomerList_CustomerSeesOnlySelf(t *testing.T) {
	f := newCustomerFixture()

	list, err := f.svc.List(context.Background(), customerActor, domain.CustomerFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "cust-1" {
		t.Errorf("expected only own profile, got %+v", list)
	}
}

func TestCustomerList_AgentSeesAllWithFilters(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	all, err := f.svc.List(ctx, agentActor, domain.CustomerFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 profiles, got %d", len(all))
	}

	byCity, err := f.svc.List(ctx, agentActor, domain.CustomerFilter{City: "Lisbon"})
	if err != nil {
		t.Fatalf("list by city: %v", err)
	}
	if len(byCity) != 1 || byCity[0].ID != "cust-2" {
		t.Errorf("unexpected filter result: %+v", byCity)
	}
}

func TestCustomerGet_OwnershipHiding(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, customerActor, "cust-1"); err != nil {
		t.Fatalf("own get: %v", err)
	}

	_, err := f.svc.Get(ctx, customerActor, "cust-2")
	var nfErr *domain.ErrNotFound
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected not found for other profile, got %v", err)
	}

	if _, err := f.svc.Get(ctx, agentActor, "cust-2"); err != nil {
		t.Fatalf("agent get: %v", err)
	}
}

func TestCustomerCreate_StaffOnlyForCustomerUsers(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	f.users.users["user-new"] = &domain.User{ID: "user-new", Username: "newbie", Role: domain.RoleCustomer}
	f.users.users["user-agent"] = &domain.User{ID: "user-agent", Username: "staff", Role: domain.RoleAgent}

	var fErr *domain.ErrForbidden
	if _, err := f.svc.Create(ctx, customerActor, &domain.CreateCustomerRequest{UserID: "user-new"}); !errors.As(err, &fErr) {
		t.Fatalf("expected forbidden for customer actor, got %v", err)
	}

	profile, err := f.svc.Create(ctx, agentActor, &domain.CreateCustomerRequest{UserID: "user-new", City: "Oslo"})
	if err != nil {
		t.Fatalf("agent create: %v", err)
	}
	if profile.UserID != "user-new" || profile.City != "Oslo" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	var vErr *domain.ErrValidation
	if _, err := f.svc.Create(ctx, agentActor, &domain.CreateCustomerRequest{UserID: "user-new"}); !errors.As(err, &vErr) {
		t.Errorf("expected validation error for duplicate profile, got %v", err)
	}
	if _, err := f.svc.Create(ctx, agentActor, &domain.CreateCustomerRequest{UserID: "user-agent"}); !errors.As(err, &vErr) {
		t.Errorf("expected validation error for non-customer user, got %v", err)
	}
}

func TestCustomerUpdate_CustomerAlwaysForbidden(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()
	phone := "555-0199"

	// Unlike loans, editing a profile is forbidden even for the owner, and
	// the response says forbidden rather than not found.
	var fErr *domain.ErrForbidden
	if _, err := f.svc.Update(ctx, customerActor, "cust-1", &domain.UpdateCustomerRequest{Phone: &phone}); !errors.As(err, &fErr) {
		t.Fatalf("expected forbidden for own profile, got %v", err)
	}
	if _, err := f.svc.Update(ctx, customerActor, "cust-2", &domain.UpdateCustomerRequest{Phone: &phone}); !errors.As(err, &fErr) {
		t.Fatalf("expected forbidden for other profile, got %v", err)
	}
}

func TestCustomerUpdate_AgentPartialUpdate(t *testing.T) {
	f := newCustomerFixture()
	phone := "555-0199"

	updated, err := f.svc.Update(context.Background(), agentActor, "cust-1", &domain.UpdateCustomerRequest{Phone: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != phone {
		t.Errorf("expected phone %s, got %s", phone, updated.Phone)
	}
	if updated.City != "Springfield" {
		t.Errorf("unset fields must be preserved, got city %s", updated.City)
	}
}

func TestCustomerUpdate_InvalidatesCache(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	// Warm the cache.
	if _, err := f.svc.GetByUser(ctx, "user-c"); err != nil {
		t.Fatalf("get by user: %v", err)
	}

	city := "Shelbyville"
	if _, err := f.svc.Update(ctx, agentActor, "cust-1", &domain.UpdateCustomerRequest{City: &city}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := f.svc.GetByUser(ctx, "user-c")
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if got.City != "Shelbyville" {
		t.Errorf("expected fresh profile after update, got city %s", got.City)
	}
}

func TestCustomerDelete_AdminOnly(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	var fErr *domain.ErrForbidden
	if err := f.svc.Delete(ctx, agentActor, "cust-1"); !errors.As(err, &fErr) {
		t.Fatalf("expected forbidden for agent, got %v", err)
	}

	if err := f.svc.Delete(ctx, adminActor, "cust-1"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	var nfErr *domain.ErrNotFound
	if _, err := f.svc.Get(ctx, adminActor, "cust-1"); !errors.As(err, &nfErr) {
		t.Errorf("expected profile gone, got %v", err)
	}
}

func TestCustomerGetByUser_CachesLookups(t *testing.T) {
	f := newCustomerFixture()
	ctx := context.Background()

	if _, err := f.svc.GetByUser(ctx, "user-c"); err != nil {
		t.Fatalf("first lookup: %v", err)
	}

	// Break the store; a cached profile must still come back.
	f.customers.err = errors.New("store down")
	got, err := f.svc.GetByUser(ctx, "user-c")
	if err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if got.ID != "cust-1" {
		t.Errorf("unexpected cached profile: %+v", got)
	}
}
