package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LUCKYr16/Loan-management-system/internal/infra/resilience"
)

var cfg = resilience.Config{MaxRetries: 3, InitialBackoff: time.Millisecond}

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, nil, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	attempts := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, nil, func() error {
		attempts++
		return errors.New("database is locked")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != cfg.MaxRetries+1 {
		t.Errorf("expected %d attempts, got %d", cfg.MaxRetries+1, attempts)
	}
}

func TestRetryWithBackoff_NonRetryableFailsFast(t *testing.T) {
	attempts := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, resilience.IsBusy, func() error {
		attempts++
		return errors.New("constraint violation")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.RetryWithBackoff(ctx, cfg, nil, func() error {
		return errors.New("database is locked")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsBusy(t *testing.T) {
	if !resilience.IsBusy(errors.New("database is locked")) {
		t.Error("expected lock error to be retryable")
	}
	if resilience.IsBusy(errors.New("UNIQUE constraint failed")) {
		t.Error("expected constraint error to not be retryable")
	}
	if resilience.IsBusy(nil) {
		t.Error("nil is not retryable")
	}
}
