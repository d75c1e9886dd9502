package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerTripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		Name:               "test",
		FailureThreshold:   3,
		SuccessThreshold:   1,
		Timeout:            time.Minute,
		MaxHalfOpenRequest: 1,
	})

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		if err := cb.Execute(func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("attempt %d: got %v, want boom", i, err)
		}
	}

	err := cb.Execute(func() error {
		t.Fatal("call ran while circuit open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("got %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		Name:               "test",
		FailureThreshold:   1,
		SuccessThreshold:   1,
		Timeout:            time.Millisecond,
		MaxHalfOpenRequest: 1,
	})

	if err := cb.Execute(func() error { return errors.New("boom") }); err == nil {
		t.Fatal("expected failure")
	}
	time.Sleep(5 * time.Millisecond)

	// The probe succeeds and the circuit closes again.
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe call: %v", err)
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("call after close: %v", err)
	}
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		Name:               "test",
		FailureThreshold:   2,
		SuccessThreshold:   1,
		Timeout:            time.Minute,
		MaxHalfOpenRequest: 1,
	})

	boom := errors.New("boom")
	cb.Execute(func() error { return boom })
	cb.Execute(func() error { return nil })
	cb.Execute(func() error { return boom })

	// Two non-consecutive failures must not trip a threshold of two.
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("circuit tripped on non-consecutive failures: %v", err)
	}
}
