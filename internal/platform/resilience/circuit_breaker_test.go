package resilience

import (
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute, 1)

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
	}
	if cb.State() != StateClosed {
		t.Fatalf("state after 2 failures = %v, want closed", cb.State())
	}
	if !cb.Allow() {
		t.Fatal("closed breaker should allow requests")
	}

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("state after threshold = %v, want open", cb.State())
	}
	if cb.Allow() {
		t.Fatal("open breaker should reject requests")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute, 1)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed after interleaved success", cb.State())
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, 2)

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	// First probe after the timeout transitions to half-open.
	if !cb.Allow() {
		t.Fatal("first probe after timeout should pass")
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.State())
	}

	// Second probe allowed, third rejected (halfOpenMax = 2).
	if !cb.Allow() {
		t.Fatal("second probe should pass")
	}
	if cb.Allow() {
		t.Fatal("probe beyond halfOpenMax should be rejected")
	}

	cb.RecordSuccess()
	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Fatalf("state after successful probes = %v, want closed", cb.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, 2)

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	if !cb.Allow() {
		t.Fatal("probe after timeout should pass")
	}
	cb.RecordFailure()

	if cb.State() != StateOpen {
		t.Fatalf("state after failed probe = %v, want open", cb.State())
	}
	if cb.Allow() {
		t.Fatal("reopened breaker should reject")
	}
}

func TestBreakerDefaults(t *testing.T) {
	cb := NewCircuitBreaker(0, 0, 0)
	if cb.failureThreshold != 5 || cb.timeout != 30*time.Second || cb.halfOpenMax != 2 {
		t.Errorf("defaults = %d/%v/%d, want 5/30s/2",
			cb.failureThreshold, cb.timeout, cb.halfOpenMax)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestBreakerSetPerSourceIsolation(t *testing.T) {
	set := NewBreakerSet(2, time.Minute, 1)

	a := set.For("flaky-source")
	a.RecordFailure()
	a.RecordFailure()

	if set.For("flaky-source").State() != StateOpen {
		t.Fatal("breaker for flaky-source should be open")
	}
	if set.For("healthy-source").State() != StateClosed {
		t.Fatal("breaker for healthy-source should stay closed")
	}

	open := set.OpenSources()
	if len(open) != 1 || open[0] != "flaky-source" {
		t.Fatalf("OpenSources = %v, want [flaky-source]", open)
	}
}

func TestBreakerSetReturnsSameInstance(t *testing.T) {
	set := NewBreakerSet(0, 0, 0)
	if set.For("src") != set.For("src") {
		t.Fatal("For should return the same breaker for the same source")
	}
}
