// internal/platform/resilience/circuit_breaker.go
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen indica que la fuente está en cuarentena por fallos
// repetidos dentro del run.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State representa el estado del circuit breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker amortigua fuentes que fallan de forma sostenida: tras
// failureThreshold fallos consecutivos el circuito se abre y las
// peticiones se rechazan hasta que pasa el timeout, momento en el que
// se admite un número limitado de sondas (half-open).
type CircuitBreaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	probes      int
	probeOKs    int
	lastFailure time.Time

	failureThreshold int
	timeout          time.Duration
	halfOpenMax      int
}

// NewCircuitBreaker crea un breaker cerrado. Los parámetros no
// positivos toman valores por defecto.
func NewCircuitBreaker(failureThreshold int, timeout time.Duration, halfOpenMax int) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if halfOpenMax <= 0 {
		halfOpenMax = 2
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		timeout:          timeout,
		halfOpenMax:      halfOpenMax,
	}
}

// Allow decide si la siguiente petición puede pasar.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastFailure) > cb.timeout {
			cb.state = StateHalfOpen
			cb.probes = 0
			cb.probeOKs = 0
			cb.probes++
			return true
		}
		return false
	case StateHalfOpen:
		if cb.probes < cb.halfOpenMax {
			cb.probes++
			return true
		}
		return false
	}
	return false
}

// RecordSuccess registra un éxito. En half-open, suficientes sondas
// exitosas cierran el circuito.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probeOKs++
		if cb.probeOKs >= cb.halfOpenMax {
			cb.state = StateClosed
			cb.failures = 0
		}
	}
}

// RecordFailure registra un fallo. En half-open reabre de inmediato.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = time.Now()
	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.state = StateOpen
		}
	case StateHalfOpen:
		cb.state = StateOpen
	}
}

// State retorna el estado actual.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
