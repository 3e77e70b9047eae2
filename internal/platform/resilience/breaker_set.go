// internal/platform/resilience/breaker_set.go
package resilience

import (
	"sync"
	"time"
)

// BreakerSet mantiene un circuit breaker por fuente, creado bajo
// demanda con parámetros compartidos.
type BreakerSet struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker

	failureThreshold int
	timeout          time.Duration
	halfOpenMax      int
}

// NewBreakerSet crea un set vacío. Los parámetros no positivos toman
// los defaults de NewCircuitBreaker.
func NewBreakerSet(failureThreshold int, timeout time.Duration, halfOpenMax int) *BreakerSet {
	return &BreakerSet{
		breakers:         make(map[string]*CircuitBreaker),
		failureThreshold: failureThreshold,
		timeout:          timeout,
		halfOpenMax:      halfOpenMax,
	}
}

// For devuelve el breaker de la fuente, creándolo si no existe.
func (s *BreakerSet) For(source string) *CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	cb, ok := s.breakers[source]
	if !ok {
		cb = NewCircuitBreaker(s.failureThreshold, s.timeout, s.halfOpenMax)
		s.breakers[source] = cb
	}
	return cb
}

// OpenSources lista las fuentes con el circuito abierto.
func (s *BreakerSet) OpenSources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var open []string
	for name, cb := range s.breakers {
		if cb.State() == StateOpen {
			open = append(open, name)
		}
	}
	return open
}
