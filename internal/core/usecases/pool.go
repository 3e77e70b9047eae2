// internal/core/usecases/pool.go
package usecases

import (
	"context"
	"sync"
	"time"

	"newsrake/internal/core/ports"
	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/logx"
	"newsrake/internal/platform/resilience"
)

// PoolOptions configura el pool de ejecución.
type PoolOptions struct {
	// Workers techo global de fetches concurrentes
	Workers int

	// PerSourceConcurrency admisión por fuente (1 = serializar por fuente)
	PerSourceConcurrency int

	Retry RetryPolicy

	// BreakerThreshold fallos consecutivos antes de abrir el breaker de
	// una fuente (0 = default)
	BreakerThreshold int

	// BreakerTimeout tiempo en abierto antes de pasar a half-open
	// (0 = default)
	BreakerTimeout time.Duration

	// BreakerHalfOpenMax peticiones de prueba admitidas en half-open
	// (0 = default)
	BreakerHalfOpenMax int
}

// ExecutionPool ejecuta tareas de fetch con un techo global de
// concurrencia y admisión por fuente, para no martillear un mismo
// endpoint en paralelo. Las tareas core se despachan antes que las
// discovered (el orden de entrada ya viene rankeado).
type ExecutionPool struct {
	client   ports.FetchClient
	opts     PoolOptions
	breakers *resilience.BreakerSet
	logger   logx.Logger
}

// NewExecutionPool crea un pool sobre el cliente de fetch dado.
func NewExecutionPool(client ports.FetchClient, opts PoolOptions, logger logx.Logger) *ExecutionPool {
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.PerSourceConcurrency <= 0 {
		opts.PerSourceConcurrency = 1
	}
	return &ExecutionPool{
		client:   client,
		opts:     opts,
		breakers: resilience.NewBreakerSet(opts.BreakerThreshold, opts.BreakerTimeout, opts.BreakerHalfOpenMax),
		logger:   logger.With("component", "pool"),
	}
}

// Run ejecuta todas las tareas y devuelve las que alcanzaron estado
// terminal. Si el contexto expira a mitad de ronda, las tareas en vuelo
// se abandonan y se devuelve lo completado hasta el momento: el
// deadline degrada, no mata.
func (p *ExecutionPool) Run(ctx context.Context, tasks []*FetchTask) []*FetchTask {
	if len(tasks) == 0 {
		return nil
	}

	global := make(chan struct{}, p.opts.Workers)
	perSource := make(map[string]chan struct{})
	for _, t := range tasks {
		if _, ok := perSource[t.Spec.Name]; !ok {
			perSource[t.Spec.Name] = make(chan struct{}, p.opts.PerSourceConcurrency)
		}
	}

	done := make(chan *FetchTask, len(tasks))
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(t *FetchTask) {
			defer wg.Done()

			breaker := p.breakers.For(t.Spec.Name)
			if !breaker.Allow() {
				t.status = TaskFailed
				t.err = errors.Permanent(resilience.ErrCircuitOpen)
				p.logger.Warn("circuit open, skipping source", "source", t.Spec.Name)
				done <- t
				return
			}

			// Admisión por fuente antes del slot global: esperar turno
			// de fuente no debe consumir un worker
			src := perSource[t.Spec.Name]
			select {
			case src <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-src }()

			select {
			case global <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-global }()

			t.Execute(ctx, p.client, p.opts.Retry, p.logger)
			if t.Succeeded() {
				breaker.RecordSuccess()
			} else {
				breaker.RecordFailure()
			}
			done <- t
		}(task)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	var completed []*FetchTask
	for {
		select {
		case t, ok := <-done:
			if !ok {
				return completed
			}
			completed = append(completed, t)
		case <-ctx.Done():
			// Drenar lo ya terminado sin esperar a las abandonadas
			for {
				select {
				case t, ok := <-done:
					if !ok {
						return completed
					}
					completed = append(completed, t)
				default:
					p.logger.Warn("round deadline reached, abandoning in-flight tasks",
						"completed", len(completed),
						"total", len(tasks),
					)
					return completed
				}
			}
		}
	}
}

// Breakers expone el estado de los circuit breakers por fuente.
func (p *ExecutionPool) Breakers() *resilience.BreakerSet { return p.breakers }
