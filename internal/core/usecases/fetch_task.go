// internal/core/usecases/fetch_task.go
package usecases

import (
	"context"
	"math"
	"math/rand"
	"time"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/logx"
)

// TaskStatus estado del ciclo de vida de una tarea de fetch.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskInFlight  TaskStatus = "in-flight"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// RetryPolicy parámetros de reintento con backoff exponencial.
type RetryPolicy struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	Multiplier     float64
	BackoffMax     time.Duration
	JitterFraction float64
}

// Delay calcula la espera previa al intento attempt (0-based para el
// primer reintento): base * multiplier^attempt, con techo y jitter.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := time.Duration(float64(p.BackoffBase) * math.Pow(p.Multiplier, float64(attempt)))
	if p.BackoffMax > 0 && d > p.BackoffMax {
		d = p.BackoffMax
	}
	if p.JitterFraction > 0 {
		d += time.Duration(rand.Float64() * p.JitterFraction * float64(d))
	}
	return d
}

// FetchTask unidad de trabajo contra una fuente: query concreta, límite
// de ítems y contador de intentos. El pool la ejecuta hasta éxito,
// fallo permanente o agotamiento de reintentos.
type FetchTask struct {
	Spec    domain.SourceSpec
	Query   string
	Limit   int
	Widened bool
	Round   int

	status   TaskStatus
	attempts int
	items    []*domain.NewsItem
	err      error
	duration time.Duration
}

// NewFetchTask crea una tarea pendiente.
func NewFetchTask(spec domain.SourceSpec, query string, limit, round int) *FetchTask {
	return &FetchTask{
		Spec:   spec,
		Query:  query,
		Limit:  limit,
		Round:  round,
		status: TaskPending,
	}
}

func (t *FetchTask) Status() TaskStatus        { return t.status }
func (t *FetchTask) Attempts() int             { return t.attempts }
func (t *FetchTask) Items() []*domain.NewsItem { return t.items }
func (t *FetchTask) Err() error                { return t.err }
func (t *FetchTask) Duration() time.Duration   { return t.duration }

// Succeeded indica resultado terminal con éxito (cero ítems cuenta
// como éxito: el pozo está seco, no roto).
func (t *FetchTask) Succeeded() bool { return t.status == TaskSucceeded }

// Execute corre la tarea contra el cliente aplicando la política de
// reintentos. Errores transitorios reencolan con backoff; permanentes
// cortan en el acto. Respeta la cancelación del contexto entre intentos.
func (t *FetchTask) Execute(ctx context.Context, client ports.FetchClient, policy RetryPolicy, logger logx.Logger) {
	start := time.Now()
	t.status = TaskInFlight

	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	req := ports.FetchRequest{
		Spec:    t.Spec,
		Query:   t.Query,
		Limit:   t.Limit,
		Widened: t.Widened,
	}

	for {
		t.attempts++
		items, err := client.Fetch(ctx, req)
		if err == nil {
			t.status = TaskSucceeded
			t.items = items
			t.err = nil
			t.duration = time.Since(start)
			logger.Debug("task succeeded",
				"source", t.Spec.Name,
				"items", len(items),
				"attempts", t.attempts,
			)
			return
		}

		err = errors.Classify(err)
		t.err = err

		if errors.IsPermanent(err) || ctx.Err() != nil || t.attempts >= maxAttempts {
			t.status = TaskFailed
			t.duration = time.Since(start)
			logger.Warn("task failed",
				"source", t.Spec.Name,
				"attempts", t.attempts,
				"error", err.Error(),
			)
			return
		}

		delay := policy.Delay(t.attempts - 1)
		logger.Debug("transient failure, retrying",
			"source", t.Spec.Name,
			"attempt", t.attempts,
			"delay", delay.String(),
		)
		select {
		case <-ctx.Done():
			t.status = TaskFailed
			t.duration = time.Since(start)
			return
		case <-time.After(delay):
		}
	}
}
