// internal/core/ports/planner.go
package ports

import (
	"context"

	"newsrake/internal/core/domain"
)

// Planner es el port del colaborador externo que propone el catálogo de
// fuentes para un topic. El fallo del planner es fatal para el run: sin
// fuentes no hay nada que recuperar.
type Planner interface {
	// Plan retorna la secuencia ordenada de SourceSpecs para el topic.
	// El orden de la secuencia es el orden de registro (desempates de
	// asignación y truncado respetan este orden).
	Plan(ctx context.Context, topic string) ([]domain.SourceSpec, error)
}
