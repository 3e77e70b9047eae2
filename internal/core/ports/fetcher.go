// internal/core/ports/fetcher.go
package ports

import (
	"context"

	"newsrake/internal/core/domain"
)

// FetchRequest describe una ejecución de fetch contra una fuente.
type FetchRequest struct {
	// Spec fuente contra la que se ejecuta la petición
	Spec domain.SourceSpec

	// Query consulta resuelta (topic + plantilla de la fuente)
	Query string

	// Limit máximo de items a recuperar en esta petición
	Limit int

	// Widened indica una consulta ampliada por el compensator (sin
	// restricción site:, matching relajado)
	Widened bool
}

// FetchClient es el port del transporte real de fetch. Retorna la
// secuencia de items crudos o un error tipado vía platform/errors
// (transient/permanent). Una respuesta vacía sin error es un éxito con
// cero resultados, no un fallo.
type FetchClient interface {
	Fetch(ctx context.Context, req FetchRequest) ([]*domain.NewsItem, error)
}
