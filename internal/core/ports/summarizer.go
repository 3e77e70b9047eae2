// internal/core/ports/summarizer.go
package ports

import (
	"context"

	"newsrake/internal/core/domain"
)

// Summary es el contenido que produce el summarizer; opaco para el
// core salvo para su ensamblado en el Report final.
type Summary struct {
	// Prologue introducción del reporte
	Prologue string

	// TopNews items seleccionados y resumidos
	TopNews []domain.ReportItem
}

// Summarizer es el port del colaborador externo que consume el set final
// deduplicado y produce el contenido del reporte.
type Summarizer interface {
	Summarize(ctx context.Context, topic string, items []*domain.NewsItem) (*Summary, error)
}
