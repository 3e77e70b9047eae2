// internal/core/domain/report.go
package domain

import "time"

// Report es el contenido final del run: el set curado de items más el
// resumen que produce el summarizer. Su rendering (HTML, etc.) queda
// fuera del core.
type Report struct {
	// ID identificador del run que lo produjo
	ID string `json:"run_id"`

	// Topic tema del run
	Topic string `json:"topic"`

	// GeneratedAt momento de generación
	GeneratedAt time.Time `json:"generated_at"`

	// Prologue introducción generada por el summarizer
	Prologue string `json:"prologue,omitempty"`

	// TopNews items seleccionados y resumidos
	TopNews []ReportItem `json:"top_news"`

	// Quota estado de quota por tier al cierre del run
	Quota []TierQuotaStatus `json:"quota"`

	// Warnings advertencias acumuladas del run (shortfalls, deadline, ...)
	Warnings []string `json:"warnings,omitempty"`

	// Metadata información de ejecución
	Metadata ReportMetadata `json:"metadata"`

	// Items colección final completa; viaja con el informe para los
	// writers auxiliares pero no se serializa dentro de él
	Items []*NewsItem `json:"-"`
}

// ReportItem es un item resumido por el summarizer.
type ReportItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
	Comment string `json:"comment"`
}

// ReportMetadata contiene métricas de la ejecución.
type ReportMetadata struct {
	// Duration duración total del run
	Duration time.Duration `json:"duration_ns"`

	// Rounds rondas de compensación ejecutadas
	Rounds int `json:"rounds"`

	// RawItems items crudos aceptados antes del filtro final
	RawItems int `json:"raw_items"`

	// FinalItems items tras dedupe y noise filter
	FinalItems int `json:"final_items"`

	// SourcesUsed fuentes que entregaron al menos un item
	SourcesUsed []string `json:"sources_used"`

	// Version versión del binario
	Version string `json:"version"`
}
