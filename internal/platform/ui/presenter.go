// internal/platform/ui/presenter.go
package ui

import (
	"time"
)

// RunInfo describe el run al arrancar la presentación.
type RunInfo struct {
	RunID   string
	Topic   string
	Target  int
	Sources int
	Workers int
	Rounds  int
}

// SourceResult es el resumen terminal de una tarea de fetch.
type SourceResult struct {
	Source   string
	Tier     string
	Status   Status
	Items    int
	Attempts int
	Duration time.Duration
}

// RunStats son las estadísticas finales del run.
type RunStats struct {
	Duration    time.Duration
	Rounds      int
	RawItems    int
	FinalItems  int
	SourcesUsed int
	Failed      int
}

// Presenter define la interfaz de presentación del progreso del run.
type Presenter interface {
	// Start inicia la presentación con información del run
	Start(info RunInfo)

	// StartRound notifica el inicio de una ronda de fetch (0 = inicial)
	StartRound(round, tasks int)

	// SourceDone notifica el resultado terminal de una tarea
	SourceDone(result SourceResult)

	// Info muestra un mensaje informativo
	Info(msg string)

	// Warning muestra una advertencia
	Warning(msg string)

	// Error muestra un error
	Error(msg string)

	// Finish cierra la presentación con estadísticas finales
	Finish(stats RunStats)

	// Close libera recursos del presenter
	Close() error
}
