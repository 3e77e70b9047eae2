// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// PTermPresenter implementa Presenter usando pterm para renderizar
// colores y símbolos en la terminal.
type PTermPresenter struct {
	mu sync.Mutex

	info     RunInfo
	round    int
	finished int
	tasks    int
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter() *PTermPresenter {
	return &PTermPresenter{}
}

// Start inicia la presentación mostrando el header del run
func (p *PTermPresenter) Start(info RunInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info = info

	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("NewsRake - News Retrieval")

	pterm.Println()
	pterm.Printf("%s Topic:   %s\n", IconTopic, pterm.Cyan(info.Topic))
	pterm.Printf("%s Target:  %d items\n", IconItems, info.Target)
	pterm.Printf("%s Sources: %d\n", IconSources, info.Sources)
	pterm.Printf("   Workers: %d\n", info.Workers)
	pterm.Println()
	pterm.Println(pterm.LightBlue(SeparatorHeavy))
}

// StartRound notifica el inicio de una ronda
func (p *PTermPresenter) StartRound(round, tasks int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.round = round
	p.finished = 0
	p.tasks = tasks

	label := "initial round"
	if round > 0 {
		label = fmt.Sprintf("compensation round %d", round)
	}
	pterm.DefaultSection.WithLevel(2).Printf("%s %s (%d tasks)\n", IconRound, label, tasks)
}

// SourceDone imprime el resultado terminal de una tarea
func (p *PTermPresenter) SourceDone(result SourceResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.finished++
	line := fmt.Sprintf("%s %-24s [%s] %d items in %s",
		result.Status.Symbol(),
		result.Source,
		result.Tier,
		result.Items,
		result.Duration.Round(time.Millisecond),
	)
	if result.Attempts > 1 {
		line += fmt.Sprintf(" (%d attempts)", result.Attempts)
	}
	result.Status.Style().Println(line)
}

// Info muestra un mensaje informativo
func (p *PTermPresenter) Info(msg string) {
	pterm.Info.Println(msg)
}

// Warning muestra una advertencia
func (p *PTermPresenter) Warning(msg string) {
	pterm.Warning.Println(msg)
}

// Error muestra un error
func (p *PTermPresenter) Error(msg string) {
	pterm.Error.Println(msg)
}

// Finish cierra la presentación con estadísticas finales
func (p *PTermPresenter) Finish(stats RunStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Println()
	pterm.Println(pterm.LightBlue(SeparatorHeavy))
	pterm.DefaultSection.Printf("%s Run Summary\n", IconStats)
	pterm.Printf("%s Duration:     %s\n", IconTime, stats.Duration.Round(time.Millisecond))
	pterm.Printf("%s Rounds:       %d\n", IconRound, stats.Rounds)
	pterm.Printf("%s Raw items:    %d\n", IconItems, stats.RawItems)
	pterm.Printf("%s Final items:  %d\n", IconItems, stats.FinalItems)
	pterm.Printf("%s Sources used: %d", IconSources, stats.SourcesUsed)
	if stats.Failed > 0 {
		pterm.Printf(" (%s)", pterm.Red(fmt.Sprintf("%d failed", stats.Failed)))
	}
	pterm.Println()
}

// Close libera recursos del presenter
func (p *PTermPresenter) Close() error { return nil }
