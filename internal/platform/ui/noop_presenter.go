// internal/platform/ui/noop_presenter.go
package ui

// NoopPresenter es un Presenter que no hace nada. Útil para tests y
// para el modo silencioso.
type NoopPresenter struct{}

// NewNoopPresenter crea un presenter nulo.
func NewNoopPresenter() *NoopPresenter { return &NoopPresenter{} }

func (NoopPresenter) Start(RunInfo)           {}
func (NoopPresenter) StartRound(int, int)     {}
func (NoopPresenter) SourceDone(SourceResult) {}
func (NoopPresenter) Info(string)             {}
func (NoopPresenter) Warning(string)          {}
func (NoopPresenter) Error(string)            {}
func (NoopPresenter) Finish(RunStats)         {}
func (NoopPresenter) Close() error            { return nil }
