// internal/core/usecases/retrieval_orchestrator.go
package usecases

import (
	"context"
	"fmt"
	"time"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/logx"
	"newsrake/internal/platform/registry"
	"newsrake/internal/platform/ui"
)

// Params agrupa los parámetros del motor de recuperación.
type Params struct {
	TotalTarget   int
	MinPerCore    int
	TopN          int
	SnippetMaxLen int

	Pool         PoolOptions
	Compensation CompensationPolicy

	// SimilarityThreshold umbral de casi-duplicados por título
	SimilarityThreshold float64

	// Version versión del binario, va a los metadatos del informe
	Version string
}

// RetrievalOrchestrator coordina el run completo: planificación del
// catálogo, reparto de quota, rondas de fetch con compensación,
// deduplicación y resumen. Es el único escritor del RunState; los
// workers solo devuelven outcomes terminales.
type RetrievalOrchestrator struct {
	planner    ports.Planner
	fetcher    ports.FetchClient
	summarizer ports.Summarizer
	params     Params
	presenter  ui.Presenter
	logger     logx.Logger
}

// NewRetrievalOrchestrator construye el orquestador. presenter nil usa
// el presenter nulo.
func NewRetrievalOrchestrator(
	planner ports.Planner,
	fetcher ports.FetchClient,
	summarizer ports.Summarizer,
	params Params,
	presenter ui.Presenter,
	logger logx.Logger,
) *RetrievalOrchestrator {
	if presenter == nil {
		presenter = ui.NewNoopPresenter()
	}
	return &RetrievalOrchestrator{
		planner:    planner,
		fetcher:    fetcher,
		summarizer: summarizer,
		params:     params,
		presenter:  presenter,
		logger:     logger.With("component", "orchestrator"),
	}
}

// Run ejecuta un run completo para el tema dado y retorna el informe.
// Solo el fallo del planner (sin fuentes utilizables) es fatal; el
// resto de fallos degradan a resultados parciales con advertencias.
func (o *RetrievalOrchestrator) Run(ctx context.Context, topic string) (*domain.Report, error) {
	if topic == "" {
		return nil, domain.ErrEmptyTopic
	}
	if o.params.TotalTarget <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidTargetTotal, o.params.TotalTarget)
	}

	state := domain.NewRunState(topic, o.params.TotalTarget)
	logger := o.logger.With("run_id", state.ID)
	logger.Info("run started", "topic", topic, "target", o.params.TotalTarget)

	// Fase de planificación: sin catálogo no hay run
	specs, err := o.planner.Plan(ctx, topic)
	if err != nil {
		return nil, errors.Wrap(errors.ErrPlannerFailed, err.Error())
	}
	if len(specs) == 0 {
		return nil, errors.Wrap(errors.ErrPlannerFailed, domain.ErrNoSourcesAvailable.Error())
	}

	catalog := registry.NewCatalog(logger)
	if added := catalog.AddAll(specs); added == 0 {
		return nil, errors.Wrap(errors.ErrPlannerFailed, "no valid source specs in plan")
	}

	allocator := NewQuotaAllocator(logger)
	alloc, err := allocator.Allocate(catalog.All(), o.params.TotalTarget, o.params.MinPerCore)
	if err != nil {
		return nil, err
	}
	state.TierMin = alloc.TierMin
	for _, w := range alloc.Warnings {
		state.AddWarning(w)
		o.presenter.Warning(w)
	}

	o.presenter.Start(ui.RunInfo{
		RunID:   state.ID,
		Topic:   topic,
		Target:  o.params.TotalTarget,
		Sources: catalog.Len(),
		Workers: o.params.Pool.Workers,
		Rounds:  o.params.Compensation.MaxRounds,
	})

	pool := NewExecutionPool(o.fetcher, o.params.Pool, logger)
	compensator := NewCompensator(catalog, o.params.Compensation, nil, logger)

	// Ronda inicial: una tarea por fuente con quota positiva
	var tasks []*FetchTask
	for _, spec := range alloc.Ranked {
		quota := alloc.Quotas[spec.Name]
		if quota <= 0 {
			continue
		}
		tasks = append(tasks, NewFetchTask(spec, ResolveQuery(spec, topic), quota, 0))
	}

	used := make(map[string]bool)
	widened := make(map[string]bool)
	failedSources := 0

	for round := 0; ; round++ {
		o.presenter.StartRound(round, len(tasks))
		completed := pool.Run(ctx, tasks)
		failedSources += o.apply(state, completed, used, widened)
		state.Rounds = round

		if ctx.Err() != nil {
			msg := fmt.Sprintf("%v: returning partial results (%d items)",
				errors.ErrRunDeadline, state.TotalDelivered())
			logger.Warn("run deadline reached", "delivered", state.TotalDelivered())
			state.AddWarning(msg)
			o.presenter.Warning(msg)
			break
		}

		tasks = compensator.PlanRound(state, alloc, used, round+1)
		if len(tasks) == 0 {
			break
		}
	}

	// Compactar la colección agregada
	items, warns := NewDedupeService(o.params.SimilarityThreshold, logger).
		Process(state.Items(), catalog, state.TierMin, o.params.TotalTarget, widened)
	for _, w := range warns {
		state.AddWarning(w)
		o.presenter.Warning(w)
	}
	if o.params.SnippetMaxLen > 0 {
		for i, item := range items {
			items[i] = item.Truncate(o.params.SnippetMaxLen)
		}
	}

	report := o.summarize(ctx, state, items, logger)

	o.presenter.Finish(ui.RunStats{
		Duration:    time.Since(state.StartTime),
		Rounds:      state.Rounds,
		RawItems:    state.TotalDelivered(),
		FinalItems:  len(items),
		SourcesUsed: len(used),
		Failed:      failedSources,
	})

	logger.Info("run finished",
		"rounds", state.Rounds,
		"raw_items", state.TotalDelivered(),
		"final_items", len(items),
		"duration", time.Since(state.StartTime).String(),
	)
	return report, nil
}

// apply incorpora los outcomes terminales de una ronda al estado.
// Retorna las fuentes que fallaron en esta ronda.
func (o *RetrievalOrchestrator) apply(state *domain.RunState, completed []*FetchTask, used, widened map[string]bool) int {
	failed := 0
	for _, task := range completed {
		used[task.Spec.Name] = true
		if task.Widened {
			widened[task.Spec.Name] = true
		}

		status := ui.StatusSuccess
		accepted := 0
		if task.Succeeded() {
			for _, item := range task.Items() {
				if state.Accept(item) {
					accepted++
				}
			}
			if accepted == 0 && len(task.Items()) == 0 {
				status = ui.StatusWarning
			}
		} else {
			state.MarkFailed(task.Spec.Name)
			state.AddWarning(fmt.Sprintf("source %s failed: %v", task.Spec.Name, task.Err()))
			status = ui.StatusError
			failed++
		}

		o.presenter.SourceDone(ui.SourceResult{
			Source:   task.Spec.Name,
			Tier:     string(task.Spec.Tier),
			Status:   status,
			Items:    accepted,
			Attempts: task.Attempts(),
			Duration: task.Duration(),
		})
	}
	return failed
}

// summarize produce el informe final. Un fallo del summarizer degrada
// a un informe sin prólogo construido desde los items crudos.
func (o *RetrievalOrchestrator) summarize(ctx context.Context, state *domain.RunState, items []*domain.NewsItem, logger logx.Logger) *domain.Report {
	topN := o.params.TopN
	if topN <= 0 || topN > len(items) {
		topN = len(items)
	}

	report := &domain.Report{
		ID:          state.ID,
		Topic:       state.Topic,
		GeneratedAt: time.Now().UTC(),
		Quota:       state.QuotaStatus(),
		Items:       items,
		Metadata: domain.ReportMetadata{
			Duration:    time.Since(state.StartTime).Round(time.Millisecond),
			Rounds:      state.Rounds,
			RawItems:    state.TotalDelivered(),
			FinalItems:  len(items),
			SourcesUsed: sourcesOf(items),
			Version:     o.params.Version,
		},
	}

	summary, err := o.summarizer.Summarize(ctx, state.Topic, items)
	if err != nil {
		logger.Warn("summarizer failed, falling back to raw items", "error", err.Error())
		state.AddWarning(fmt.Sprintf("summarizer unavailable: %v", err))
		report.TopNews = rawTopNews(items[:topN])
	} else {
		report.Prologue = summary.Prologue
		report.TopNews = summary.TopNews
	}

	report.Warnings = state.Warnings()
	return report
}

// rawTopNews mapea items crudos a entradas de informe sin comentario
// editorial.
func rawTopNews(items []*domain.NewsItem) []domain.ReportItem {
	out := make([]domain.ReportItem, 0, len(items))
	for _, item := range items {
		entry := domain.ReportItem{
			Title:   item.Title,
			URL:     item.URL,
			Source:  item.Source,
			Summary: item.Snippet,
		}
		if !item.PublishedAt.IsZero() {
			entry.Date = item.PublishedAt.Format("2006-01-02")
		}
		out = append(out, entry)
	}
	return out
}

// sourcesOf lista las fuentes presentes en la colección, en orden de
// primera aparición.
func sourcesOf(items []*domain.NewsItem) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if !seen[item.Source] {
			seen[item.Source] = true
			out = append(out, item.Source)
		}
	}
	return out
}
