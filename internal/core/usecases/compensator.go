// internal/core/usecases/compensator.go
package usecases

import (
	"fmt"
	"sort"
	"strings"

	"newsrake/internal/core/domain"
	"newsrake/internal/platform/logx"
	"newsrake/internal/platform/registry"
)

// Widener transforma la query de una fuente en una versión más amplia
// para rondas de compensación. La implementación por defecto elimina la
// restricción site: y consulta el tema a pelo.
type Widener func(spec domain.SourceSpec, topic string) string

// DefaultWidener elimina el operador site: de la query; si la fuente no
// lo usaba, devuelve el tema sin plantilla.
func DefaultWidener(spec domain.SourceSpec, topic string) string {
	query := ResolveQuery(spec, topic)
	if spec.SiteHost() != "" {
		fields := strings.Fields(query)
		kept := fields[:0]
		for _, f := range fields {
			if strings.HasPrefix(strings.ToLower(f), "site:") {
				continue
			}
			kept = append(kept, f)
		}
		if len(kept) > 0 {
			return strings.Join(kept, " ")
		}
	}
	return topic
}

// CompensationPolicy parámetros del gap-fill.
type CompensationPolicy struct {
	// MaxRounds techo de rondas de compensación tras la inicial
	MaxRounds int

	// ToleranceFraction fracción del objetivo que se acepta como
	// "suficientemente cerca" (banda max(frac*T, T-FillBuffer))
	ToleranceFraction float64

	// FillBuffer margen extra pedido por tarea de compensación, para
	// absorber duplicados y ruido
	FillBuffer int
}

// Threshold retorna el umbral de la banda de tolerancia para el
// objetivo dado.
func (p CompensationPolicy) Threshold(total int) int {
	frac := int(float64(total) * p.ToleranceFraction)
	buffered := total - p.FillBuffer
	if buffered > frac {
		return buffered
	}
	return frac
}

// Compensator planifica rondas de gap-fill cuando un tier queda por
// debajo de su mínimo. Tres palancas, en orden: ampliar queries de
// fuentes infra-cumplidoras sanas, promover fuentes sin usar (incluidas
// las truncadas a quota cero), y recargar fuentes que demostraron
// capacidad sobrante. Solo añade trabajo: nunca descarta items ya
// entregados ni cancela tareas completadas.
type Compensator struct {
	catalog *registry.Catalog
	policy  CompensationPolicy
	widener Widener
	logger  logx.Logger
}

// NewCompensator crea un compensator sobre el catálogo del run.
func NewCompensator(catalog *registry.Catalog, policy CompensationPolicy, widener Widener, logger logx.Logger) *Compensator {
	if widener == nil {
		widener = DefaultWidener
	}
	if policy.MaxRounds < 0 {
		policy.MaxRounds = 0
	}
	return &Compensator{
		catalog: catalog,
		policy:  policy,
		widener: widener,
		logger:  logger.With("component", "compensator"),
	}
}

// PlanRound decide las tareas de la ronda round (1-based sobre las de
// compensación). Retorna nil cuando no hay nada que compensar: mínimos
// cumplidos, total dentro de la banda de tolerancia, techo de rondas
// alcanzado, o ninguna palanca disponible.
func (c *Compensator) PlanRound(state *domain.RunState, alloc Allocation, used map[string]bool, round int) []*FetchTask {
	if round > c.policy.MaxRounds {
		return nil
	}

	coreGap := state.Shortfall(domain.TierCore)
	discGap := state.Shortfall(domain.TierDiscovered)
	if coreGap == 0 && discGap == 0 {
		return nil
	}

	threshold := c.policy.Threshold(state.TargetTotal)
	if state.TotalDelivered() >= threshold {
		c.logger.Info("delivery within tolerance band, skipping compensation",
			"delivered", state.TotalDelivered(),
			"threshold", threshold,
			"target", state.TargetTotal,
		)
		state.AddWarning(fmt.Sprintf(
			"delivered %d of %d, within tolerance (threshold %d)",
			state.TotalDelivered(), state.TargetTotal, threshold))
		return nil
	}

	c.logger.Info("planning compensation round",
		"round", round,
		"core_gap", coreGap,
		"discovered_gap", discGap,
	)

	var tasks []*FetchTask
	planned := make(map[string]bool)
	for _, tier := range []domain.Tier{domain.TierCore, domain.TierDiscovered} {
		gap := state.Shortfall(tier)
		if gap == 0 {
			continue
		}
		tasks = append(tasks, c.planTier(state, alloc, used, planned, tier, gap, round)...)
	}

	if len(tasks) == 0 {
		c.logger.Warn("gap remains but no compensation lever available",
			"core_gap", coreGap,
			"discovered_gap", discGap,
		)
		state.AddWarning("quota shortfall persists and no source can compensate")
	}
	return tasks
}

// planTier aplica las tres palancas a un tier con gap. La ampliación
// (palanca 1) solo mira fuentes del tier afectado; la promoción y la
// recarga aceptan fuentes del otro tier como sustitutas cuando el tier
// con gap no tiene candidatas, porque lo que importa es acercarse al
// objetivo total aunque el mínimo del tier quede en warning.
func (c *Compensator) planTier(state *domain.RunState, alloc Allocation, used, planned map[string]bool, tier domain.Tier, gap, round int) []*FetchTask {
	var tasks []*FetchTask
	remaining := gap

	// 1. Ampliar queries de fuentes del tier que quedaron cortas y no
	//    fallaron en permanente, ordenadas por déficit descendente
	type deficit struct {
		spec domain.SourceSpec
		gap  int
	}
	var under []deficit
	for _, spec := range alloc.Ranked {
		if spec.Tier != tier || !used[spec.Name] || planned[spec.Name] || state.HasFailed(spec.Name) {
			continue
		}
		d := alloc.Quotas[spec.Name] - state.Delivered(spec.Name)
		if d > 0 {
			under = append(under, deficit{spec: spec, gap: d})
		}
	}
	sort.SliceStable(under, func(i, j int) bool { return under[i].gap > under[j].gap })

	for _, u := range under {
		if remaining <= 0 {
			break
		}
		task := NewFetchTask(u.spec, c.widener(u.spec, state.Topic), remaining+c.policy.FillBuffer, round)
		task.Widened = true
		tasks = append(tasks, task)
		planned[u.spec.Name] = true
		remaining -= u.gap
	}

	// 2. Promover fuentes aún sin usar, primero las del tier con gap y
	//    después las del otro tier
	if remaining > 0 {
		for _, spec := range tierFirst(alloc.Ranked, tier) {
			if remaining <= 0 {
				break
			}
			if used[spec.Name] || planned[spec.Name] || state.HasFailed(spec.Name) {
				continue
			}
			// una promoción pide el gap completo
			tasks = append(tasks, NewFetchTask(spec, ResolveQuery(spec, state.Topic), remaining+c.policy.FillBuffer, round))
			planned[spec.Name] = true
			remaining = 0
		}
	}

	// 3. Recargar fuentes sanas que saturaron o excedieron su quota:
	//    demostraron capacidad, pedirles el resto
	if remaining > 0 {
		for _, spec := range tierFirst(alloc.Ranked, tier) {
			if remaining <= 0 {
				break
			}
			if !used[spec.Name] || planned[spec.Name] || state.HasFailed(spec.Name) {
				continue
			}
			if alloc.Quotas[spec.Name] == 0 || state.Delivered(spec.Name) < alloc.Quotas[spec.Name] {
				continue
			}
			tasks = append(tasks, NewFetchTask(spec, ResolveQuery(spec, state.Topic), remaining+c.policy.FillBuffer, round))
			planned[spec.Name] = true
			remaining = 0
		}
	}

	return tasks
}

// tierFirst reordena las specs poniendo delante las del tier pedido,
// conservando el orden de registro dentro de cada grupo.
func tierFirst(specs []domain.SourceSpec, tier domain.Tier) []domain.SourceSpec {
	out := make([]domain.SourceSpec, 0, len(specs))
	for _, spec := range specs {
		if spec.Tier == tier {
			out = append(out, spec)
		}
	}
	for _, spec := range specs {
		if spec.Tier != tier {
			out = append(out, spec)
		}
	}
	return out
}

// ResolveQuery construye la query concreta de una fuente para un tema:
// aplica la plantilla si existe, si no usa el tema tal cual.
func ResolveQuery(spec domain.SourceSpec, topic string) string {
	if spec.QueryTemplate == "" {
		return topic
	}
	if strings.Contains(spec.QueryTemplate, "%s") {
		return fmt.Sprintf(spec.QueryTemplate, topic)
	}
	return spec.QueryTemplate + " " + topic
}
