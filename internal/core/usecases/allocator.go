// internal/core/usecases/allocator.go
package usecases

import (
	"fmt"

	"newsrake/internal/core/domain"
	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/logx"
)

// Allocation es el resultado del reparto de quota de una ronda inicial.
type Allocation struct {
	// Quotas quota entera por fuente; suman exactamente el total
	Quotas map[string]int

	// Ranked fuentes en orden de ranking (core-first, orden de registro)
	Ranked []domain.SourceSpec

	// TierMin mínimo por tier derivado de las quotas asignadas
	TierMin map[domain.Tier]int

	// Warnings advertencias no fatales (clamping, truncado)
	Warnings []string
}

// QuotaAllocator reparte el objetivo global entre fuentes mediante
// muestreo estratificado: las fuentes core reciben su mínimo garantizado
// y el resto se distribuye entre las discovered en partes iguales.
type QuotaAllocator struct {
	logger logx.Logger
}

// NewQuotaAllocator crea un allocator.
func NewQuotaAllocator(logger logx.Logger) *QuotaAllocator {
	return &QuotaAllocator{logger: logger.With("component", "allocator")}
}

// Allocate reparte total entre las specs. Garantiza:
//   - cada fuente core recibe al menos minPerCore, con clamping si la
//     suma de mínimos excede el total (quota-infeasible: warning, nunca
//     fatal)
//   - el resto se divide en partes iguales entre las discovered; el
//     resto entero de la división va a las core primero, en orden de
//     registro
//   - las quotas son enteras y suman exactamente total
//   - si hay más fuentes que total, se truncan las últimas del ranking
//     (core-first, orden de registro); las truncadas quedan con quota
//     cero pero siguen elegibles para gap-fill
func (a *QuotaAllocator) Allocate(specs []domain.SourceSpec, total, minPerCore int) (Allocation, error) {
	if total <= 0 {
		return Allocation{}, fmt.Errorf("%w: %d", domain.ErrInvalidTargetTotal, total)
	}
	if len(specs) == 0 {
		return Allocation{}, domain.ErrNoSourcesAvailable
	}
	if minPerCore < 0 {
		minPerCore = 0
	}

	alloc := Allocation{
		Quotas:  make(map[string]int, len(specs)),
		Ranked:  rankSpecs(specs),
		TierMin: make(map[domain.Tier]int),
	}
	for _, spec := range alloc.Ranked {
		alloc.Quotas[spec.Name] = 0
	}

	// Truncado: con más fuentes que presupuesto, solo las primeras del
	// ranking reciben quota
	eligible := alloc.Ranked
	if len(eligible) > total {
		eligible = eligible[:total]
		alloc.Warnings = append(alloc.Warnings, fmt.Sprintf(
			"source count %d exceeds target %d, truncating to top-ranked sources", len(specs), total))
		a.logger.Warn("truncating sources", "sources", len(specs), "target", total)
	}

	var core, discovered []domain.SourceSpec
	for _, spec := range eligible {
		if spec.Tier == domain.TierCore {
			core = append(core, spec)
		} else {
			discovered = append(discovered, spec)
		}
	}

	// Mínimos core, con clamping si son infactibles
	coreMin := minPerCore
	if len(core) > 0 && coreMin*len(core) > total {
		coreMin = total / len(core)
		alloc.Warnings = append(alloc.Warnings, fmt.Sprintf(
			"%v: %d core sources x min %d exceed target %d, clamping to %d",
			errors.ErrQuotaInfeasible, len(core), minPerCore, total, coreMin))
		a.logger.Warn("core minimums infeasible, clamping",
			"core_sources", len(core),
			"min_per_core", minPerCore,
			"target", total,
			"clamped_min", coreMin,
		)
	}
	for _, spec := range core {
		alloc.Quotas[spec.Name] = coreMin
	}

	remainder := total - coreMin*len(core)

	// Reparto igualitario entre discovered
	if len(discovered) > 0 && remainder > 0 {
		base := remainder / len(discovered)
		for _, spec := range discovered {
			alloc.Quotas[spec.Name] = base
		}
		remainder -= base * len(discovered)
	}

	// Resto del apportionment: round-robin core primero en orden de
	// registro, para no infra-contar sistemáticamente a las fuentes
	// autoritativas
	roundRobin := append(append([]domain.SourceSpec{}, core...), discovered...)
	for remainder > 0 {
		for _, spec := range roundRobin {
			if remainder == 0 {
				break
			}
			alloc.Quotas[spec.Name]++
			remainder--
		}
	}

	// MaxItems opcional por fuente: recortar y redistribuir el exceso
	a.applyCaps(&alloc, eligible)

	// Mínimos por tier derivados de la asignación final
	for _, spec := range eligible {
		alloc.TierMin[spec.Tier] += alloc.Quotas[spec.Name]
	}

	a.logger.Info("quota allocated",
		"target", total,
		"core", len(core),
		"discovered", len(discovered),
		"core_min", alloc.TierMin[domain.TierCore],
		"discovered_min", alloc.TierMin[domain.TierDiscovered],
	)

	return alloc, nil
}

// applyCaps recorta quotas que exceden MaxItems y redistribuye el exceso
// entre fuentes con margen, en orden de ranking.
func (a *QuotaAllocator) applyCaps(alloc *Allocation, eligible []domain.SourceSpec) {
	excess := 0
	for _, spec := range eligible {
		if spec.MaxItems > 0 && alloc.Quotas[spec.Name] > spec.MaxItems {
			excess += alloc.Quotas[spec.Name] - spec.MaxItems
			alloc.Quotas[spec.Name] = spec.MaxItems
		}
	}

	for excess > 0 {
		placed := false
		for _, spec := range eligible {
			if excess == 0 {
				break
			}
			if spec.MaxItems > 0 && alloc.Quotas[spec.Name] >= spec.MaxItems {
				continue
			}
			alloc.Quotas[spec.Name]++
			excess--
			placed = true
		}
		if !placed {
			// todas las fuentes al tope: el exceso no es colocable
			alloc.Warnings = append(alloc.Warnings, fmt.Sprintf(
				"%d quota units exceed all per-source caps", excess))
			break
		}
	}
}

// rankSpecs ordena core-first preservando el orden de registro dentro
// de cada tier.
func rankSpecs(specs []domain.SourceSpec) []domain.SourceSpec {
	out := make([]domain.SourceSpec, 0, len(specs))
	for _, s := range specs {
		if s.Tier == domain.TierCore {
			out = append(out, s)
		}
	}
	for _, s := range specs {
		if s.Tier != domain.TierCore {
			out = append(out, s)
		}
	}
	return out
}
