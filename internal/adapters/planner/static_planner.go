// internal/adapters/planner/static_planner.go
package planner

import (
	"context"
	"strings"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/logx"
)

// StaticPlanner retorna siempre el mismo catálogo. Es el planner de los
// runs sin API key: solo seeds, sin fuentes discovered.
type StaticPlanner struct {
	specs  []domain.SourceSpec
	logger logx.Logger
}

// NewStaticPlanner crea el planner con el catálogo fijo dado.
func NewStaticPlanner(specs []domain.SourceSpec, logger logx.Logger) *StaticPlanner {
	return &StaticPlanner{
		specs:  specs,
		logger: logger.With("component", "planner"),
	}
}

// Plan retorna el catálogo fijo.
func (p *StaticPlanner) Plan(ctx context.Context, topic string) ([]domain.SourceSpec, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, domain.ErrEmptyTopic
	}
	if len(p.specs) == 0 {
		return nil, domain.ErrNoSourcesAvailable
	}
	p.logger.Info("using static catalog", "sources", len(p.specs))
	out := make([]domain.SourceSpec, len(p.specs))
	copy(out, p.specs)
	return out, nil
}

var _ ports.Planner = (*StaticPlanner)(nil)
