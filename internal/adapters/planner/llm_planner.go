// internal/adapters/planner/llm_planner.go

// Package planner implementa el puerto Planner: convierte un tema de
// texto libre en el catálogo de SourceSpecs del run. La variante LLM
// pide al modelo fuentes afines al tema; las seeds de configuración
// entran siempre como tier core.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"newsrake/internal/adapters/llm"
	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/logx"
)

const plannerPrompt = `You are a news source planner. Given a topic, propose web sources
likely to publish relevant news about it. Respond ONLY with a JSON array, each element:
{"name": "short_snake_case_id", "kind": "web_search"|"site_search", "query": "search query or site:domain.com query", "match_names": ["Display Name"]}
Prefer authoritative outlets, official blogs and sector press for the topic. Propose %d sources.`

// Options del planner LLM.
type Options struct {
	// Seeds fuentes fijas de configuración, siempre tier core
	Seeds []domain.SourceSpec

	// TargetSources cuántas fuentes discovered pedir al modelo, antes
	// de inflar
	TargetSources int

	// Inflation factor de sobre-petición; el modelo suele proponer
	// fuentes que luego no rinden
	Inflation float64
}

// LLMPlanner propone el catálogo consultando un modelo.
type LLMPlanner struct {
	client *llm.Client
	opts   Options
	logger logx.Logger
}

// NewLLMPlanner crea el planner.
func NewLLMPlanner(client *llm.Client, opts Options, logger logx.Logger) *LLMPlanner {
	if opts.TargetSources <= 0 {
		opts.TargetSources = 6
	}
	if opts.Inflation < 1.0 {
		opts.Inflation = 1.0
	}
	return &LLMPlanner{
		client: client,
		opts:   opts,
		logger: logger.With("component", "planner"),
	}
}

// plannedSource es el shape JSON que devuelve el modelo.
type plannedSource struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Query      string   `json:"query"`
	MatchNames []string `json:"match_names"`
}

// Plan consulta al modelo y retorna seeds core + fuentes discovered.
// Si el modelo falla pero hay seeds, degrada al plan estático con un
// warning; sin seeds el fallo es fatal.
func (p *LLMPlanner) Plan(ctx context.Context, topic string) ([]domain.SourceSpec, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, domain.ErrEmptyTopic
	}

	ask := int(math.Ceil(float64(p.opts.TargetSources) * p.opts.Inflation))
	p.logger.Info("planning source catalog", "topic", topic, "requested", ask)

	raw, err := p.client.Chat(ctx, []llm.Message{
		{Role: "system", Content: fmt.Sprintf(plannerPrompt, ask)},
		{Role: "user", Content: topic},
	})
	if err != nil {
		if len(p.opts.Seeds) > 0 {
			p.logger.Warn("llm planning failed, using seed catalog only", "error", err.Error())
			return p.opts.Seeds, nil
		}
		return nil, errors.Wrap(errors.ErrPlannerFailed, err.Error())
	}

	discovered, err := p.parsePlan(raw)
	if err != nil {
		if len(p.opts.Seeds) > 0 {
			p.logger.Warn("unparseable plan, using seed catalog only", "error", err.Error())
			return p.opts.Seeds, nil
		}
		return nil, errors.Wrap(errors.ErrPlannerFailed, err.Error())
	}

	specs := make([]domain.SourceSpec, 0, len(p.opts.Seeds)+len(discovered))
	specs = append(specs, p.opts.Seeds...)
	specs = append(specs, discovered...)

	p.logger.Info("catalog planned",
		"seeds", len(p.opts.Seeds),
		"discovered", len(discovered),
	)
	return specs, nil
}

// parsePlan convierte la respuesta del modelo en specs discovered
// válidas; las entradas malformadas se descartan con log.
func (p *LLMPlanner) parsePlan(raw string) ([]domain.SourceSpec, error) {
	payload := llm.ExtractJSON(raw)

	var planned []plannedSource
	if err := json.Unmarshal([]byte(payload), &planned); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidResponse, err.Error())
	}
	if len(planned) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidResponse, "model proposed no sources")
	}

	specs := make([]domain.SourceSpec, 0, len(planned))
	for _, ps := range planned {
		spec := domain.SourceSpec{
			Name:          strings.TrimSpace(ps.Name),
			Tier:          domain.TierDiscovered,
			Kind:          parseKind(ps.Kind, ps.Query),
			QueryTemplate: strings.TrimSpace(ps.Query),
			MatchNames:    ps.MatchNames,
		}
		if err := spec.Validate(); err != nil {
			p.logger.Warn("discarding malformed planned source",
				"name", ps.Name,
				"error", err.Error(),
			)
			continue
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// parseKind normaliza el kind del modelo; "site_search" sin operador
// site: degrada a búsqueda general.
func parseKind(kind, query string) domain.QueryKind {
	switch strings.TrimSpace(strings.ToLower(kind)) {
	case string(domain.QueryKindRSS):
		return domain.QueryKindRSS
	case string(domain.QueryKindSiteSearch):
		if strings.Contains(query, "site:") {
			return domain.QueryKindSiteSearch
		}
		return domain.QueryKindWebSearch
	default:
		return domain.QueryKindWebSearch
	}
}

// compile-time check
var _ ports.Planner = (*LLMPlanner)(nil)
