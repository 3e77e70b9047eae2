// internal/core/domain/source_spec.go
package domain

import (
	"fmt"
	"strings"
)

// Tier clasifica una fuente según su procedencia y garantías de quota.
type Tier string

const (
	// TierCore fuentes curadas con mínimo garantizado por configuración.
	TierCore Tier = "core"

	// TierDiscovered fuentes propuestas dinámicamente por el planner.
	TierDiscovered Tier = "discovered"
)

// IsValid verifica que el tier sea conocido.
func (t Tier) IsValid() bool {
	return t == TierCore || t == TierDiscovered
}

// QueryKind define el mecanismo de fetch que entiende el FetchClient.
type QueryKind string

const (
	// QueryKindRSS feed RSS/Atom (ej: Google News RSS).
	QueryKindRSS QueryKind = "rss"

	// QueryKindWebSearch búsqueda general en un motor web.
	QueryKindWebSearch QueryKind = "web_search"

	// QueryKindSiteSearch búsqueda restringida a un dominio (site:...).
	QueryKindSiteSearch QueryKind = "site_search"
)

// IsValid verifica que el kind sea conocido.
func (k QueryKind) IsValid() bool {
	switch k {
	case QueryKindRSS, QueryKindWebSearch, QueryKindSiteSearch:
		return true
	}
	return false
}

// SourceSpec describe una fuente de noticias de forma uniforme y
// auto-descriptiva: las fuentes descubiertas en runtime no requieren
// código nuevo, solo datos nuevos. Inmutable tras su creación; su ciclo
// de vida es el de un run.
type SourceSpec struct {
	// Name nombre único de la fuente dentro del run
	Name string

	// Tier core o discovered
	Tier Tier

	// Kind mecanismo de fetch
	Kind QueryKind

	// MatchNames nombres/patrones que reconocen resultados de esta fuente.
	// El noise filter los usa para descartar items que no correspondan.
	MatchNames []string

	// QueryTemplate sufijo o plantilla de búsqueda (ej: "site:example.com").
	// Vacío para búsquedas generales.
	QueryTemplate string

	// MinItems mínimo deseado de items para esta fuente
	MinItems int

	// MaxItems máximo opcional (0 = sin máximo)
	MaxItems int
}

// Validate verifica que la spec sea coherente.
func (s SourceSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptySourceName
	}
	if !s.Tier.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTier, s.Tier)
	}
	if !s.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidQueryKind, s.Kind)
	}
	if s.Kind == QueryKindSiteSearch && strings.TrimSpace(s.QueryTemplate) == "" {
		return fmt.Errorf("%w: site search requires a query template", ErrInvalidSourceSpec)
	}
	if s.MinItems < 0 || s.MaxItems < 0 {
		return fmt.Errorf("%w: negative item bounds", ErrInvalidSourceSpec)
	}
	if s.MaxItems > 0 && s.MinItems > s.MaxItems {
		return fmt.Errorf("%w: min %d exceeds max %d", ErrInvalidSourceSpec, s.MinItems, s.MaxItems)
	}
	return nil
}

// DisplayName retorna el primer match name, o el nombre de la spec.
func (s SourceSpec) DisplayName() string {
	if len(s.MatchNames) > 0 && s.MatchNames[0] != "" {
		return s.MatchNames[0]
	}
	return s.Name
}

// SiteHost extrae el host de un QueryTemplate "site:dominio.com".
// Retorna "" si la plantilla no restringe por sitio.
func (s SourceSpec) SiteHost() string {
	q := strings.TrimSpace(s.QueryTemplate)
	const prefix = "site:"
	idx := strings.Index(q, prefix)
	if idx < 0 {
		return ""
	}
	host := q[idx+len(prefix):]
	if sp := strings.IndexByte(host, ' '); sp >= 0 {
		host = host[:sp]
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}
