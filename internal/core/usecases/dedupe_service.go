// internal/core/usecases/dedupe_service.go
package usecases

import (
	"fmt"
	"sort"

	"newsrake/internal/core/domain"
	"newsrake/internal/platform/logx"
	"newsrake/internal/platform/registry"
	"newsrake/internal/platform/urlnorm"
)

// DedupeService compacta la colección agregada antes del resumen:
// filtra ruido contra el descriptor de la fuente de origen, elimina
// duplicados exactos por fingerprint y casi-duplicados por similitud de
// título, ordena core-first y recorta al objetivo global protegiendo
// los mínimos por tier. El proceso es idempotente: re-procesar la
// salida la deja intacta.
type DedupeService struct {
	// SimilarityThreshold similitud Jaccard de títulos a partir de la
	// cual dos items se consideran la misma noticia
	SimilarityThreshold float64

	logger logx.Logger
}

// NewDedupeService crea el servicio con el umbral dado (<=0 usa 0.8).
func NewDedupeService(threshold float64, logger logx.Logger) *DedupeService {
	if threshold <= 0 {
		threshold = 0.8
	}
	return &DedupeService{
		SimilarityThreshold: threshold,
		logger:              logger.With("component", "dedupe"),
	}
}

// Process recibe los items en orden de llegada y retorna la colección
// final más las advertencias de recorte. widened marca las fuentes que
// corrieron queries ampliadas; para ellas se relaja el filtro de ruido.
func (d *DedupeService) Process(
	items []*domain.NewsItem,
	catalog *registry.Catalog,
	tierMin map[domain.Tier]int,
	total int,
	widened map[string]bool,
) ([]*domain.NewsItem, []string) {
	var warnings []string

	kept := d.filterNoise(items, catalog, widened)
	kept = d.dedupeExact(kept)
	kept = d.dedupeFuzzy(kept)

	// Orden canónico: core primero, dentro de cada tier por orden de
	// descubrimiento
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Tier != kept[j].Tier {
			return kept[i].Tier == domain.TierCore
		}
		return kept[i].DiscoveryIndex < kept[j].DiscoveryIndex
	})

	if total > 0 && len(kept) > total {
		kept, warnings = d.trim(kept, tierMin, total, warnings)
	}

	d.logger.Info("collection compacted",
		"input", len(items),
		"output", len(kept),
	)
	return kept, warnings
}

// filterNoise descarta items que no casan con el descriptor de su
// fuente: fuente desconocida, o resultado fuera del host de una
// búsqueda site: no ampliada.
func (d *DedupeService) filterNoise(items []*domain.NewsItem, catalog *registry.Catalog, widened map[string]bool) []*domain.NewsItem {
	out := make([]*domain.NewsItem, 0, len(items))
	for _, item := range items {
		if !item.IsValid() {
			continue
		}
		spec, ok := catalog.Get(item.Source)
		if !ok {
			d.logger.Debug("dropping item from unknown source", "source", item.Source)
			continue
		}
		if host := spec.SiteHost(); host != "" && !widened[spec.Name] {
			if !urlnorm.HostMatches(urlnorm.Host(item.URL), host) {
				d.logger.Debug("dropping off-site result",
					"source", item.Source,
					"url", item.URL,
				)
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// dedupeExact conserva la primera aparición de cada fingerprint.
func (d *DedupeService) dedupeExact(items []*domain.NewsItem) []*domain.NewsItem {
	seen := make(map[string]bool, len(items))
	out := make([]*domain.NewsItem, 0, len(items))
	for _, item := range items {
		fp := item.Fingerprint
		if fp == "" {
			fp = item.ComputeFingerprint()
		}
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, item)
	}
	return out
}

// dedupeFuzzy descarta casi-duplicados: títulos con similitud Jaccard
// por encima del umbral. Gana la primera aparición.
func (d *DedupeService) dedupeFuzzy(items []*domain.NewsItem) []*domain.NewsItem {
	out := make([]*domain.NewsItem, 0, len(items))
	tokens := make([][]string, 0, len(items))
	for _, item := range items {
		toks := urlnorm.TitleTokens(item.Title)
		dup := false
		for _, prev := range tokens {
			if urlnorm.TokenSimilarity(toks, prev) > d.SimilarityThreshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		out = append(out, item)
		tokens = append(tokens, toks)
	}
	return out
}

// trim recorta la colección al objetivo global sin romper los mínimos
// por tier: primero reserva hasta el mínimo de cada tier, luego rellena
// la capacidad restante en orden canónico.
func (d *DedupeService) trim(items []*domain.NewsItem, tierMin map[domain.Tier]int, total int, warnings []string) ([]*domain.NewsItem, []string) {
	selected := make(map[*domain.NewsItem]bool, total)
	count := 0

	byTier := make(map[domain.Tier][]*domain.NewsItem)
	for _, item := range items {
		byTier[item.Tier] = append(byTier[item.Tier], item)
	}

	for _, tier := range []domain.Tier{domain.TierCore, domain.TierDiscovered} {
		want := tierMin[tier]
		if want > total-count {
			want = total - count
		}
		avail := byTier[tier]
		if want > len(avail) {
			warnings = append(warnings, fmt.Sprintf(
				"tier %s below minimum after dedupe: %d of %d", tier, len(avail), tierMin[tier]))
			want = len(avail)
		}
		for _, item := range avail[:want] {
			selected[item] = true
			count++
		}
	}

	for _, item := range items {
		if count >= total {
			break
		}
		if selected[item] {
			continue
		}
		selected[item] = true
		count++
	}

	out := make([]*domain.NewsItem, 0, count)
	for _, item := range items {
		if selected[item] {
			out = append(out, item)
		}
	}
	return out, warnings
}
