// internal/testutil/fixtures.go
package testutil

import (
	"fmt"
	"time"

	"newsrake/internal/core/domain"
)

// CoreSpec crea una SourceSpec core válida para tests.
func CoreSpec(name string) domain.SourceSpec {
	return domain.SourceSpec{
		Name:       name,
		Tier:       domain.TierCore,
		Kind:       domain.QueryKindRSS,
		MatchNames: []string{name},
		MinItems:   1,
	}
}

// DiscoveredSpec crea una SourceSpec discovered válida para tests.
func DiscoveredSpec(name string) domain.SourceSpec {
	return domain.SourceSpec{
		Name:       name,
		Tier:       domain.TierDiscovered,
		Kind:       domain.QueryKindWebSearch,
		MatchNames: []string{name},
	}
}

// SiteSpec crea una SourceSpec discovered con restricción site:.
func SiteSpec(name, host string) domain.SourceSpec {
	return domain.SourceSpec{
		Name:          name,
		Tier:          domain.TierDiscovered,
		Kind:          domain.QueryKindSiteSearch,
		MatchNames:    []string{name},
		QueryTemplate: "site:" + host + " %s",
	}
}

// SyntheticItem crea un item único y válido para la fuente dada. El
// secuencial garantiza fingerprints distintos.
func SyntheticItem(spec domain.SourceSpec, seq int) *domain.NewsItem {
	return domain.NewNewsItem(
		spec.Name,
		spec.Tier,
		fmt.Sprintf("Story %d from %s", seq, spec.Name),
		fmt.Sprintf("https://news.example.com/%s/story-%d", spec.Name, seq),
		fmt.Sprintf("Snippet for story %d", seq),
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(seq)*time.Minute),
	)
}

// SyntheticItems crea n items únicos para la fuente, secuenciales a
// partir de start.
func SyntheticItems(spec domain.SourceSpec, start, n int) []*domain.NewsItem {
	out := make([]*domain.NewsItem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, SyntheticItem(spec, start+i))
	}
	return out
}

// FixtureTopics temas de prueba.
var FixtureTopics = []string{
	"quantum computing",
	"renewable energy storage",
	"open source licensing",
}
