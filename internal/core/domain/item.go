// internal/core/domain/item.go
package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"newsrake/internal/platform/urlnorm"
)

// NewsItem representa un item recuperado de una fuente. Es la entidad
// principal de datos del run. Inmutable una vez producido por un fetch.
type NewsItem struct {
	// Source nombre de la SourceSpec que lo produjo
	Source string

	// Tier tier de la fuente en el momento del fetch
	Tier Tier

	// Title titular del item
	Title string

	// URL enlace original
	URL string

	// PublishedAt fecha de publicación (zero si la fuente no la informa)
	PublishedAt time.Time

	// Snippet extracto o cuerpo crudo
	Snippet string

	// Fingerprint identificador derivado para deduplicación
	Fingerprint string

	// DiscoveryIndex orden de llegada dentro del run; lo asigna el
	// coordinador, nunca los workers
	DiscoveryIndex int
}

// NewNewsItem crea un item normalizado con fingerprint calculado.
func NewNewsItem(source string, tier Tier, title, rawURL, snippet string, published time.Time) *NewsItem {
	item := &NewsItem{
		Source:      source,
		Tier:        tier,
		Title:       strings.TrimSpace(title),
		URL:         strings.TrimSpace(rawURL),
		PublishedAt: published,
		Snippet:     strings.TrimSpace(snippet),
	}
	item.Fingerprint = item.ComputeFingerprint()
	return item
}

// ComputeFingerprint deriva el fingerprint de título normalizado + URL
// canónica. Dos items con el mismo contenido en fuentes distintas
// producen el mismo fingerprint.
func (i *NewsItem) ComputeFingerprint() string {
	canonical := urlnorm.CanonicalURL(i.URL)
	title := urlnorm.NormalizeTitle(i.Title)
	h := sha256.New()
	h.Write([]byte(title + "|" + canonical))
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// IsValid verifica los campos mínimos de un item.
func (i *NewsItem) IsValid() bool {
	return i != nil && i.Title != "" && i.URL != ""
}

// Truncate recorta el snippet a maxLen runas, añadiendo elipsis.
// Retorna una copia; el item original no se muta.
func (i *NewsItem) Truncate(maxLen int) *NewsItem {
	if maxLen <= 0 {
		return i
	}
	runes := []rune(i.Snippet)
	if len(runes) <= maxLen {
		return i
	}
	clone := *i
	clone.Snippet = string(runes[:maxLen]) + "..."
	return &clone
}
