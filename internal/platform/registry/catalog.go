// internal/platform/registry/catalog.go
package registry

import (
	"fmt"
	"sync"

	"newsrake/internal/core/domain"
	"newsrake/internal/platform/logx"
)

// Catalog mantiene el catálogo de SourceSpecs de un run (core +
// discovered) preservando el orden de registro. Single-writer
// (coordinador) / multi-reader (workers leen specs): las specs son
// inmutables una vez registradas y el catálogo solo crece.
type Catalog struct {
	mu     sync.RWMutex
	specs  []domain.SourceSpec
	byName map[string]int // name -> índice en specs
	logger logx.Logger
}

// NewCatalog crea un catálogo vacío.
func NewCatalog(logger logx.Logger) *Catalog {
	return &Catalog{
		byName: make(map[string]int),
		logger: logger.With("component", "catalog"),
	}
}

// Add registra una spec. Falla si la spec es inválida o el nombre ya
// existe; el orden de registro queda fijado por el orden de llamadas.
func (c *Catalog) Add(spec domain.SourceSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("invalid spec %q: %w", spec.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byName[spec.Name]; exists {
		return fmt.Errorf("source %q is already registered", spec.Name)
	}

	c.byName[spec.Name] = len(c.specs)
	c.specs = append(c.specs, spec)
	c.logger.Debug("source registered",
		"name", spec.Name,
		"tier", spec.Tier,
		"kind", spec.Kind,
	)
	return nil
}

// AddAll registra una secuencia de specs. Las specs inválidas o
// duplicadas se saltan con warning; retorna cuántas entraron.
func (c *Catalog) AddAll(specs []domain.SourceSpec) int {
	added := 0
	for _, spec := range specs {
		if err := c.Add(spec); err != nil {
			c.logger.Warn("skipping source", "name", spec.Name, "error", err.Error())
			continue
		}
		added++
	}
	return added
}

// Get retorna la spec registrada bajo name.
func (c *Catalog) Get(name string) (domain.SourceSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.byName[name]
	if !ok {
		return domain.SourceSpec{}, false
	}
	return c.specs[idx], true
}

// All retorna todas las specs en orden de registro.
func (c *Catalog) All() []domain.SourceSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.SourceSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

// ByTier retorna las specs de un tier en orden de registro.
func (c *Catalog) ByTier(tier domain.Tier) []domain.SourceSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.SourceSpec
	for _, spec := range c.specs {
		if spec.Tier == tier {
			out = append(out, spec)
		}
	}
	return out
}

// Ranked retorna las specs ordenadas core-first, orden de registro como
// desempate. Es el ranking que usan el allocator (truncado) y el
// compensator (promoción).
func (c *Catalog) Ranked() []domain.SourceSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.SourceSpec, 0, len(c.specs))
	for _, spec := range c.specs {
		if spec.Tier == domain.TierCore {
			out = append(out, spec)
		}
	}
	for _, spec := range c.specs {
		if spec.Tier == domain.TierDiscovered {
			out = append(out, spec)
		}
	}
	return out
}

// Len retorna el número de specs registradas.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.specs)
}
