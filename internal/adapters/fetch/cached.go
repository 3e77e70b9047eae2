// internal/adapters/fetch/cached.go
package fetch

import (
	"context"
	"fmt"
	"time"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/cache"
	"newsrake/internal/platform/logx"
)

// CachedClient memoiza respuestas de fetch por (kind, query, limit).
// Las rondas de compensación repiten consultas idénticas contra las
// mismas fuentes; servirlas de caché evita golpear dos veces el mismo
// endpoint dentro del run. Solo se cachean éxitos; los errores se
// propagan sin memorizar.
type CachedClient struct {
	inner  ports.FetchClient
	store  *cache.MemoryCache[[]*domain.NewsItem]
	ttl    time.Duration
	logger logx.Logger
}

// NewCachedClient envuelve inner con una caché de capacity entradas y
// ttl por entrada.
func NewCachedClient(inner ports.FetchClient, capacity int, ttl time.Duration, logger logx.Logger) *CachedClient {
	return &CachedClient{
		inner:  inner,
		store:  cache.New[[]*domain.NewsItem](capacity),
		ttl:    ttl,
		logger: logger.With("component", "fetch.cache"),
	}
}

// Fetch sirve de caché si hay hit; si no, delega y memoriza. Los items
// cacheados se clonan en cada hit: el coordinador les asigna orden de
// llegada y un hit no debe ver los índices del fetch anterior.
func (c *CachedClient) Fetch(ctx context.Context, req ports.FetchRequest) ([]*domain.NewsItem, error) {
	key := cacheKey(req)
	if cached, ok := c.store.Get(key); ok {
		c.logger.Debug("cache hit", "source", req.Spec.Name, "query", req.Query)
		return cloneItems(cached), nil
	}

	items, err := c.inner.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, items, c.ttl)
	return cloneItems(items), nil
}

func cacheKey(req ports.FetchRequest) string {
	return fmt.Sprintf("%s|%s|%d", req.Spec.Kind, req.Query, req.Limit)
}

func cloneItems(items []*domain.NewsItem) []*domain.NewsItem {
	out := make([]*domain.NewsItem, len(items))
	for i, item := range items {
		clone := *item
		out[i] = &clone
	}
	return out
}

var _ ports.FetchClient = (*CachedClient)(nil)
