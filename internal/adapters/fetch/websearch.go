// internal/adapters/fetch/websearch.go
package fetch

import (
	"context"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/httpclient"
	"newsrake/internal/platform/logx"
)

const searchEndpoint = "https://html.duckduckgo.com/html/"

// WebSearchClient recupera resultados de la versión HTML del buscador
// y los normaliza. Cubre tanto búsquedas generales como restringidas
// por site: (la restricción viaja dentro de la query).
type WebSearchClient struct {
	http      *httpclient.Client
	jitterMin time.Duration
	jitterMax time.Duration
	logger    logx.Logger
}

// NewWebSearchClient crea el cliente de búsqueda.
func NewWebSearchClient(http *httpclient.Client, logger logx.Logger) *WebSearchClient {
	return &WebSearchClient{
		http:   http,
		logger: logger.With("component", "fetch.websearch"),
	}
}

// WithJitter añade una espera aleatoria en [min, max] antes de cada
// búsqueda para no sincronizar golpes contra el buscador. Sin llamar,
// no hay espera.
func (c *WebSearchClient) WithJitter(min, max time.Duration) *WebSearchClient {
	c.jitterMin = min
	c.jitterMax = max
	return c
}

// Fetch ejecuta la búsqueda y normaliza hasta req.Limit resultados.
func (c *WebSearchClient) Fetch(ctx context.Context, req ports.FetchRequest) ([]*domain.NewsItem, error) {
	if c.jitterMax > 0 && c.jitterMax >= c.jitterMin {
		delay := c.jitterMin + time.Duration(rand.Float64()*float64(c.jitterMax-c.jitterMin))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	params := url.Values{}
	params.Set("q", req.Query)

	resp, err := c.http.Get(ctx, searchEndpoint+"?"+params.Encode(), map[string]string{
		"Accept": "text/html",
	})
	if err != nil {
		return nil, err
	}
	if err := httpclient.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Permanent(errors.Wrap(errors.ErrInvalidResponse, err.Error()))
	}

	var items []*domain.NewsItem
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if req.Limit > 0 && len(items) >= req.Limit {
			return false
		}

		anchor := sel.Find(".result__a").First()
		title := strings.TrimSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		target := resolveRedirect(href)
		if title == "" || target == "" {
			return true
		}

		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())
		items = append(items, domain.NewNewsItem(
			req.Spec.Name,
			req.Spec.Tier,
			title,
			target,
			snippet,
			time.Time{}, // los resultados de búsqueda no traen fecha fiable
		))
		return true
	})

	c.logger.Debug("web search done",
		"source", req.Spec.Name,
		"returned", len(items),
		"widened", req.Widened,
	)
	return items, nil
}

// resolveRedirect deshace el enlace de redirección del buscador
// (/l/?uddg=<url-escapada>) y retorna la URL destino.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}

var _ ports.FetchClient = (*WebSearchClient)(nil)
