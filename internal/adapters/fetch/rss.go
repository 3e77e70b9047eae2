// internal/adapters/fetch/rss.go

// Package fetch implementa el puerto FetchClient: un mux despacha cada
// petición al mecanismo que declara la spec (feed RSS o búsqueda web) y
// normaliza los resultados a NewsItems del dominio.
package fetch

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/errors"
	"newsrake/internal/platform/httpclient"
	"newsrake/internal/platform/logx"
)

const googleNewsRSS = "https://news.google.com/rss/search"

// RSSClient recupera items desde feeds RSS/Atom de búsqueda (Google
// News). El parseo corre sobre gofeed; el transporte sobre el cliente
// HTTP compartido.
type RSSClient struct {
	http   *httpclient.Client
	parser *gofeed.Parser
	lang   string
	logger logx.Logger
}

// NewRSSClient crea el cliente RSS. lang con formato "en-US" ajusta la
// edición del feed; vacío usa en-US.
func NewRSSClient(http *httpclient.Client, lang string, logger logx.Logger) *RSSClient {
	if lang == "" {
		lang = "en-US"
	}
	return &RSSClient{
		http:   http,
		parser: gofeed.NewParser(),
		lang:   lang,
		logger: logger.With("component", "fetch.rss"),
	}
}

// Fetch ejecuta la búsqueda RSS y normaliza hasta req.Limit items.
func (c *RSSClient) Fetch(ctx context.Context, req ports.FetchRequest) ([]*domain.NewsItem, error) {
	feedURL := c.searchURL(req.Query)

	body, err := c.http.FetchBody(ctx, feedURL, map[string]string{
		"Accept": "application/rss+xml, application/xml, text/xml",
	})
	if err != nil {
		return nil, err
	}

	feed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Permanent(errors.Wrap(errors.ErrInvalidResponse, err.Error()))
	}

	items := make([]*domain.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if req.Limit > 0 && len(items) >= req.Limit {
			break
		}
		if entry.Title == "" || entry.Link == "" {
			continue
		}
		published := time.Time{}
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		}
		items = append(items, domain.NewNewsItem(
			req.Spec.Name,
			req.Spec.Tier,
			entry.Title,
			entry.Link,
			entry.Description,
			published,
		))
	}

	c.logger.Debug("rss fetch done",
		"source", req.Spec.Name,
		"feed_items", len(feed.Items),
		"returned", len(items),
	)
	return items, nil
}

func (c *RSSClient) searchURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", c.lang)
	return googleNewsRSS + "?" + params.Encode()
}

var _ ports.FetchClient = (*RSSClient)(nil)
