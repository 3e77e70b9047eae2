// internal/adapters/summarizer/basic.go
package summarizer

import (
	"context"
	"fmt"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
	"newsrake/internal/platform/logx"
)

// BasicSummarizer es el summarizer de los runs sin API key: no redacta,
// proyecta los primeros N items al informe con un prólogo mecánico.
type BasicSummarizer struct {
	topN   int
	logger logx.Logger
}

// NewBasicSummarizer crea el summarizer básico.
func NewBasicSummarizer(topN int, logger logx.Logger) *BasicSummarizer {
	if topN <= 0 {
		topN = 10
	}
	return &BasicSummarizer{
		topN:   topN,
		logger: logger.With("component", "summarizer"),
	}
}

// Summarize proyecta los items sin intervención editorial.
func (s *BasicSummarizer) Summarize(ctx context.Context, topic string, items []*domain.NewsItem) (*ports.Summary, error) {
	if len(items) == 0 {
		return &ports.Summary{Prologue: "No relevant news found for " + topic + "."}, nil
	}

	sources := make(map[string]bool, len(items))
	for _, item := range items {
		sources[item.Source] = true
	}

	summary := &ports.Summary{
		Prologue: fmt.Sprintf("%d news items about %q collected from %d sources.",
			len(items), topic, len(sources)),
	}
	for i, item := range items {
		if i >= s.topN {
			break
		}
		entry := domain.ReportItem{
			Title:   item.Title,
			URL:     item.URL,
			Source:  item.Source,
			Summary: item.Snippet,
		}
		if !item.PublishedAt.IsZero() {
			entry.Date = item.PublishedAt.Format("2006-01-02")
		}
		summary.TopNews = append(summary.TopNews, entry)
	}
	return summary, nil
}

var _ ports.Summarizer = (*BasicSummarizer)(nil)
